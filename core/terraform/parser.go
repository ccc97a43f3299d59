// Package terraform - Plan parser & graph builder
package terraform

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"plancost/core/expression"
	"plancost/core/schema"
	"plancost/internal/errors"
	"plancost/internal/logging"
)

// DefaultRegion is used when the plan carries no provider region
const DefaultRegion = "us-east-1"

// Parser builds a resource graph from Terraform plan JSON. The graph is an
// arena of nodes indexed by address; references between nodes are wired
// through that index, never by ownership.
type Parser struct {
	registry      ResourceRegistry
	defaultRegion string
}

// NewParser creates a parser dispatching through registry
func NewParser(registry ResourceRegistry) *Parser {
	return &Parser{
		registry:      registry,
		defaultRegion: DefaultRegion,
	}
}

// SetDefaultRegion overrides the fallback region
func (p *Parser) SetDefaultRegion(region string) {
	if region != "" {
		p.defaultRegion = region
	}
}

// ParsePlanFile parses a plan JSON file
func (p *Parser) ParsePlanFile(path string) ([]schema.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "reading plan file %s", path)
	}
	return p.ParsePlanJSON(data)
}

// ParsePlanJSON parses raw plan JSON bytes into an address-sorted resource
// graph. A structurally invalid document is fatal; missing or malformed
// sub-sections degrade to empty collections.
func (p *Parser) ParsePlanJSON(data []byte) ([]schema.Resource, error) {
	plan, err := expression.FromJSON(data)
	if err != nil {
		return nil, errors.Parsing("invalid plan JSON", err)
	}
	if plan.Kind() != expression.KindObject {
		return nil, errors.New(errors.TypeParsing, "plan document is not a JSON object")
	}

	providerRegion := plan.Get("configuration.provider_config.aws.expressions.region.constant_value").StringOr(p.defaultRegion)

	graph := newResourceGraph()
	p.parseModule(
		plan.Get("planned_values.root_module"),
		plan.Get("configuration.root_module"),
		"",
		providerRegion,
		graph,
	)

	return graph.sorted(), nil
}

// resourceGraph is the arena of parsed nodes indexed by address
type resourceGraph struct {
	byAddress map[string]schema.Resource
	ordered   []schema.Resource
}

func newResourceGraph() *resourceGraph {
	return &resourceGraph{byAddress: make(map[string]schema.Resource)}
}

func (g *resourceGraph) add(resource schema.Resource) bool {
	address := resource.Address()
	if _, exists := g.byAddress[address]; exists {
		logging.Warn("Duplicate resource address, keeping first", zap.String("address", address))
		return false
	}
	g.byAddress[address] = resource
	g.ordered = append(g.ordered, resource)

	// Also index the index-stripped form so references written without
	// repetition indices still resolve.
	stripped := stripAddressArray(address)
	if stripped != address {
		if _, exists := g.byAddress[stripped]; !exists {
			g.byAddress[stripped] = resource
		}
	}
	return true
}

func (g *resourceGraph) lookup(address string) (schema.Resource, bool) {
	r, ok := g.byAddress[address]
	return r, ok
}

func (g *resourceGraph) sorted() []schema.Resource {
	sorted := make([]schema.Resource, len(g.ordered))
	copy(sorted, g.ordered)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Address() > sorted[j].Address(); j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}

// parseModule walks one planned-values module scope, instantiating typed
// nodes and wiring references from the matching configuration scope, then
// recurses into child modules carrying the module address prefix.
func (p *Parser) parseModule(
	plannedModule expression.Value,
	configModule expression.Value,
	moduleAddress string,
	providerRegion string,
	graph *resourceGraph,
) {
	localByName := make(map[string]schema.Resource)
	var localOrder []string

	for _, entry := range plannedModule.Field("resources").ArrayValues() {
		address := entry.Field("address").String()
		resourceType := entry.Field("type").String()
		if address == "" || resourceType == "" {
			continue
		}

		fullAddress := address
		if moduleAddress != "" && !strings.HasPrefix(address, moduleAddress+".") {
			fullAddress = qualify(moduleAddress, address)
		}

		rawValues := entry.Field("values")
		if rawValues.Kind() != expression.KindObject {
			rawValues = expression.Object(nil)
		}

		constructor, supported := p.registry[resourceType]
		if !supported {
			logging.Debug("Skipping unsupported resource type",
				zap.String("type", resourceType),
				zap.String("address", fullAddress))
			continue
		}

		region := resolveRegion(providerRegion, rawValues)
		resource := constructor(fullAddress, region, rawValues)
		if resource == nil {
			continue
		}
		if !graph.add(resource) {
			continue
		}

		internal := stripModulePrefix(fullAddress, moduleAddress)
		localByName[internal] = resource
		if stripped := stripAddressArray(internal); stripped != internal {
			if _, exists := localByName[stripped]; !exists {
				localByName[stripped] = resource
			}
		}
		localOrder = append(localOrder, internal)
	}

	configResources := configModule.Field("resources").ArrayValues()
	for _, internal := range localOrder {
		resource := localByName[internal]
		configEntry := findConfigResource(configResources, internal)
		if configEntry.Exists() {
			p.addReferences(resource, configEntry, localByName, graph, moduleAddress)
		}
	}

	for _, child := range plannedModule.Field("child_modules").ArrayValues() {
		childAddress := child.Field("address").String()
		if childAddress == "" {
			continue
		}

		// The child's own call name is the trailing module segment; earlier
		// segments belong to enclosing modules already walked.
		childConfig := expression.Absent()
		if name := parseModuleName(addressResourcePart(childAddress)); name != "" {
			childConfig = configModule.Get("module_calls." + name + ".module")
		}

		nextModuleAddress := childAddress
		if moduleAddress != "" && !strings.HasPrefix(childAddress, moduleAddress+".") {
			nextModuleAddress = qualify(moduleAddress, childAddress)
		}

		p.parseModule(child, childConfig, nextModuleAddress, providerRegion, graph)
	}
}

// resolveRegion picks the provider region, overridden by an ARN-embedded
// region when the resource carries one.
func resolveRegion(providerRegion string, rawValues expression.Value) string {
	region := providerRegion
	if region == "" {
		region = DefaultRegion
	}
	if arnRegion := regionFromARN(rawValues.Field("arn").String()); arnRegion != "" {
		region = arnRegion
	}
	return region
}

// regionFromARN extracts the region segment of an ARN, or ""
func regionFromARN(arn string) string {
	if arn == "" {
		return ""
	}
	parts := strings.Split(arn, ":")
	if len(parts) > 3 {
		return parts[3]
	}
	return ""
}

// findConfigResource locates the configuration entry for a planned
// resource, matching the exact address first and the index-stripped form
// second (configuration addresses omit repetition indices).
func findConfigResource(configResources []expression.Value, internal string) expression.Value {
	stripped := stripAddressArray(internal)
	for _, entry := range configResources {
		address := entry.Field("address").String()
		if address == internal || address == stripped {
			return entry
		}
	}
	return expression.Absent()
}

// addReferences walks a configuration entry's expression tree for reference
// markers, resolving same-module names first and fully-qualified global
// addresses second. Unresolvable references are dropped silently.
func (p *Parser) addReferences(
	resource schema.Resource,
	configEntry expression.Value,
	localByName map[string]schema.Resource,
	graph *resourceGraph,
	moduleAddress string,
) {
	expressions := configEntry.Field("expressions")
	if expressions.Kind() != expression.KindObject {
		return
	}

	resolve := func(name string, candidates []string) {
		for _, candidate := range candidates {
			if target := resolveReference(candidate, localByName, graph, moduleAddress); target != nil {
				if target != resource {
					resource.AddReference(name, target)
				}
				return
			}
		}
	}

	for name, value := range expressions.ObjectValues() {
		walkReferences(name, value, resolve)
	}
}

// walkReferences finds "references" arrays anywhere under value. The
// reference name is the nearest enclosing expression key.
func walkReferences(name string, value expression.Value, fn func(name string, refs []string)) {
	switch value.Kind() {
	case expression.KindObject:
		if refs := value.Field("references"); refs.Kind() == expression.KindArray {
			candidates := make([]string, 0, refs.Len())
			for _, ref := range refs.ArrayValues() {
				if s := ref.String(); s != "" {
					candidates = append(candidates, s)
				}
			}
			if len(candidates) > 0 {
				fn(name, candidates)
			}
		}
		for key, member := range value.ObjectValues() {
			if key == "references" {
				continue
			}
			walkReferences(key, member, fn)
		}
	case expression.KindArray:
		for _, element := range value.ArrayValues() {
			walkReferences(name, element, fn)
		}
	}
}

// resolveReference resolves one reference string against the local module
// scope first, then the global graph via the fully-qualified address.
// Attribute suffixes ("aws_ebs_volume.data.id") are stripped and retried.
func resolveReference(
	ref string,
	localByName map[string]schema.Resource,
	graph *resourceGraph,
	moduleAddress string,
) schema.Resource {
	for _, candidate := range referenceCandidates(ref) {
		if target, ok := localByName[candidate]; ok {
			return target
		}
		if target, ok := graph.lookup(qualify(moduleAddress, candidate)); ok {
			return target
		}
		if target, ok := graph.lookup(candidate); ok {
			return target
		}
	}
	return nil
}

// referenceCandidates returns the reference string plus its attribute-
// stripped form ("type.name.attr" resolves as "type.name").
func referenceCandidates(ref string) []string {
	candidates := []string{ref}
	parts := strings.Split(ref, ".")
	baseLen := 2
	switch parts[0] {
	case "module":
		baseLen = 4
	case "data":
		baseLen = 3
	}
	if len(parts) > baseLen {
		candidates = append(candidates, strings.Join(parts[:baseLen], "."))
	}
	return candidates
}
