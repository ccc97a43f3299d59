// Package schema - Resource node model
package schema

import (
	"sort"

	"plancost/core/expression"
)

// Resource is one priced graph entity: a cloud resource or an owned
// sub-part such as an attached disk. Addresses are assigned once and never
// change; sub-resources and components are fixed after construction except
// via compound resolvers, which build new wrapper nodes rather than
// mutating originals.
type Resource interface {
	// Address is the hierarchical path of the node, unique within a graph
	Address() string

	// Region is the resolved cloud region for this node
	Region() string

	// RawValues holds the resource's planned attribute values
	RawValues() expression.Value

	// SubResources returns the owned children, sorted by address
	SubResources() []Resource

	// AddSubResource attaches an owned child
	AddSubResource(sub Resource)

	// PriceComponents returns the owned components, sorted by name
	PriceComponents() []PriceComponent

	// AddPriceComponent attaches an owned component
	AddPriceComponent(component PriceComponent)

	// References returns the non-owning links to other graph nodes
	References() map[string]Resource

	// AddReference wires a non-owning link discovered during parsing
	AddReference(name string, target Resource)

	// HasCost reports whether the node is billed at the top level.
	// Wrapper-target nodes (e.g. launch templates) return false.
	HasCost() bool
}

// BaseResource is the standard Resource implementation
type BaseResource struct {
	address         string
	region          string
	rawValues       expression.Value
	hasCost         bool
	references      map[string]Resource
	subResources    []Resource
	priceComponents []PriceComponent
}

// NewBaseResource creates a resource node
func NewBaseResource(address, region string, rawValues expression.Value, hasCost bool) *BaseResource {
	return &BaseResource{
		address:    address,
		region:     region,
		rawValues:  rawValues,
		hasCost:    hasCost,
		references: make(map[string]Resource),
	}
}

// Address returns the node address
func (r *BaseResource) Address() string {
	return r.address
}

// Region returns the resolved region
func (r *BaseResource) Region() string {
	return r.region
}

// RawValues returns the planned attribute values
func (r *BaseResource) RawValues() expression.Value {
	return r.rawValues
}

// SubResources returns the owned children sorted by address
func (r *BaseResource) SubResources() []Resource {
	sorted := make([]Resource, len(r.subResources))
	copy(sorted, r.subResources)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address() < sorted[j].Address()
	})
	return sorted
}

// AddSubResource attaches an owned child
func (r *BaseResource) AddSubResource(sub Resource) {
	r.subResources = append(r.subResources, sub)
}

// PriceComponents returns the owned components sorted by name
func (r *BaseResource) PriceComponents() []PriceComponent {
	sorted := make([]PriceComponent, len(r.priceComponents))
	copy(sorted, r.priceComponents)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name() < sorted[j].Name()
	})
	return sorted
}

// AddPriceComponent attaches an owned component
func (r *BaseResource) AddPriceComponent(component PriceComponent) {
	r.priceComponents = append(r.priceComponents, component)
}

// References returns the non-owning links
func (r *BaseResource) References() map[string]Resource {
	return r.references
}

// AddReference wires a non-owning link
func (r *BaseResource) AddReference(name string, target Resource) {
	r.references[name] = target
}

// HasCost reports whether the node is billed at the top level
func (r *BaseResource) HasCost() bool {
	return r.hasCost
}

// FlattenSubResources returns all descendants of a resource, depth first
func FlattenSubResources(resource Resource) []Resource {
	var flattened []Resource
	for _, sub := range resource.SubResources() {
		flattened = append(flattened, sub)
		flattened = append(flattened, FlattenSubResources(sub)...)
	}
	return flattened
}
