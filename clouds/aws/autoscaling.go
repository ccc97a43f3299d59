package aws

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"plancost/core/expression"
	"plancost/core/schema"
)

// NewLaunchConfiguration builds an aws_launch_configuration node. Launch
// configurations never bill on their own, but they expose compute and
// block device components for scaling groups to wrap.
func NewLaunchConfiguration(address, region string, rawValues expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, rawValues, false)
	resource.AddPriceComponent(computeHoursComponent(resource, "on_demand"))
	addBlockDevices(resource)
	return resource
}

// NewLaunchTemplate builds an aws_launch_template node. Like launch
// configurations it only bills through a scaling group. Block devices
// come from block_device_mappings[*].ebs.
func NewLaunchTemplate(address, region string, rawValues expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, rawValues, false)
	resource.AddPriceComponent(computeHoursComponent(resource, "on_demand"))

	for i, mapping := range rawValues.Field("block_device_mappings").ArrayValues() {
		ebsValues := mapping.Get("ebs.0")
		if ebsValues.Kind() != expression.KindObject {
			continue
		}
		resource.AddSubResource(newBlockDevice(
			fmt.Sprintf("%s.block_device_mappings[%d]", address, i),
			region,
			ebsValues,
		))
	}
	return resource
}

// AutoscalingGroup is an aws_autoscaling_group node. It carries no
// pricing of its own; when its launch configuration or launch template
// reference resolves, it builds a wrapper resource whose components are
// the template's scaled by instance count and split by purchase option.
type AutoscalingGroup struct {
	*schema.BaseResource
	wrapped schema.Resource
}

// NewAutoscalingGroup builds an aws_autoscaling_group node
func NewAutoscalingGroup(address, region string, rawValues expression.Value) schema.Resource {
	return &AutoscalingGroup{
		BaseResource: schema.NewBaseResource(address, region, rawValues, true),
	}
}

// AddReference wires the reference and, for a launch configuration or
// launch template, resolves the scaled wrapper.
func (a *AutoscalingGroup) AddReference(name string, resource schema.Resource) {
	a.BaseResource.AddReference(name, resource)
	if a.wrapped != nil || resource == nil {
		return
	}
	switch name {
	case "launch_configuration", "launch_template", "launch_template_id", "launch_template_name":
		a.wrapped = a.buildWrapped(resource)
	}
}

// PriceComponents exposes the wrapper's components. An unresolved group
// has no cost.
func (a *AutoscalingGroup) PriceComponents() []schema.PriceComponent {
	if a.wrapped == nil {
		return nil
	}
	return a.wrapped.PriceComponents()
}

// SubResources exposes the wrapper's scaled block devices
func (a *AutoscalingGroup) SubResources() []schema.Resource {
	if a.wrapped == nil {
		return nil
	}
	return a.wrapped.SubResources()
}

// capacitySplit is the group's instance counts by purchase option
type capacitySplit struct {
	total    decimal.Decimal
	onDemand decimal.Decimal
	spot     decimal.Decimal
}

// buildWrapped constructs the wrapper resource backing the group's cost.
// The wrapper reuses the template's raw values, with the instance type
// overridden by the mixed-instances policy when one is declared.
func (a *AutoscalingGroup) buildWrapped(template schema.Resource) schema.Resource {
	values := a.RawValues()
	split := a.capacity()

	raw := make(map[string]expression.Value)
	for key, value := range template.RawValues().ObjectValues() {
		raw[key] = value
	}
	if override := values.Get("mixed_instances_policy.0.launch_template.0.override.0.instance_type").String(); override != "" {
		raw["instance_type"] = expression.String(override)
	}

	wrapped := schema.NewBaseResource(a.Address(), a.Region(), expression.Object(raw), true)

	if split.onDemand.IsPositive() {
		wrapped.AddPriceComponent(scaledComputeComponent(wrapped, "Instance hours (on-demand)", "OnDemand", "on_demand", split.onDemand))
	}
	if split.spot.IsPositive() {
		wrapped.AddPriceComponent(scaledComputeComponent(wrapped, "Instance hours (spot)", "Spot", "", split.spot))
	}

	for _, sub := range template.SubResources() {
		wrapped.AddSubResource(scaleResource(sub, template.Address(), a.Address(), split.total))
	}
	return wrapped
}

// capacity computes the group's instance counts. A mixed-instances
// policy divides desired capacity by the override's weighted capacity
// and splits the result between purchase options per the declared
// distribution; without a policy everything is on-demand.
func (a *AutoscalingGroup) capacity() capacitySplit {
	values := a.RawValues()
	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)

	desired := values.Field("desired_capacity").DecimalOr(one)

	policy := values.Get("mixed_instances_policy.0")
	if policy.Kind() != expression.KindObject {
		return capacitySplit{total: desired, onDemand: desired, spot: decimal.Zero}
	}

	weight := policy.Get("launch_template.0.override.0.weighted_capacity").DecimalOr(one)
	if !weight.IsPositive() {
		weight = one
	}
	total := desired.Div(weight).Ceil()

	base := policy.Get("instances_distribution.0.on_demand_base_capacity").DecimalOr(decimal.Zero)
	percent := policy.Get("instances_distribution.0.on_demand_percentage_above_base_capacity").DecimalOr(hundred)

	onDemand := base.Add(total.Sub(base).Mul(percent).Div(hundred).Ceil())
	if onDemand.GreaterThan(total) {
		onDemand = total
	}
	if onDemand.IsNegative() {
		onDemand = decimal.Zero
	}

	return capacitySplit{
		total:    total,
		onDemand: onDemand,
		spot:     total.Sub(onDemand),
	}
}

// scaledComputeComponent prices one purchase-option bucket. The market
// option rides as a product attribute; on-demand buckets also pin the
// price-level purchase option.
func scaledComputeComponent(resource schema.Resource, name, marketOption, purchaseOption string, count decimal.Decimal) *schema.BasePriceComponent {
	spec := componentSpec{
		name:          name,
		unit:          "hours",
		timeUnit:      schema.TimeUnitHour,
		service:       "AmazonEC2",
		productFamily: "Compute Instance",
		defaultFilters: []schema.Filter{
			{Key: "operatingSystem", Value: "Linux"},
			{Key: "preInstalledSw", Value: "NA"},
			{Key: "capacitystatus", Value: "Used"},
			{Key: "tenancy", Value: "Shared"},
			{Key: "marketoption", Value: marketOption},
		},
		valueMappings: []schema.ValueMapping{
			{FromKey: "instance_type", ToKey: "instanceType"},
			{FromKey: "tenancy", ToKey: "tenancy", MapFunc: tenancyValue},
		},
		quantity: func(schema.Resource) decimal.Decimal { return count },
	}
	if purchaseOption != "" {
		spec.priceFilter = &schema.PriceFilter{PurchaseOption: purchaseOption}
	}
	return newPriceComponent(resource, spec)
}

// scaleResource clones a template sub-resource under the group's
// address with every component quantity multiplied by the instance
// count.
func scaleResource(sub schema.Resource, templateAddress, groupAddress string, count decimal.Decimal) schema.Resource {
	address := groupAddress + strings.TrimPrefix(sub.Address(), templateAddress)
	clone := schema.NewBaseResource(address, sub.Region(), sub.RawValues(), true)

	for _, component := range sub.PriceComponents() {
		scaled := schema.NewBasePriceComponent(component.Name(), clone, component.Unit(), component.TimeUnit())
		scaled.SetProductFilter(component.ProductFilter())
		scaled.SetPriceFilter(component.PriceFilter())
		quantity := component.Quantity().Mul(count)
		scaled.SetQuantityFunc(func(schema.Resource) decimal.Decimal { return quantity })
		clone.AddPriceComponent(scaled)
	}

	for _, nested := range sub.SubResources() {
		clone.AddSubResource(scaleResource(nested, sub.Address(), address, count))
	}
	return clone
}
