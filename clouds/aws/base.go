// Package aws maps AWS Terraform resource types to priced resource nodes.
// Each constructor reads the resource's planned values and attaches the
// price components and owned sub-resources that drive its cost.
package aws

import (
	"github.com/shopspring/decimal"

	"plancost/core/expression"
	"plancost/core/schema"
)

// DefaultVolumeSize is the EBS volume size in GiB assumed when a plan
// does not state one.
const DefaultVolumeSize = 8

// componentSpec describes one price component of an AWS resource
type componentSpec struct {
	name           string
	unit           string
	timeUnit       schema.TimeUnit
	service        string
	productFamily  string
	defaultFilters []schema.Filter
	valueMappings  []schema.ValueMapping
	priceFilter    *schema.PriceFilter
	quantity       schema.QuantityFunc
}

// newPriceComponent builds a component whose product filter combines the
// spec's defaults with filters mapped from the resource's raw values.
// Mapped filters win over defaults for the same key.
func newPriceComponent(resource schema.Resource, spec componentSpec) *schema.BasePriceComponent {
	component := schema.NewBasePriceComponent(spec.name, resource, spec.unit, spec.timeUnit)

	attributes := schema.MergeFilters(
		spec.defaultFilters,
		schema.MapFilters(spec.valueMappings, resource.RawValues()),
	)
	component.SetProductFilter(&schema.ProductFilter{
		VendorName:       "aws",
		Service:          spec.service,
		ProductFamily:    spec.productFamily,
		Region:           resource.Region(),
		AttributeFilters: attributes,
	})

	if spec.priceFilter != nil {
		component.SetPriceFilter(spec.priceFilter)
	}
	if spec.quantity != nil {
		component.SetQuantityFunc(spec.quantity)
	}
	return component
}

// tenancyValue maps the Terraform tenancy value to the pricing
// catalog's spelling. Anything but dedicated prices as shared.
func tenancyValue(v expression.Value) string {
	if v.String() == "dedicated" {
		return "Dedicated"
	}
	return "Shared"
}

// volumeType reads a volume type attribute, defaulting to gp2
func volumeType(values expression.Value, key string) string {
	return values.Field(key).StringOr("gp2")
}

// volumeSize reads a volume size attribute, defaulting to the AWS
// default volume size.
func volumeSize(values expression.Value, key string) decimal.Decimal {
	return values.Field(key).DecimalOr(decimal.NewFromInt(DefaultVolumeSize))
}
