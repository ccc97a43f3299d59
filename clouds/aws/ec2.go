package aws

import (
	"fmt"

	"github.com/shopspring/decimal"

	"plancost/core/expression"
	"plancost/core/schema"
)

// NewInstance builds an aws_instance node. Compute hours are priced on
// the instance itself; the root block device and any inline EBS block
// devices become owned sub-resources with their own storage components.
func NewInstance(address, region string, rawValues expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, rawValues, true)
	resource.AddPriceComponent(computeHoursComponent(resource, "on_demand"))
	addBlockDevices(resource)
	return resource
}

// computeHoursComponent prices compute hours for any resource carrying
// instance_type and tenancy attributes.
func computeHoursComponent(resource schema.Resource, purchaseOption string) *schema.BasePriceComponent {
	return newPriceComponent(resource, componentSpec{
		name:          "Instance hours",
		unit:          "hours",
		timeUnit:      schema.TimeUnitHour,
		service:       "AmazonEC2",
		productFamily: "Compute Instance",
		defaultFilters: []schema.Filter{
			{Key: "operatingSystem", Value: "Linux"},
			{Key: "preInstalledSw", Value: "NA"},
			{Key: "capacitystatus", Value: "Used"},
			{Key: "tenancy", Value: "Shared"},
		},
		valueMappings: []schema.ValueMapping{
			{FromKey: "instance_type", ToKey: "instanceType"},
			{FromKey: "tenancy", ToKey: "tenancy", MapFunc: tenancyValue},
		},
		priceFilter: &schema.PriceFilter{PurchaseOption: purchaseOption},
	})
}

// addBlockDevices attaches the root block device and inline EBS block
// devices as sub-resources. The root device exists even when the plan
// omits it, priced at the default size.
func addBlockDevices(resource schema.Resource) {
	values := resource.RawValues()

	rootValues := values.Get("root_block_device.0")
	if rootValues.Kind() != expression.KindObject {
		rootValues = expression.Object(nil)
	}
	resource.AddSubResource(newBlockDevice(
		resource.Address()+".root_block_device",
		resource.Region(),
		rootValues,
	))

	for i, deviceValues := range values.Field("ebs_block_device").ArrayValues() {
		resource.AddSubResource(newBlockDevice(
			fmt.Sprintf("%s.ebs_block_device[%d]", resource.Address(), i),
			resource.Region(),
			deviceValues,
		))
	}
}

// newBlockDevice builds a block device sub-resource. Keys follow the
// inline block device schema (volume_type, volume_size, iops).
func newBlockDevice(address, region string, values expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, values, true)
	addVolumeComponents(resource, "volume_type", "volume_size", "iops")
	return resource
}

// addVolumeComponents attaches EBS storage pricing: a GB component
// always, and an IOPS component for provisioned-IOPS volume types.
func addVolumeComponents(resource schema.Resource, typeKey, sizeKey, iopsKey string) {
	values := resource.RawValues()

	resource.AddPriceComponent(newPriceComponent(resource, componentSpec{
		name:          "GB",
		unit:          "GB/month",
		timeUnit:      schema.TimeUnitMonth,
		service:       "AmazonEC2",
		productFamily: "Storage",
		defaultFilters: []schema.Filter{
			{Key: "volumeApiName", Value: "gp2"},
		},
		valueMappings: []schema.ValueMapping{
			{FromKey: typeKey, ToKey: "volumeApiName"},
		},
		quantity: func(r schema.Resource) decimal.Decimal {
			return volumeSize(r.RawValues(), sizeKey)
		},
	}))

	apiName := volumeType(values, typeKey)
	iops := values.Field(iopsKey).DecimalOr(decimal.Zero)
	if (apiName == "io1" || apiName == "io2") && iops.IsPositive() {
		resource.AddPriceComponent(newPriceComponent(resource, componentSpec{
			name:          "IOPS",
			unit:          "IOPS/month",
			timeUnit:      schema.TimeUnitMonth,
			service:       "AmazonEC2",
			productFamily: "System Operation",
			defaultFilters: []schema.Filter{
				{Key: "volumeApiName", Value: apiName},
			},
			valueMappings: []schema.ValueMapping{
				{FromKey: typeKey, ToKey: "volumeApiName"},
			},
			priceFilter: &schema.PriceFilter{
				PurchaseOption: "on_demand",
				Unit:           "IOPS-Mo",
			},
			quantity: func(r schema.Resource) decimal.Decimal {
				return r.RawValues().Field(iopsKey).DecimalOr(decimal.Zero)
			},
		}))
	}
}
