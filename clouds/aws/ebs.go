package aws

import (
	"github.com/shopspring/decimal"

	"plancost/core/expression"
	"plancost/core/schema"
)

// NewEBSVolume builds an aws_ebs_volume node. Standalone volumes use the
// type/size/iops attribute names rather than the inline block device ones.
func NewEBSVolume(address, region string, rawValues expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, rawValues, true)
	addVolumeComponents(resource, "type", "size", "iops")
	return resource
}

// NewEBSSnapshot builds an aws_ebs_snapshot node. Snapshot storage is
// billed by the source volume's size, read through the volume_id
// reference once the graph is wired.
func NewEBSSnapshot(address, region string, rawValues expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, rawValues, true)
	resource.AddPriceComponent(snapshotStorageComponent(resource, func(r schema.Resource) decimal.Decimal {
		return referencedVolumeSize(r.References()["volume_id"])
	}))
	return resource
}

// NewEBSSnapshotCopy builds an aws_ebs_snapshot_copy node. Size resolves
// through two hops: source_snapshot_id to the snapshot, then volume_id
// to the volume.
func NewEBSSnapshotCopy(address, region string, rawValues expression.Value) schema.Resource {
	resource := schema.NewBaseResource(address, region, rawValues, true)
	resource.AddPriceComponent(snapshotStorageComponent(resource, func(r schema.Resource) decimal.Decimal {
		snapshot := r.References()["source_snapshot_id"]
		if snapshot == nil {
			return decimal.NewFromInt(DefaultVolumeSize)
		}
		return referencedVolumeSize(snapshot.References()["volume_id"])
	}))
	return resource
}

func snapshotStorageComponent(resource schema.Resource, quantity schema.QuantityFunc) *schema.BasePriceComponent {
	return newPriceComponent(resource, componentSpec{
		name:          "GB",
		unit:          "GB/month",
		timeUnit:      schema.TimeUnitMonth,
		service:       "AmazonEC2",
		productFamily: "Storage Snapshot",
		defaultFilters: []schema.Filter{
			// Anchored so EBS:SnapshotUsageUnderBilling does not match.
			{Key: "usagetype", Value: "/EBS:SnapshotUsage$/", Comparison: schema.ComparisonRegex},
		},
		quantity: quantity,
	})
}

// referencedVolumeSize reads the size of a referenced volume, falling
// back to the default volume size when the reference is missing.
func referencedVolumeSize(volume schema.Resource) decimal.Decimal {
	if volume == nil {
		return decimal.NewFromInt(DefaultVolumeSize)
	}
	return volume.RawValues().Field("size").DecimalOr(decimal.NewFromInt(DefaultVolumeSize))
}
