package aws

import (
	"plancost/core/terraform"
)

// Registry maps AWS Terraform resource types to their constructors
func Registry() terraform.ResourceRegistry {
	return terraform.ResourceRegistry{
		"aws_instance":             NewInstance,
		"aws_ebs_volume":           NewEBSVolume,
		"aws_ebs_snapshot":         NewEBSSnapshot,
		"aws_ebs_snapshot_copy":    NewEBSSnapshotCopy,
		"aws_launch_configuration": NewLaunchConfiguration,
		"aws_launch_template":      NewLaunchTemplate,
		"aws_autoscaling_group":    NewAutoscalingGroup,
	}
}
