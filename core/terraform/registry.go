// Package terraform - Resource type dispatch
package terraform

import (
	"plancost/core/expression"
	"plancost/core/schema"
)

// ResourceConstructor builds a typed resource node from its planned values.
// Constructors are registered per resource type; there is exactly one
// canonical constructor per type.
type ResourceConstructor func(address, region string, rawValues expression.Value) schema.Resource

// ResourceRegistry maps Terraform resource types to their constructors.
// Registries are immutable configuration built once at startup.
type ResourceRegistry map[string]ResourceConstructor

// Merge combines registries into a new one; later entries win
func Merge(registries ...ResourceRegistry) ResourceRegistry {
	merged := make(ResourceRegistry)
	for _, registry := range registries {
		for resourceType, constructor := range registry {
			merged[resourceType] = constructor
		}
	}
	return merged
}
