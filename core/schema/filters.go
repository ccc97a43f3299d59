// Package schema defines the resource graph model: filters, resource nodes
// and price components. Instances are built once per run and discarded; the
// filter and mapping declarations that drive them are process-wide immutable
// configuration.
package schema

import (
	"plancost/core/expression"
)

// Comparison is the match mode of a filter
type Comparison string

const (
	// ComparisonEquals matches the value exactly
	ComparisonEquals Comparison = ""

	// ComparisonRegex matches the value as a regular expression
	ComparisonRegex Comparison = "REGEX"
)

// Filter is one key/value constraint sent to the pricing catalog
type Filter struct {
	Key        string     `json:"key"`
	Value      string     `json:"value"`
	Comparison Comparison `json:"operation,omitempty"`
}

// ValueMapping maps a raw attribute to a catalog filter key. It resolves to
// a filter only when the source key is present and the mapped value is
// non-empty.
type ValueMapping struct {
	FromKey string
	ToKey   string
	MapFunc func(expression.Value) string
}

// MappedValue applies the mapping transform to a raw value
func (m ValueMapping) MappedValue(v expression.Value) string {
	if m.MapFunc != nil {
		return m.MapFunc(v)
	}
	return v.String()
}

// MergeFilters merges filter sets keyed by filter key, last write wins.
// Order is stable: keys keep the position of their first sighting.
func MergeFilters(sets ...[]Filter) []Filter {
	order := make([]string, 0)
	latest := make(map[string]Filter)

	for _, set := range sets {
		for _, f := range set {
			if _, seen := latest[f.Key]; !seen {
				order = append(order, f.Key)
			}
			latest[f.Key] = f
		}
	}

	merged := make([]Filter, 0, len(order))
	for _, key := range order {
		merged = append(merged, latest[key])
	}
	return merged
}

// MapFilters resolves value mappings against a resource's raw attributes
func MapFilters(mappings []ValueMapping, values expression.Value) []Filter {
	filters := make([]Filter, 0, len(mappings))
	for _, m := range mappings {
		raw := values.Field(m.FromKey)
		if !raw.Exists() {
			continue
		}
		mapped := m.MappedValue(raw)
		if mapped == "" {
			continue
		}
		filters = append(filters, Filter{Key: m.ToKey, Value: mapped})
	}
	return filters
}

// ProductFilter is the product half of a catalog query
type ProductFilter struct {
	VendorName       string   `json:"vendorName,omitempty"`
	Service          string   `json:"service,omitempty"`
	ProductFamily    string   `json:"productFamily,omitempty"`
	Region           string   `json:"region,omitempty"`
	AttributeFilters []Filter `json:"attributeFilters,omitempty"`
}

// PriceFilter is the price half of a catalog query
type PriceFilter struct {
	PurchaseOption   string `json:"purchaseOption,omitempty"`
	Unit             string `json:"unit,omitempty"`
	DescriptionRegex string `json:"descriptionRegex,omitempty"`
}
