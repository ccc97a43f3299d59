// Package costs turns a priced resource graph into cost breakdowns. A
// breakdown mirrors the resource tree: per-component costs for the resource
// itself plus nested breakdowns for its owned sub-resources.
package costs

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"plancost/core/pricing"
	"plancost/core/schema"
	"plancost/internal/logging"
)

// PriceComponentCost is the priced cost of one component
type PriceComponentCost struct {
	PriceComponent schema.PriceComponent
	HourlyCost     decimal.Decimal
	MonthlyCost    decimal.Decimal
}

// ResourceCostBreakdown is the cost tree for one resource
type ResourceCostBreakdown struct {
	Resource            schema.Resource
	PriceComponentCosts []PriceComponentCost
	SubResourceCosts    []ResourceCostBreakdown
}

// HourlyCost totals the resource's own components plus all sub-resources
func (b ResourceCostBreakdown) HourlyCost() decimal.Decimal {
	total := decimal.Zero
	for _, c := range b.PriceComponentCosts {
		total = total.Add(c.HourlyCost)
	}
	for _, sub := range b.SubResourceCosts {
		total = total.Add(sub.HourlyCost())
	}
	return total
}

// MonthlyCost totals the resource's own components plus all sub-resources
func (b ResourceCostBreakdown) MonthlyCost() decimal.Decimal {
	total := decimal.Zero
	for _, c := range b.PriceComponentCosts {
		total = total.Add(c.MonthlyCost)
	}
	for _, sub := range b.SubResourceCosts {
		total = total.Add(sub.MonthlyCost())
	}
	return total
}

// Run is one complete costing pass over a resource graph
type Run struct {
	ID         string
	Timestamp  time.Time
	Breakdowns []ResourceCostBreakdown
}

// TotalHourlyCost totals every breakdown in the run
func (r Run) TotalHourlyCost() decimal.Decimal {
	total := decimal.Zero
	for _, b := range r.Breakdowns {
		total = total.Add(b.HourlyCost())
	}
	return total
}

// TotalMonthlyCost totals every breakdown in the run
func (r Run) TotalMonthlyCost() decimal.Decimal {
	total := decimal.Zero
	for _, b := range r.Breakdowns {
		total = total.Add(b.MonthlyCost())
	}
	return total
}

// GenerateRun prices the graph and produces a run with stable ordering:
// resources by address, components by name.
func GenerateRun(ctx context.Context, runner pricing.QueryRunner, resources []schema.Resource) (Run, error) {
	breakdowns, err := GenerateBreakdowns(ctx, runner, resources)
	if err != nil {
		return Run{}, err
	}
	return Run{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Breakdowns: breakdowns,
	}, nil
}

// GenerateBreakdowns prices each costed resource and builds its breakdown
// tree. Resources whose type never carries cost are left out entirely.
func GenerateBreakdowns(ctx context.Context, runner pricing.QueryRunner, resources []schema.Resource) ([]ResourceCostBreakdown, error) {
	var breakdowns []ResourceCostBreakdown

	for _, resource := range resources {
		if !resource.HasCost() {
			logging.Debug("Skipping free resource", zap.String("address", resource.Address()))
			continue
		}
		if err := pricing.PopulatePrices(ctx, runner, resource); err != nil {
			return nil, err
		}
		breakdowns = append(breakdowns, breakdownResource(resource))
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].Resource.Address() < breakdowns[j].Resource.Address()
	})
	return breakdowns, nil
}

func breakdownResource(resource schema.Resource) ResourceCostBreakdown {
	components := resource.PriceComponents()
	componentCosts := make([]PriceComponentCost, 0, len(components))
	for _, component := range components {
		// Components the query engine skipped stay out of the output too.
		if component.SkipQuery() {
			continue
		}
		componentCosts = append(componentCosts, PriceComponentCost{
			PriceComponent: component,
			HourlyCost:     component.HourlyCost(),
			MonthlyCost:    component.MonthlyCost(),
		})
	}

	subResources := resource.SubResources()
	subCosts := make([]ResourceCostBreakdown, 0, len(subResources))
	for _, sub := range subResources {
		subCosts = append(subCosts, breakdownResource(sub))
	}

	return ResourceCostBreakdown{
		Resource:            resource,
		PriceComponentCosts: componentCosts,
		SubResourceCosts:    subCosts,
	}
}
