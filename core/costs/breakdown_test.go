package costs

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"plancost/core/expression"
	"plancost/core/pricing"
	"plancost/core/schema"
)

// stubRunner prices every component from a fixed table keyed by component
// name, without touching the network.
type stubRunner struct {
	prices map[string]string
}

func (s stubRunner) RunQueries(ctx context.Context, resource schema.Resource) ([]pricing.QueryResult, error) {
	var results []pricing.QueryResult

	appendFor := func(res schema.Resource) {
		for _, component := range res.PriceComponents() {
			var envelope pricing.PriceEnvelope
			if usd, ok := s.prices[component.Name()]; ok {
				envelope.Data.Products = []pricing.Product{{
					Prices: []pricing.Price{{
						USD:       decimal.RequireFromString(usd),
						PriceHash: "hash-" + component.Name(),
					}},
				}}
			}
			results = append(results, pricing.QueryResult{
				Resource:       res,
				PriceComponent: component,
				Result:         envelope,
			})
		}
	}

	appendFor(resource)
	for _, sub := range schema.FlattenSubResources(resource) {
		appendFor(sub)
	}
	return results, nil
}

func costedResource(address string, components map[string]struct {
	unit     string
	timeUnit schema.TimeUnit
	quantity string
}) schema.Resource {
	resource := schema.NewBaseResource(address, "us-east-1", expression.Object(nil), true)
	for name, spec := range components {
		component := schema.NewBasePriceComponent(name, resource, spec.unit, spec.timeUnit)
		quantity := decimal.RequireFromString(spec.quantity)
		component.SetQuantityFunc(func(schema.Resource) decimal.Decimal { return quantity })
		resource.AddPriceComponent(component)
	}
	return resource
}

func TestGenerateBreakdowns(t *testing.T) {
	instance := costedResource("aws_instance.app", map[string]struct {
		unit     string
		timeUnit schema.TimeUnit
		quantity string
	}{
		"Instance hours": {unit: "hours", timeUnit: schema.TimeUnitHour, quantity: "1"},
	})

	volume := costedResource("aws_instance.app.root_block_device", map[string]struct {
		unit     string
		timeUnit schema.TimeUnit
		quantity string
	}{
		"GB": {unit: "GB/month", timeUnit: schema.TimeUnitMonth, quantity: "10"},
	})
	instance.AddSubResource(volume)

	runner := stubRunner{prices: map[string]string{
		"Instance hours": "0.1",
		"GB":             "0.073",
	}}

	breakdowns, err := GenerateBreakdowns(context.Background(), runner, []schema.Resource{instance})
	if err != nil {
		t.Fatalf("GenerateBreakdowns: %v", err)
	}
	if len(breakdowns) != 1 {
		t.Fatalf("got %d breakdowns, want 1", len(breakdowns))
	}

	b := breakdowns[0]
	if len(b.PriceComponentCosts) != 1 || len(b.SubResourceCosts) != 1 {
		t.Fatalf("unexpected breakdown shape: %d components, %d subs",
			len(b.PriceComponentCosts), len(b.SubResourceCosts))
	}

	// Instance hours: 0.1/hour, monthly 0.1 * 730 = 73.
	if want := decimal.RequireFromString("0.1"); !b.PriceComponentCosts[0].HourlyCost.Equal(want) {
		t.Errorf("instance hourly = %s, want %s", b.PriceComponentCosts[0].HourlyCost, want)
	}
	if want := decimal.RequireFromString("73"); !b.PriceComponentCosts[0].MonthlyCost.Equal(want) {
		t.Errorf("instance monthly = %s, want %s", b.PriceComponentCosts[0].MonthlyCost, want)
	}

	// Volume: 0.073/GB-month * 10 GB = 0.73/month, hourly 0.73 / 730 = 0.001.
	volumeCost := b.SubResourceCosts[0].PriceComponentCosts[0]
	if want := decimal.RequireFromString("0.73"); !volumeCost.MonthlyCost.Equal(want) {
		t.Errorf("volume monthly = %s, want %s", volumeCost.MonthlyCost, want)
	}
	if want := decimal.RequireFromString("0.001"); !volumeCost.HourlyCost.Equal(want) {
		t.Errorf("volume hourly = %s, want %s", volumeCost.HourlyCost, want)
	}

	// Totals include the sub-resource.
	if want := decimal.RequireFromString("73.73"); !b.MonthlyCost().Equal(want) {
		t.Errorf("resource monthly total = %s, want %s", b.MonthlyCost(), want)
	}
	if want := decimal.RequireFromString("0.101"); !b.HourlyCost().Equal(want) {
		t.Errorf("resource hourly total = %s, want %s", b.HourlyCost(), want)
	}
}

func TestGenerateBreakdownsSkipsFreeResources(t *testing.T) {
	launchConfig := schema.NewBaseResource("aws_launch_configuration.lc", "us-east-1", expression.Object(nil), false)
	component := schema.NewBasePriceComponent("Instance hours", launchConfig, "hours", schema.TimeUnitHour)
	launchConfig.AddPriceComponent(component)

	breakdowns, err := GenerateBreakdowns(context.Background(), stubRunner{}, []schema.Resource{launchConfig})
	if err != nil {
		t.Fatalf("GenerateBreakdowns: %v", err)
	}
	if len(breakdowns) != 0 {
		t.Errorf("got %d breakdowns, want 0 for free resource", len(breakdowns))
	}
}

func TestGenerateBreakdownsExcludesSkippedComponents(t *testing.T) {
	instance := schema.NewBaseResource("aws_instance.app", "us-east-1", expression.Object(nil), true)
	instance.AddPriceComponent(schema.NewBasePriceComponent("Instance hours", instance, "hours", schema.TimeUnitHour))

	skipped := schema.NewBasePriceComponent("IOPS", instance, "IOPS", schema.TimeUnitMonth)
	skipped.SetSkipFunc(func(schema.Resource) bool { return true })
	instance.AddPriceComponent(skipped)

	runner := stubRunner{prices: map[string]string{"Instance hours": "0.1"}}
	breakdowns, err := GenerateBreakdowns(context.Background(), runner, []schema.Resource{instance})
	if err != nil {
		t.Fatalf("GenerateBreakdowns: %v", err)
	}
	if len(breakdowns) != 1 {
		t.Fatalf("got %d breakdowns, want 1", len(breakdowns))
	}

	costs := breakdowns[0].PriceComponentCosts
	if len(costs) != 1 {
		t.Fatalf("got %d component costs, want 1", len(costs))
	}
	if got := costs[0].PriceComponent.Name(); got != "Instance hours" {
		t.Errorf("remaining component = %q, want Instance hours", got)
	}
}

func TestGenerateBreakdownsOrdering(t *testing.T) {
	shape := map[string]struct {
		unit     string
		timeUnit schema.TimeUnit
		quantity string
	}{
		"Instance hours": {unit: "hours", timeUnit: schema.TimeUnitHour, quantity: "1"},
	}

	resources := []schema.Resource{
		costedResource("aws_instance.b", shape),
		costedResource("aws_instance.a", shape),
		costedResource("aws_instance.c", shape),
	}

	breakdowns, err := GenerateBreakdowns(context.Background(), stubRunner{}, resources)
	if err != nil {
		t.Fatalf("GenerateBreakdowns: %v", err)
	}

	want := []string{"aws_instance.a", "aws_instance.b", "aws_instance.c"}
	for i, b := range breakdowns {
		if b.Resource.Address() != want[i] {
			t.Errorf("breakdown[%d] = %s, want %s", i, b.Resource.Address(), want[i])
		}
	}
}

func TestRunTotals(t *testing.T) {
	shape := map[string]struct {
		unit     string
		timeUnit schema.TimeUnit
		quantity string
	}{
		"Instance hours": {unit: "hours", timeUnit: schema.TimeUnitHour, quantity: "1"},
	}
	runner := stubRunner{prices: map[string]string{"Instance hours": "0.2"}}

	run, err := GenerateRun(context.Background(), runner, []schema.Resource{
		costedResource("aws_instance.a", shape),
		costedResource("aws_instance.b", shape),
	})
	if err != nil {
		t.Fatalf("GenerateRun: %v", err)
	}

	if run.ID == "" {
		t.Error("run ID should be set")
	}
	if want := decimal.RequireFromString("0.4"); !run.TotalHourlyCost().Equal(want) {
		t.Errorf("total hourly = %s, want %s", run.TotalHourlyCost(), want)
	}
	if want := decimal.RequireFromString("292"); !run.TotalMonthlyCost().Equal(want) {
		t.Errorf("total monthly = %s, want %s", run.TotalMonthlyCost(), want)
	}
}
