package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"plancost/core/costs"
	"plancost/core/expression"
	"plancost/core/schema"
)

func testRun() costs.Run {
	instance := schema.NewBaseResource("aws_instance.app", "us-east-1", expression.Object(nil), true)
	hours := schema.NewBasePriceComponent("Instance hours", instance, "hours", schema.TimeUnitHour)
	hours.SetPrice(decimal.RequireFromString("0.1"))
	hours.SetPriceHash("hash-hours")
	instance.AddPriceComponent(hours)

	rootDevice := schema.NewBaseResource("aws_instance.app.root_block_device", "us-east-1", expression.Object(nil), true)
	gb := schema.NewBasePriceComponent("GB", rootDevice, "GB/month", schema.TimeUnitMonth)
	gb.SetPrice(decimal.RequireFromString("0.073"))
	gb.SetQuantityFunc(func(schema.Resource) decimal.Decimal { return decimal.NewFromInt(10) })
	rootDevice.AddPriceComponent(gb)
	instance.AddSubResource(rootDevice)

	return costs.Run{
		ID:        "test-run",
		Timestamp: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC),
		Breakdowns: []costs.ResourceCostBreakdown{
			{
				Resource: instance,
				PriceComponentCosts: []costs.PriceComponentCost{
					{PriceComponent: hours, HourlyCost: hours.HourlyCost(), MonthlyCost: hours.MonthlyCost()},
				},
				SubResourceCosts: []costs.ResourceCostBreakdown{
					{
						Resource: rootDevice,
						PriceComponentCosts: []costs.PriceComponentCost{
							{PriceComponent: gb, HourlyCost: gb.HourlyCost(), MonthlyCost: gb.MonthlyCost()},
						},
					},
				},
			},
		},
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    Format
		wantErr bool
	}{
		{"table", "table", FormatTable, false},
		{"default is table", "", FormatTable, false},
		{"json", "json", FormatJSON, false},
		{"unknown", "yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := NewFormatter(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFormatter(%q): %v", tt.format, err)
			}
			if formatter.Format() != tt.want {
				t.Errorf("Format() = %q, want %q", formatter.Format(), tt.want)
			}
		})
	}
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	if err := (TableFormatter{}).Render(&buf, testRun()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"NAME", "QUANTITY", "UNIT", "PRICE", "HOURLY COST", "MONTHLY COST",
		"aws_instance.app",
		"├─ Instance hours",
		"└─ root_block_device",
		"└─ GB",
		"OVERALL TOTAL",
		"73.73",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONRender(t *testing.T) {
	var buf bytes.Buffer
	if err := (JSONFormatter{}).Render(&buf, testRun()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	var doc struct {
		RunID     string `json:"runId"`
		Resources []struct {
			Resource  string `json:"resource"`
			Breakdown []struct {
				Name        string `json:"name"`
				Quantity    string `json:"quantity"`
				Price       string `json:"price"`
				PriceHash   string `json:"priceHash"`
				MonthlyCost string `json:"monthlyCost"`
			} `json:"breakdown"`
			SubResources []struct {
				Resource    string `json:"resource"`
				MonthlyCost string `json:"monthlyCost"`
			} `json:"subresources"`
			MonthlyCost string `json:"monthlyCost"`
		} `json:"resources"`
		TotalMonthlyCost string `json:"totalMonthlyCost"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}

	if doc.RunID != "test-run" {
		t.Errorf("runId = %q", doc.RunID)
	}
	if len(doc.Resources) != 1 {
		t.Fatalf("got %d resources, want 1", len(doc.Resources))
	}

	resource := doc.Resources[0]
	if resource.Resource != "aws_instance.app" {
		t.Errorf("resource = %q", resource.Resource)
	}
	if resource.MonthlyCost != "73.73" {
		t.Errorf("resource monthlyCost = %q, want 73.73", resource.MonthlyCost)
	}
	if len(resource.Breakdown) != 1 || resource.Breakdown[0].Name != "Instance hours" {
		t.Fatalf("unexpected breakdown: %+v", resource.Breakdown)
	}
	if resource.Breakdown[0].PriceHash != "hash-hours" {
		t.Errorf("priceHash = %q", resource.Breakdown[0].PriceHash)
	}
	if len(resource.SubResources) != 1 || resource.SubResources[0].MonthlyCost != "0.73" {
		t.Fatalf("unexpected subresources: %+v", resource.SubResources)
	}
	if doc.TotalMonthlyCost != "73.73" {
		t.Errorf("totalMonthlyCost = %q, want 73.73", doc.TotalMonthlyCost)
	}
}

func TestDisplayAmountRounding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.1", "0.1"},
		{"0.0000005", "0.000001"},
		{"0.00000049", "0"},
		{"12.3456789", "12.345679"},
	}

	for _, tt := range tests {
		if got := displayAmount(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("displayAmount(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
