package output

import (
	"io"

	"github.com/goccy/go-json"

	"plancost/core/costs"
	"plancost/internal/errors"
)

// JSONFormatter renders a run as indented JSON
type JSONFormatter struct{}

// Format returns the format type
func (JSONFormatter) Format() Format {
	return FormatJSON
}

type jsonRun struct {
	RunID            string         `json:"runId"`
	Timestamp        string         `json:"timestamp"`
	Resources        []jsonResource `json:"resources"`
	TotalHourlyCost  string         `json:"totalHourlyCost"`
	TotalMonthlyCost string         `json:"totalMonthlyCost"`
}

type jsonResource struct {
	Resource     string          `json:"resource"`
	Breakdown    []jsonComponent `json:"breakdown"`
	SubResources []jsonResource  `json:"subresources,omitempty"`
	HourlyCost   string          `json:"hourlyCost"`
	MonthlyCost  string          `json:"monthlyCost"`
}

type jsonComponent struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	PriceHash   string `json:"priceHash,omitempty"`
	HourlyCost  string `json:"hourlyCost"`
	MonthlyCost string `json:"monthlyCost"`
}

// Render writes the run as JSON
func (JSONFormatter) Render(w io.Writer, run costs.Run) error {
	doc := jsonRun{
		RunID:            run.ID,
		Timestamp:        run.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Resources:        make([]jsonResource, 0, len(run.Breakdowns)),
		TotalHourlyCost:  displayAmount(run.TotalHourlyCost()),
		TotalMonthlyCost: displayAmount(run.TotalMonthlyCost()),
	}
	for _, breakdown := range run.Breakdowns {
		doc.Resources = append(doc.Resources, jsonBreakdown(breakdown))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return errors.Wrap(errors.TypeInternal, "encoding JSON output", err)
	}
	return nil
}

func jsonBreakdown(breakdown costs.ResourceCostBreakdown) jsonResource {
	resource := jsonResource{
		Resource:    breakdown.Resource.Address(),
		Breakdown:   make([]jsonComponent, 0, len(breakdown.PriceComponentCosts)),
		HourlyCost:  displayAmount(breakdown.HourlyCost()),
		MonthlyCost: displayAmount(breakdown.MonthlyCost()),
	}

	for _, cost := range breakdown.PriceComponentCosts {
		component := cost.PriceComponent
		resource.Breakdown = append(resource.Breakdown, jsonComponent{
			Name:        component.Name(),
			Unit:        component.Unit(),
			Quantity:    component.Quantity().String(),
			Price:       component.Price().String(),
			PriceHash:   component.PriceHash(),
			HourlyCost:  displayAmount(cost.HourlyCost),
			MonthlyCost: displayAmount(cost.MonthlyCost),
		})
	}

	for _, sub := range breakdown.SubResourceCosts {
		resource.SubResources = append(resource.SubResources, jsonBreakdown(sub))
	}
	return resource
}
