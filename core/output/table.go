package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"plancost/core/costs"
	"plancost/internal/errors"
)

// TableFormatter renders a run as a plain-text table, one tree per costed
// resource with components and sub-resources as branches.
type TableFormatter struct{}

// Format returns the format type
func (TableFormatter) Format() Format {
	return FormatTable
}

// Render writes the run as a table
func (TableFormatter) Render(w io.Writer, run costs.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tQUANTITY\tUNIT\tPRICE\tHOURLY COST\tMONTHLY COST")

	for _, breakdown := range run.Breakdowns {
		fmt.Fprintf(tw, "%s\t\t\t\t%s\t%s\n",
			breakdown.Resource.Address(),
			displayAmount(breakdown.HourlyCost()),
			displayAmount(breakdown.MonthlyCost()))
		writeBranches(tw, breakdown, "")
		fmt.Fprintln(tw, "\t\t\t\t\t")
	}

	fmt.Fprintf(tw, "OVERALL TOTAL\t\t\t\t%s\t%s\n",
		displayAmount(run.TotalHourlyCost()),
		displayAmount(run.TotalMonthlyCost()))

	if err := tw.Flush(); err != nil {
		return errors.Wrap(errors.TypeInternal, "rendering table output", err)
	}
	return nil
}

// writeBranches prints a breakdown's components first, then its
// sub-resources, with tree glyphs marking the last branch at each level.
func writeBranches(w io.Writer, breakdown costs.ResourceCostBreakdown, prefix string) {
	total := len(breakdown.PriceComponentCosts) + len(breakdown.SubResourceCosts)
	written := 0

	glyphs := func() (string, string) {
		written++
		if written == total {
			return prefix + "└─ ", prefix + "   "
		}
		return prefix + "├─ ", prefix + "│  "
	}

	for _, cost := range breakdown.PriceComponentCosts {
		branch, _ := glyphs()
		component := cost.PriceComponent
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n",
			branch, component.Name(),
			component.Quantity().String(),
			component.Unit(),
			displayAmount(component.Price()),
			displayAmount(cost.HourlyCost),
			displayAmount(cost.MonthlyCost))
	}

	for _, sub := range breakdown.SubResourceCosts {
		branch, continuation := glyphs()
		fmt.Fprintf(w, "%s%s\t\t\t\t%s\t%s\n",
			branch, subResourceLabel(breakdown, sub),
			displayAmount(sub.HourlyCost()),
			displayAmount(sub.MonthlyCost()))
		writeBranches(w, sub, continuation)
	}
}

// subResourceLabel shows a sub-resource address relative to its parent
func subResourceLabel(parent, sub costs.ResourceCostBreakdown) string {
	parentAddress := parent.Resource.Address() + "."
	return strings.TrimPrefix(sub.Resource.Address(), parentAddress)
}
