// Package cmd - breakdown command
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plancost/clouds/aws"
	"plancost/core/costs"
	"plancost/core/output"
	"plancost/core/pricing"
	"plancost/core/terraform"
	"plancost/internal/config"
	"plancost/internal/logging"
)

var (
	tfplanJSON   string
	tfplanFile   string
	tfdir        string
	apiURL       string
	outputFormat string
)

// breakdownCmd represents the breakdown command
var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Show a cost breakdown for a Terraform plan",
	Long: `Build the resource graph for a Terraform plan, price it against
the pricing service and print per-resource hourly and monthly costs.

The plan can come from a plan JSON file, a binary plan file or a
Terraform project directory (which runs terraform plan).

Examples:
  plancost breakdown --tfplan-json plan.json
  plancost breakdown --tfdir ./infrastructure --tfplan plan.tfplan
  plancost breakdown --tfdir ./infrastructure -o json`,
	RunE: runBreakdown,
}

func init() {
	breakdownCmd.Flags().StringVar(&tfplanJSON, "tfplan-json", "", "path to a Terraform plan JSON file")
	breakdownCmd.Flags().StringVar(&tfplanFile, "tfplan", "", "path to a binary Terraform plan file (relative to --tfdir)")
	breakdownCmd.Flags().StringVar(&tfdir, "tfdir", "", "path to a Terraform project directory")
	breakdownCmd.Flags().StringVar(&apiURL, "api-url", "", "pricing service base URL")
	breakdownCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json)")
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	if apiURL != "" {
		cfg.Pricing.APIEndpoint = apiURL
		config.Set(cfg)
	}

	planJSON, err := loadPlanJSON()
	if err != nil {
		return err
	}

	parser := terraform.NewParser(aws.Registry())
	parser.SetDefaultRegion(cfg.AWS.DefaultRegion)

	resources, err := parser.ParsePlanJSON(planJSON)
	if err != nil {
		return err
	}
	logging.Info(fmt.Sprintf("Parsed %d priced resources", len(resources)))

	runner := pricing.NewGraphQLQueryRunner(cfg.Pricing)
	run, err := costs.GenerateRun(ctx, runner, resources)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return err
	}
	return formatter.Render(os.Stdout, run)
}

// loadPlanJSON resolves the plan JSON from the flags, preferring an
// explicit JSON file over plan generation.
func loadPlanJSON() ([]byte, error) {
	switch {
	case tfplanJSON != "":
		return os.ReadFile(tfplanJSON)
	case tfplanFile != "":
		return terraform.ShowPlanJSON(tfdir, tfplanFile)
	case tfdir != "":
		return terraform.GeneratePlanJSON(tfdir)
	default:
		return nil, fmt.Errorf("one of --tfplan-json, --tfplan or --tfdir is required")
	}
}
