package cmd

import (
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the churn risk MCP server",
	Long: `Launch an MCP server over stdio that allows AI agents to classify products,
look up persisted sentiment and read the risk report via standard tools.

Tools:
  classify_product  - run the risk rule engine on one input
  get_product_risk  - persisted sentiment and risk of one product
  get_risk_report   - class distribution and per-product risk (uses --reviews or --features)
  get_store_status  - sentiment store statistics

Logs go to stderr so they never mix with the protocol on stdout.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, logger)
	},
}
