// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// NewMCPServer initializes and configures the churn risk MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Churn Risk Server",
		"1.0.0",
		server.WithLogging(),
	)

	if logger == nil {
		logger = zap.NewNop()
	}
	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  logger,
	}

	// --- 1. Tool: classify_product ---
	s.AddTool(mcp.NewTool("classify_product",
		mcp.WithDescription("Classify the churn risk of a product from its review count and review sentiment."),
		mcp.WithNumber("review_count", mcp.Description("Number of reviews the product has."), mcp.Required()),
		mcp.WithBoolean("fitment_problem", mcp.Description("Reviews report sizing or fit problems.")),
		mcp.WithNumber("fitment_severity", mcp.Description("Severity of the fit problem, 1-10 (0 = not reported).")),
		mcp.WithNumber("quality_sentiment", mcp.Description("Perceived quality, 1 (poor) to 5 (excellent) (0 = not reported).")),
		mcp.WithBoolean("delivery_issue", mcp.Description("Reviews report delivery or shipping problems.")),
		mcp.WithBoolean("color_mismatch", mcp.Description("Reviews report the color differs from the photos.")),
		mcp.WithBoolean("fabric_quality_issue", mcp.Description("Reviews report fabric problems such as pilling or thin material.")),
		mcp.WithNumber("price_value_perception", mcp.Description("Perceived value for money, 1-10 (0 = not reported).")),
	), h.handleClassifyProduct)

	// --- 2. Tool: get_product_risk ---
	s.AddTool(mcp.NewTool("get_product_risk",
		mcp.WithDescription("Look up the persisted sentiment and risk of one product in the sentiment store."),
		mcp.WithString("product_id", mcp.Description("The product identifier."), mcp.Required()),
	), h.handleGetProductRisk)

	// --- 3. Tool: get_risk_report ---
	s.AddTool(mcp.NewTool("get_risk_report",
		mcp.WithDescription("Merge the feature table with the persisted sentiment and return the class distribution and per-product risk."),
		mcp.WithString("reviews_path", mcp.Description("Path to the review CSV (defaults to the configured --reviews).")),
		mcp.WithString("features_path", mcp.Description("Path to a feature table CSV (defaults to the configured --features).")),
		mcp.WithString("risk_class", mcp.Description("Only return products of this class."), mcp.Enum("Healthy", "QualityChurn", "EngagementChurn")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of products returned.")),
	), h.handleGetRiskReport)

	// --- 4. Tool: get_store_status ---
	s.AddTool(mcp.NewTool("get_store_status",
		mcp.WithDescription("Report the backend, row counts and extraction times of the sentiment store."),
	), h.handleGetStoreStatus)

	return s
}

// StartMCPServer starts the churn risk MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, logger *zap.Logger) error {
	s := NewMCPServer(baseCfg, mgr, logger)
	return server.ServeStdio(s)
}
