package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cerennceyhan/e-commerce-churn-prediction/core"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	logger  *zap.Logger
}

// riskResult is the answer of classify_product.
type riskResult struct {
	RiskClass     string `json:"risk_class"`
	RiskClassCode int    `json:"risk_class_code"`
	RiskScore     int    `json:"risk_score"`
}

func newRiskResult(r schema.RiskAssessment) riskResult {
	return riskResult{
		RiskClass:     contract.GetPlainLabel(r.Class),
		RiskClassCode: int(r.Class),
		RiskScore:     r.Score,
	}
}

// productRisk is one product of get_risk_report.
type productRisk struct {
	ProductID     string `json:"product_id"`
	ReviewCount   int    `json:"review_count"`
	HasSentiment  bool   `json:"has_sentiment"`
	MainComplaint string `json:"main_complaint,omitempty"`
	riskResult
}

type riskReport struct {
	Summary  schema.ReportSummary `json:"summary"`
	Products []productRisk        `json:"products"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) store() (contract.SentimentStore, error) {
	if h.mgr == nil {
		return nil, fmt.Errorf("sentiment store is not initialized")
	}
	store := h.mgr.GetSentimentStore()
	if store == nil {
		return nil, fmt.Errorf("sentiment store is not initialized")
	}
	return store, nil
}

func (h *toolHandler) handleClassifyProduct(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reviewCount, err := request.RequireInt("review_count")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid classifier input: %v", err)), nil
	}
	s := schema.SentimentSummary{
		FitmentProblem:       request.GetBool("fitment_problem", false),
		FitmentSeverity:      request.GetInt("fitment_severity", 0),
		QualitySentiment:     request.GetInt("quality_sentiment", 0),
		DeliveryIssue:        request.GetBool("delivery_issue", false),
		ColorMismatch:        request.GetBool("color_mismatch", false),
		FabricQualityIssue:   request.GetBool("fabric_quality_issue", false),
		PriceValuePerception: request.GetInt("price_value_perception", 0),
	}
	if err := core.ValidateClassifierInput(reviewCount, s); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid classifier input: %v", err)), nil
	}
	return jsonResult(newRiskResult(core.Classify(reviewCount, s)))
}

func (h *toolHandler) handleGetProductRisk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	productID := request.GetString("product_id", "")
	if productID == "" {
		return mcp.NewToolResultError("product_id is required"), nil
	}
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := store.LoadAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load persisted sentiment: %v", err)), nil
	}
	for _, rec := range records {
		if rec.ProductID == productID {
			return jsonResult(struct {
				schema.SentimentRecord
				Label string `json:"risk_class"`
			}{rec, contract.GetPlainLabel(rec.RiskClass)})
		}
	}
	return mcp.NewToolResultError(fmt.Sprintf("no persisted sentiment for product %q", productID)), nil
}

func (h *toolHandler) handleGetRiskReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("reviews_path", ""); p != "" {
		cfg.ReviewsPath = p
		cfg.FeaturesPath = ""
	}
	if p := request.GetString("features_path", ""); p != "" {
		cfg.FeaturesPath = p
	}

	var filter *schema.RiskClass
	if c := request.GetString("risk_class", ""); c != "" {
		class, err := schema.ParseRiskClass(c)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = &class
	}

	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, summary, err := core.BuildReport(ctx, cfg, store, h.logger)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	limit := request.GetInt("limit", 0)
	report := riskReport{Summary: summary, Products: []productRisk{}}
	for _, row := range rows {
		if filter != nil && row.Risk.Class != *filter {
			continue
		}
		if limit > 0 && len(report.Products) >= limit {
			break
		}
		report.Products = append(report.Products, productRisk{
			ProductID:     row.Features.ProductID,
			ReviewCount:   row.Features.ReviewCount,
			HasSentiment:  row.HasSentiment(),
			MainComplaint: row.EffectiveSentiment().MainComplaint,
			riskResult:    newRiskResult(row.Risk),
		})
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetStoreStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := h.store()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := store.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get store status: %v", err)), nil
	}
	return jsonResult(status)
}
