package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lumenshop/api/pkg/postgres"
)

const salesReportSystemPrompt = `You are a business analyst for an e-commerce storefront.
Generate concise, actionable insights from sales data. Focus on:
- Revenue and order-volume trends
- Best and worst performing days
- Specific recommendations for merchandising decisions
Keep responses to 3-4 paragraphs maximum.`

// Report wraps raw analytics data with the optional AI summary.
type Report struct {
	Status      string      `json:"status"`
	RawData     interface{} `json:"raw_data"`
	Insights    string      `json:"insights,omitempty"`
	Error       string      `json:"error,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	AIEnabled   bool        `json:"ai_enabled"`
}

// SalesReport summarizes a sales window. The raw aggregates are always
// returned; insight generation failures degrade to raw-only.
func (r *Reporter) SalesReport(ctx context.Context, summary *postgres.SalesSummary, top []postgres.TopProduct) *Report {
	report := &Report{
		Status:      "success",
		RawData:     map[string]interface{}{"sales": summary, "top_products": top},
		GeneratedAt: time.Now(),
		AIEnabled:   r.Enabled(),
	}
	if !r.Enabled() {
		return report
	}

	payload, err := json.Marshal(report.RawData)
	if err != nil {
		report.Error = err.Error()
		return report
	}

	insights, err := r.generateCompletion(ctx, salesReportSystemPrompt,
		"Analyze this sales data and summarize the key findings:\n"+string(payload))
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Insights = insights
	return report
}
