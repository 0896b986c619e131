// internal/app/features/employer/handler.go
package employer

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/talenthub/internal/app/system/analytics"
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// APIFactory returns the analytics backend to use on behalf of u.
type APIFactory func(u *auth.SessionUser) analytics.API

type Handler struct {
	NewAPI        APIFactory
	DefaultPeriod string
	Log           *zap.Logger
}

func NewHandler(newAPI APIFactory, defaultPeriod string, logger *zap.Logger) *Handler {
	return &Handler{
		NewAPI:        newAPI,
		DefaultPeriod: defaultPeriod,
		Log:           logger,
	}
}

// SummaryCard is one headline counter.
type SummaryCard struct {
	Title string `json:"title"`
	Value int64  `json:"value"`
}

type pageResponse struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Notice       string            `json:"notice,omitempty"`
	Period       string            `json:"period"`
	Outcome      analytics.Outcome `json:"outcome"`
	SummaryCards []SummaryCard     `json:"summary_cards"`
	TopJobsLimit int               `json:"top_jobs_limit"`
}

// Cards lists the headline counters in display order. Missing counters
// are already zero in the normalized summary.
func Cards(s *analytics.Summary) []SummaryCard {
	if s == nil {
		return []SummaryCard{}
	}
	return []SummaryCard{
		{Title: "Total Jobs", Value: s.TotalJobs},
		{Title: "Active Jobs", Value: s.ActiveJobs},
		{Title: "Total Applications", Value: s.TotalApplications},
		{Title: "Total Job Views", Value: s.TotalJobViews},
	}
}

// ServeAnalytics handles GET /employer/analytics?period=.
//
// Each request is one page view: it performs a single fetch through its own
// Loader and responds with the settled Outcome. Failures are part of the
// page, so the status is 200 unless the handler itself is misconfigured.
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		// RequireRole runs first; reaching here means routing is wrong.
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period == "" {
		period = h.DefaultPeriod
	}

	var api analytics.API
	if h.NewAPI != nil {
		api = h.NewAPI(u)
	}
	loader := analytics.NewLoader(api, h.Log.With(zap.String("user_id", u.ID)))
	defer loader.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Fetch(), h.Log, "analytics fetch")
	out := loader.Load(ctx, period)
	cancel()

	writeJSON(w, http.StatusOK, page(period, out))
}

func page(period string, out analytics.Outcome) pageResponse {
	resp := pageResponse{
		Title:        "Job Analytics",
		Period:       period,
		Outcome:      out,
		SummaryCards: []SummaryCard{},
		TopJobsLimit: 5,
	}
	switch {
	case out.Phase == analytics.Failed:
		resp.Description = "Error loading analytics data"
	case out.Phase == analytics.Loading:
		resp.Description = "Loading analytics data..."
	case !out.SummaryPresent:
		resp.Description = "No summary data available"
		resp.Notice = "No summary analytics data is currently available. Please check back later."
	default:
		resp.Title = "Analytics Dashboard"
		resp.Description = "Overview of your recruitment performance."
		resp.SummaryCards = Cards(out.View.SummaryStats)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
