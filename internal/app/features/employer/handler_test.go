package employer_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/talenthub/internal/app/features/employer"
	"github.com/dalemusser/talenthub/internal/app/system/analytics"
	"github.com/dalemusser/talenthub/internal/app/system/auth"
	"github.com/dalemusser/talenthub/internal/testutil"
	"go.uber.org/zap"
)

type fakeAPI struct {
	raw     string
	err     error
	periods []string
}

func (f *fakeAPI) GetAnalytics(_ context.Context, q analytics.Query) (*analytics.Envelope, error) {
	f.periods = append(f.periods, q.Period)
	if f.err != nil {
		return nil, f.err
	}
	var env analytics.Envelope
	if err := json.Unmarshal([]byte(f.raw), &env); err != nil {
		return nil, err
	}
	return &env, nil
}

type pageBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Notice      string `json:"notice"`
	Period      string `json:"period"`
	Outcome     struct {
		State          string `json:"state"`
		SummaryPresent bool   `json:"summary_present"`
		Message        string `json:"message"`
		View           struct {
			SummaryStats                  *json.RawMessage  `json:"summary_stats"`
			ApplicationStatusDistribution []analytics.Slice `json:"application_status_distribution"`
			PopularJobsData               []json.RawMessage `json:"popular_jobs_data"`
		} `json:"view"`
	} `json:"outcome"`
	SummaryCards []employer.SummaryCard `json:"summary_cards"`
}

func newRouter(t *testing.T, api *fakeAPI) (http.Handler, *[]*auth.SessionUser) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	var seen []*auth.SessionUser
	h := employer.NewHandler(func(u *auth.SessionUser) analytics.API {
		seen = append(seen, u)
		return api
	}, "month", zap.NewNop())
	return employer.Routes(h, sm), &seen
}

func get(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, pageBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body pageBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rec, body
}

const fullEnvelope = `{"status":"success","message":"Analytics data retrieved successfully","data":{"data":{
	"summary":{"total_jobs":5,"active_jobs":2,"application_status_counts":{"pending":3,"in review":1}},
	"time_series":{},
	"popular_jobs":[{"id":1,"title":"X","view_count":10,"num_applications":2}]}}}`

func TestServeAnalytics_Loaded(t *testing.T) {
	api := &fakeAPI{raw: fullEnvelope}
	h, seen := newRouter(t, api)

	user := testutil.EmployerUser()
	rec, body := get(t, h, testutil.WithUser(httptest.NewRequest("GET", "/analytics", nil), user))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if body.Outcome.State != "loaded" || !body.Outcome.SummaryPresent {
		t.Errorf("outcome: got %+v", body.Outcome)
	}
	if body.Title != "Analytics Dashboard" {
		t.Errorf("Title: got %q", body.Title)
	}
	want := []employer.SummaryCard{
		{Title: "Total Jobs", Value: 5},
		{Title: "Active Jobs", Value: 2},
		{Title: "Total Applications", Value: 0},
		{Title: "Total Job Views", Value: 0},
	}
	if len(body.SummaryCards) != len(want) {
		t.Fatalf("cards: got %v", body.SummaryCards)
	}
	for i := range want {
		if body.SummaryCards[i] != want[i] {
			t.Errorf("card %d: got %+v, want %+v", i, body.SummaryCards[i], want[i])
		}
	}
	dist := body.Outcome.View.ApplicationStatusDistribution
	if len(dist) != 2 || dist[0].Label != "Pending" || dist[1].Label != "In review" {
		t.Errorf("distribution: got %v", dist)
	}
	if len(api.periods) != 1 || api.periods[0] != "month" {
		t.Errorf("periods: got %v, want [month]", api.periods)
	}
	if len(*seen) != 1 || (*seen)[0].ID != user.ID {
		t.Errorf("factory user: got %v", *seen)
	}
}

func TestServeAnalytics_PeriodQuery(t *testing.T) {
	api := &fakeAPI{raw: fullEnvelope}
	h, _ := newRouter(t, api)

	_, body := get(t, h, testutil.WithUser(httptest.NewRequest("GET", "/analytics?period=week", nil), testutil.EmployerUser()))

	if body.Period != "week" || api.periods[0] != "week" {
		t.Errorf("period: body %q, api %v", body.Period, api.periods)
	}
}

func TestServeAnalytics_NoSummary(t *testing.T) {
	api := &fakeAPI{raw: `{"status":"success","data":{"data":{"popular_jobs":[]}}}`}
	h, _ := newRouter(t, api)

	_, body := get(t, h, testutil.WithUser(httptest.NewRequest("GET", "/analytics", nil), testutil.EmployerUser()))

	if body.Outcome.State != "loaded" || body.Outcome.SummaryPresent {
		t.Errorf("outcome: got %+v", body.Outcome)
	}
	if body.Notice == "" || len(body.SummaryCards) != 0 {
		t.Errorf("expected empty-state notice and no cards, got %q %v", body.Notice, body.SummaryCards)
	}
}

func TestServeAnalytics_Failures(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeAPI
		want string
	}{
		{
			name: "server message",
			api:  &fakeAPI{raw: `{"status":"error","message":"Employer profile not found"}`},
			want: "Employer profile not found",
		},
		{
			name: "nested message",
			api:  &fakeAPI{raw: `{"status":"error","data":{"message":"nested"}}`},
			want: "nested",
		},
		{
			name: "fallback",
			api:  &fakeAPI{raw: `{"status":"success","data":{}}`},
			want: analytics.FallbackMessage,
		},
		{
			name: "transport",
			api:  &fakeAPI{err: &analytics.TransportError{Err: errors.New("timeout")}},
			want: "Could not load data from API: timeout. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newRouter(t, tt.api)
			rec, body := get(t, h, testutil.WithUser(httptest.NewRequest("GET", "/analytics", nil), testutil.EmployerUser()))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d", rec.Code)
			}
			if body.Outcome.State != "failed" || body.Outcome.Message != tt.want {
				t.Errorf("outcome: got %q %q, want failed %q", body.Outcome.State, body.Outcome.Message, tt.want)
			}
			if body.Description != "Error loading analytics data" {
				t.Errorf("Description: got %q", body.Description)
			}
			if body.Outcome.View.SummaryStats != nil || len(body.Outcome.View.PopularJobsData) != 0 {
				t.Errorf("expected empty view on failure")
			}
		})
	}
}

func TestRoutes_Guard(t *testing.T) {
	api := &fakeAPI{raw: fullEnvelope}
	h, _ := newRouter(t, api)

	visitor := httptest.NewRequest("GET", "/analytics", nil)
	visitor.Header.Set("Accept", "text/html")
	rec, _ := get(t, h, visitor)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?return=%2Fanalytics" {
		t.Errorf("visitor: got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	campus := testutil.WithUser(httptest.NewRequest("GET", "/analytics", nil), testutil.CampusUser())
	campus.Header.Set("Accept", "text/html")
	rec, _ = get(t, h, campus)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/unauthorized" {
		t.Errorf("campus: got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	if len(api.periods) != 0 {
		t.Errorf("backend called for rejected requests: %v", api.periods)
	}
}

func TestServeAnalytics_NilFactory(t *testing.T) {
	h := employer.NewHandler(nil, "month", zap.NewNop())
	rec := httptest.NewRecorder()
	h.ServeAnalytics(rec, testutil.WithUser(httptest.NewRequest("GET", "/analytics", nil), testutil.EmployerUser()))

	var body pageBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Outcome.Message != "Could not load data from API: Unknown error. Please try again later." {
		t.Errorf("message: got %q", body.Outcome.Message)
	}
}

func TestCards_Nil(t *testing.T) {
	if got := employer.Cards(nil); got == nil || len(got) != 0 {
		t.Errorf("Cards(nil): got %v, want empty", got)
	}
}
