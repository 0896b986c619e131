package analytics_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dalemusser/talenthub/internal/app/system/analytics"
)

func envelope(t *testing.T, raw string) *analytics.Envelope {
	t.Helper()
	var env analytics.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("bad test envelope: %v", err)
	}
	return &env
}

func TestFormatStatusLabel(t *testing.T) {
	tests := map[string]string{
		"pending":   "Pending",
		"rejected":  "Rejected",
		"Accepted":  "Accepted",
		"in review": "In review",
		"iNTERVIEW": "INTERVIEW",
		"":          "",
		"x":         "X",
		"éclair":    "Éclair",
		"1st_round": "1st_round",
	}
	for in, want := range tests {
		if got := analytics.FormatStatusLabel(in); got != want {
			t.Errorf("FormatStatusLabel(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestStatusCounts_PreservesKeyOrder(t *testing.T) {
	var c analytics.StatusCounts
	if err := json.Unmarshal([]byte(`{"rejected":1,"pending":3,"accepted":0,"pending":4}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := analytics.StatusCounts{
		{Status: "rejected", Count: 1},
		{Status: "pending", Count: 4},
		{Status: "accepted", Count: 0},
	}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("counts: got %v, want %v", c, want)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"rejected":1,"pending":4,"accepted":0}` {
		t.Errorf("Marshal: got %s", out)
	}
}

func TestStatusCounts_RejectsNonObject(t *testing.T) {
	var c analytics.StatusCounts
	if err := json.Unmarshal([]byte(`[1,2]`), &c); err == nil {
		t.Error("expected error for array input")
	}
	if err := json.Unmarshal([]byte(`{"pending":"three"}`), &c); err == nil {
		t.Error("expected error for string count")
	}
}

func TestDerive_StatusDistributionKeepsInputOrder(t *testing.T) {
	env := envelope(t, `{"status":"success","data":{"data":{
		"summary":{"application_status_counts":{"pending":3,"rejected":1}}}}}`)

	out := analytics.Derive(env, nil)
	if out.Phase != analytics.Loaded {
		t.Fatalf("Phase: got %v, want loaded (%s)", out.Phase, out.Message)
	}
	want := []analytics.Slice{{Label: "Pending", Value: 3}, {Label: "Rejected", Value: 1}}
	if !reflect.DeepEqual(out.View.ApplicationStatusDistribution, want) {
		t.Errorf("distribution: got %v, want %v", out.View.ApplicationStatusDistribution, want)
	}
}

func TestDerive_SummaryOnly_DefaultsSeriesAndJobs(t *testing.T) {
	env := envelope(t, `{"status":"success","data":{"data":{
		"summary":{"total_jobs":7,"active_jobs":4,"total_applications":12,"total_job_views":90}}}}`)

	out := analytics.Derive(env, nil)
	if out.Phase != analytics.Loaded || !out.SummaryPresent {
		t.Fatalf("got phase %v summaryPresent %v", out.Phase, out.SummaryPresent)
	}
	vm := out.View
	if vm.JobViewsOverTime == nil || len(vm.JobViewsOverTime) != 0 {
		t.Errorf("JobViewsOverTime: got %#v, want empty", vm.JobViewsOverTime)
	}
	if vm.ApplicationsOverTime == nil || len(vm.ApplicationsOverTime) != 0 {
		t.Errorf("ApplicationsOverTime: got %#v, want empty", vm.ApplicationsOverTime)
	}
	if vm.PopularJobsData == nil || len(vm.PopularJobsData) != 0 {
		t.Errorf("PopularJobsData: got %#v, want empty", vm.PopularJobsData)
	}
	s := vm.SummaryStats
	if s.TotalJobs != 7 || s.ActiveJobs != 4 || s.TotalApplications != 12 || s.TotalJobViews != 90 {
		t.Errorf("SummaryStats: got %+v", *s)
	}
	if s.ApplicationStatusCounts == nil {
		t.Error("ApplicationStatusCounts: got nil, want empty")
	}
}

func TestDerive_EndToEnd(t *testing.T) {
	env := envelope(t, `{"status":"success","message":"Analytics data retrieved successfully","data":{"data":{
		"summary":{"total_jobs":5},
		"time_series":{},
		"popular_jobs":[{"id":1,"title":"X","view_count":10,"num_applications":2}]}}}`)

	out := analytics.Derive(env, nil)

	got, err := json.Marshal(out.View)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"summary_stats":{"total_jobs":5,"active_jobs":0,"total_applications":0,"total_job_views":0,"application_status_counts":{}},` +
		`"job_views_over_time":[],"applications_over_time":[],"application_status_distribution":[],` +
		`"popular_jobs_data":[{"id":1,"title":"X","view_count":10,"num_applications":2}]}`
	if string(got) != want {
		t.Errorf("view:\n got %s\nwant %s", got, want)
	}
}

func TestDerive_TimeSeriesPassThroughInProducerOrder(t *testing.T) {
	env := envelope(t, `{"status":"success","data":{"data":{
		"time_series":{
			"job_views_over_time":[{"date":"03 Jan","metric_value":5},{"date":"01 Jan","metric_value":2}],
			"applications_over_time":[{"date":"01 Jan","metric_value":1}]}}}}`)

	out := analytics.Derive(env, nil)
	if out.SummaryPresent {
		t.Error("SummaryPresent: got true, want false")
	}
	if out.Phase != analytics.Loaded {
		t.Fatalf("Phase: got %v, want loaded", out.Phase)
	}
	want := []analytics.Point{{Date: "03 Jan", MetricValue: 5}, {Date: "01 Jan", MetricValue: 2}}
	if !reflect.DeepEqual(out.View.JobViewsOverTime, want) {
		t.Errorf("JobViewsOverTime: got %v, want %v", out.View.JobViewsOverTime, want)
	}
	if len(out.View.ApplicationsOverTime) != 1 {
		t.Errorf("ApplicationsOverTime: got %v", out.View.ApplicationsOverTime)
	}
	if out.View.SummaryStats != nil {
		t.Errorf("SummaryStats: got %+v, want nil", out.View.SummaryStats)
	}
}

func TestDerive_ErrorEnvelopeUsesServerMessage(t *testing.T) {
	env := envelope(t, `{"status":"error","message":"quota exceeded"}`)

	out := analytics.Derive(env, nil)
	if out.Phase != analytics.Failed {
		t.Fatalf("Phase: got %v, want failed", out.Phase)
	}
	if out.Message != "quota exceeded" {
		t.Errorf("Message: got %q, want %q", out.Message, "quota exceeded")
	}
	if !reflect.DeepEqual(out.View, analytics.EmptyViewModel()) {
		t.Errorf("View: got %+v, want empty", out.View)
	}
}

func TestDerive_MalformedMessages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"error without message", `{"status":"error","data":null}`, analytics.FallbackMessage},
		{"inner message", `{"status":"fail","data":{"message":"backend busy"}}`, "backend busy"},
		{"top message wins", `{"status":"fail","message":"top","data":{"message":"inner"}}`, "top"},
		{"odd data shape keeps message", `{"status":"error","message":"denied","data":[]}`, "denied"},
		{"success without data", `{"status":"success"}`, analytics.FallbackMessage},
		{"success with empty container", `{"status":"success","data":{}}`, analytics.FallbackMessage},
		{"success with null inner", `{"status":"success","message":"ok-ish","data":{"data":null}}`, "ok-ish"},
		{"wrong counter type", `{"status":"success","message":"done","data":{"data":{"summary":{"total_jobs":"five"}}}}`, analytics.FallbackMessage},
		{"negative counter", `{"status":"success","data":{"data":{"popular_jobs":[{"id":1,"title":"X","view_count":-1}]}}}`, analytics.FallbackMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := analytics.Derive(envelope(t, tt.raw), nil)
			if out.Phase != analytics.Failed {
				t.Fatalf("Phase: got %v, want failed", out.Phase)
			}
			if out.Message != tt.want {
				t.Errorf("Message: got %q, want %q", out.Message, tt.want)
			}
		})
	}
}

func TestDerive_NilEnvelopeIsMalformed(t *testing.T) {
	out := analytics.Derive(nil, nil)
	if out.Phase != analytics.Failed || out.Message != analytics.FallbackMessage {
		t.Errorf("got %v %q", out.Phase, out.Message)
	}
}

func TestDerive_TransportFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"described", &analytics.TransportError{Err: errors.New("connection refused")},
			"Could not load data from API: connection refused. Please try again later."},
		{"undescribed", &analytics.TransportError{},
			"Could not load data from API: Unknown error. Please try again later."},
		{"plain error", errors.New("timeout"),
			"Could not load data from API: timeout. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := analytics.Derive(nil, tt.err)
			if out.Phase != analytics.Failed {
				t.Fatalf("Phase: got %v, want failed", out.Phase)
			}
			if out.Message != tt.want {
				t.Errorf("Message: got %q, want %q", out.Message, tt.want)
			}
			if !reflect.DeepEqual(out.View, analytics.EmptyViewModel()) {
				t.Error("View: expected empty default")
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	if !errors.Is(&analytics.TransportError{Err: errors.New("x")}, analytics.ErrTransport) {
		t.Error("TransportError should match ErrTransport")
	}
	if !errors.Is(&analytics.MalformedError{}, analytics.ErrMalformed) {
		t.Error("MalformedError should match ErrMalformed")
	}
	_, err := analytics.Unwrap(&analytics.Envelope{Status: "error"})
	if !errors.Is(err, analytics.ErrMalformed) {
		t.Errorf("Unwrap error: got %v, want ErrMalformed", err)
	}
}

func TestValidate_ReportsEveryNegativeField(t *testing.T) {
	neg := int64(-2)
	p := analytics.Payload{
		Summary: &analytics.RawSummary{
			TotalJobs:               &neg,
			ApplicationStatusCounts: analytics.StatusCounts{{Status: "pending", Count: -1}},
		},
		TimeSeries: &analytics.RawTimeSeries{
			ApplicationsOverTime: []analytics.Point{{Date: "d", MetricValue: -5}},
		},
	}
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"summary.total_jobs", `application_status_counts["pending"]`, "applications_over_time[0]"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestNormalize_NilPayload(t *testing.T) {
	if !reflect.DeepEqual(analytics.Normalize(nil), analytics.EmptyViewModel()) {
		t.Error("Normalize(nil) should be the empty view model")
	}
}

func TestOutcome_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(analytics.FailedOutcome("quota exceeded"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["state"] != "failed" || got["message"] != "quota exceeded" || got["summary_present"] != false {
		t.Errorf("outcome json: got %s", b)
	}
	view, _ := got["view"].(map[string]any)
	if view["summary_stats"] != nil {
		t.Errorf("summary_stats: got %v, want null", view["summary_stats"])
	}
	if seq, ok := view["popular_jobs_data"].([]any); !ok || len(seq) != 0 {
		t.Errorf("popular_jobs_data: got %v, want []", view["popular_jobs_data"])
	}
}
