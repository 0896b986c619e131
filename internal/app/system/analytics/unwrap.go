package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// dataContainer is the outer "data" object of the envelope.
type dataContainer struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Unwrap checks the envelope status, unwraps data.data exactly once and
// validates the payload. All failures are *MalformedError.
func Unwrap(env *Envelope) (*Payload, error) {
	if env == nil {
		return nil, &MalformedError{Err: errors.New("empty envelope")}
	}

	var outer dataContainer
	outerOK := !isNull(env.Data) && json.Unmarshal(env.Data, &outer) == nil

	serverMsg := env.Message
	if serverMsg == "" && outerOK {
		serverMsg = outer.Message
	}

	if env.Status != StatusSuccess {
		return nil, &MalformedError{Message: serverMsg, Err: fmt.Errorf("status %q", env.Status)}
	}
	if !outerOK || isNull(outer.Data) {
		return nil, &MalformedError{Message: serverMsg, Err: errors.New("missing data container")}
	}

	var p Payload
	if err := json.Unmarshal(outer.Data, &p); err != nil {
		return nil, &MalformedError{Err: fmt.Errorf("decode payload: %w", err)}
	}
	if err := p.Validate(); err != nil {
		return nil, &MalformedError{Err: err}
	}
	return &p, nil
}

// Validate rejects negative counters anywhere in the payload.
func (p *Payload) Validate() error {
	var errs []error
	check := func(field string, v int64) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s: must be non-negative, got %d", field, v))
		}
	}
	checkPtr := func(field string, v *int64) {
		if v != nil {
			check(field, *v)
		}
	}

	if s := p.Summary; s != nil {
		checkPtr("summary.total_jobs", s.TotalJobs)
		checkPtr("summary.active_jobs", s.ActiveJobs)
		checkPtr("summary.total_applications", s.TotalApplications)
		checkPtr("summary.total_job_views", s.TotalJobViews)
		for _, sc := range s.ApplicationStatusCounts {
			check(fmt.Sprintf("summary.application_status_counts[%q]", sc.Status), sc.Count)
		}
	}
	if ts := p.TimeSeries; ts != nil {
		for i, pt := range ts.JobViewsOverTime {
			check(fmt.Sprintf("time_series.job_views_over_time[%d].metric_value", i), pt.MetricValue)
		}
		for i, pt := range ts.ApplicationsOverTime {
			check(fmt.Sprintf("time_series.applications_over_time[%d].metric_value", i), pt.MetricValue)
		}
	}
	for i, j := range p.PopularJobs {
		check(fmt.Sprintf("popular_jobs[%d].view_count", i), j.ViewCount)
		check(fmt.Sprintf("popular_jobs[%d].num_applications", i), j.NumApplications)
	}
	return errors.Join(errs...)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
