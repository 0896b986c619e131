// Package analytics turns the employer analytics envelope returned by the
// backend into the chart-ready ViewModel used by dashboards.
//
// The pipeline is: Envelope (wire) -> Unwrap (status check, single data.data
// unwrap, schema validation) -> Normalize (default filling, status
// distribution) -> ViewModel. Loader wraps the pipeline around one fetch and
// suppresses superseded results.
package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the backend response wrapper:
//
//	{ "status": "success", "message": "...", "data": { "data": {...payload...} } }
//
// Data is kept raw so an error envelope with an odd data shape still yields
// its message.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// StatusSuccess is the only envelope status treated as success.
const StatusSuccess = "success"

// Payload is the inner analytics container. Every part is optional.
type Payload struct {
	Summary     *RawSummary    `json:"summary"`
	TimeSeries  *RawTimeSeries `json:"time_series"`
	PopularJobs []PopularJob   `json:"popular_jobs"`
}

// RawSummary holds the counters as sent; nil means the field was absent.
type RawSummary struct {
	TotalJobs               *int64       `json:"total_jobs"`
	ActiveJobs              *int64       `json:"active_jobs"`
	TotalApplications       *int64       `json:"total_applications"`
	TotalJobViews           *int64       `json:"total_job_views"`
	ApplicationStatusCounts StatusCounts `json:"application_status_counts"`
}

// RawTimeSeries holds the two producer-ordered series.
type RawTimeSeries struct {
	JobViewsOverTime     []Point `json:"job_views_over_time"`
	ApplicationsOverTime []Point `json:"applications_over_time"`
}

// Point is one sample of a time series.
type Point struct {
	Date        string `json:"date"`
	MetricValue int64  `json:"metric_value"`
}

// PopularJob is one entry of the producer-ranked popular jobs list.
type PopularJob struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	ViewCount       int64  `json:"view_count"`
	NumApplications int64  `json:"num_applications"`
}

// StatusCount is one application status and its count.
type StatusCount struct {
	Status string
	Count  int64
}

// StatusCounts is a status -> count mapping that keeps the key order of the
// JSON object it was decoded from.
type StatusCounts []StatusCount

// UnmarshalJSON decodes a JSON object preserving key order. A repeated key
// keeps its first position and takes the last value. null is a no-op.
func (c *StatusCounts) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("application_status_counts: expected object, got %v", tok)
	}

	out := make(StatusCounts, 0)
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var n int64
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("application_status_counts[%q]: %w", key, err)
		}
		if i, dup := index[key]; dup {
			out[i].Count = n
			continue
		}
		index[key] = len(out)
		out = append(out, StatusCount{Status: key, Count: n})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// MarshalJSON writes the counts as a JSON object in their stored order.
func (c StatusCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sc.Status)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", sc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary is the normalized summary: absent counters are zero and the
// status counts are never nil.
type Summary struct {
	TotalJobs               int64        `json:"total_jobs"`
	ActiveJobs              int64        `json:"active_jobs"`
	TotalApplications       int64        `json:"total_applications"`
	TotalJobViews           int64        `json:"total_job_views"`
	ApplicationStatusCounts StatusCounts `json:"application_status_counts"`
}

// Slice is one entry of a categorical distribution.
type Slice struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// ViewModel is the chart-ready shape. Every sequence is non-nil; only
// SummaryStats may be nil (payload had no summary).
type ViewModel struct {
	SummaryStats                  *Summary     `json:"summary_stats"`
	JobViewsOverTime              []Point      `json:"job_views_over_time"`
	ApplicationsOverTime          []Point      `json:"applications_over_time"`
	ApplicationStatusDistribution []Slice      `json:"application_status_distribution"`
	PopularJobsData               []PopularJob `json:"popular_jobs_data"`
}

// EmptyViewModel returns the all-empty default.
func EmptyViewModel() ViewModel {
	return ViewModel{
		JobViewsOverTime:              []Point{},
		ApplicationsOverTime:          []Point{},
		ApplicationStatusDistribution: []Slice{},
		PopularJobsData:               []PopularJob{},
	}
}
