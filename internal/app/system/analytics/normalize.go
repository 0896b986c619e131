package analytics

import (
	"strings"
	"unicode/utf8"
)

// Normalize derives the ViewModel from a validated payload. It never
// returns nil sequences; a nil payload yields EmptyViewModel.
func Normalize(p *Payload) ViewModel {
	vm := EmptyViewModel()
	if p == nil {
		return vm
	}

	if s := p.Summary; s != nil {
		counts := make(StatusCounts, 0, len(s.ApplicationStatusCounts))
		counts = append(counts, s.ApplicationStatusCounts...)

		vm.SummaryStats = &Summary{
			TotalJobs:               deref(s.TotalJobs),
			ActiveJobs:              deref(s.ActiveJobs),
			TotalApplications:       deref(s.TotalApplications),
			TotalJobViews:           deref(s.TotalJobViews),
			ApplicationStatusCounts: counts,
		}
		vm.ApplicationStatusDistribution = Distribution(counts)
	}

	if ts := p.TimeSeries; ts != nil {
		if ts.JobViewsOverTime != nil {
			vm.JobViewsOverTime = append(vm.JobViewsOverTime, ts.JobViewsOverTime...)
		}
		if ts.ApplicationsOverTime != nil {
			vm.ApplicationsOverTime = append(vm.ApplicationsOverTime, ts.ApplicationsOverTime...)
		}
	}

	if p.PopularJobs != nil {
		vm.PopularJobsData = append(vm.PopularJobsData, p.PopularJobs...)
	}
	return vm
}

// Distribution maps status counts to labelled slices in source order.
func Distribution(counts StatusCounts) []Slice {
	out := make([]Slice, 0, len(counts))
	for _, sc := range counts {
		out = append(out, Slice{Label: FormatStatusLabel(sc.Status), Value: sc.Count})
	}
	return out
}

// FormatStatusLabel uppercases the first character and leaves the rest
// untouched: "pending" -> "Pending", "in review" -> "In review".
func FormatStatusLabel(status string) string {
	r, size := utf8.DecodeRuneInString(status)
	if size == 0 || r == utf8.RuneError {
		return status
	}
	return strings.ToUpper(string(r)) + status[size:]
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
