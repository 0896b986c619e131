package cmd

import (
	"errors"
	"strconv"

	"github.com/dalemusser/talenthub/internal/app/system/analytics"
	"github.com/pterm/pterm"
)

// topJobs matches the dashboard's popular jobs list.
const topJobs = 5

func render(out analytics.Outcome) error {
	if out.Phase == analytics.Failed {
		pterm.Error.Println("Error loading analytics data")
		return errors.New(out.Message)
	}

	pterm.DefaultSection.Println("Analytics Dashboard")
	pterm.Info.Println("Overview of your recruitment performance.")

	if !out.SummaryPresent {
		pterm.Warning.Println("No summary analytics data is currently available. Please check back later.")
	} else {
		if err := pterm.DefaultTable.WithHasHeader().WithData(summaryTable(out.View.SummaryStats)).Render(); err != nil {
			return err
		}
	}

	if len(out.View.ApplicationStatusDistribution) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Application Status")
		if err := pterm.DefaultTable.WithHasHeader().WithData(distributionTable(out.View.ApplicationStatusDistribution)).Render(); err != nil {
			return err
		}
	}

	if len(out.View.PopularJobsData) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Popular Jobs")
		if err := pterm.DefaultTable.WithHasHeader().WithData(popularTable(out.View.PopularJobsData, topJobs)).Render(); err != nil {
			return err
		}
	}
	return nil
}

func summaryTable(s *analytics.Summary) pterm.TableData {
	data := pterm.TableData{{"METRIC", "VALUE"}}
	if s == nil {
		return data
	}
	return append(data,
		[]string{"Total Jobs", strconv.FormatInt(s.TotalJobs, 10)},
		[]string{"Active Jobs", strconv.FormatInt(s.ActiveJobs, 10)},
		[]string{"Total Applications", strconv.FormatInt(s.TotalApplications, 10)},
		[]string{"Total Job Views", strconv.FormatInt(s.TotalJobViews, 10)},
	)
}

func distributionTable(slices []analytics.Slice) pterm.TableData {
	data := pterm.TableData{{"STATUS", "COUNT"}}
	for _, s := range slices {
		data = append(data, []string{s.Label, strconv.FormatInt(s.Value, 10)})
	}
	return data
}

// popularTable keeps the producer's order and shows at most limit rows.
func popularTable(jobs []analytics.PopularJob, limit int) pterm.TableData {
	data := pterm.TableData{{"JOB", "VIEWS", "APPLICATIONS"}}
	for i, j := range jobs {
		if i == limit {
			break
		}
		data = append(data, []string{j.Title, strconv.FormatInt(j.ViewCount, 10), strconv.FormatInt(j.NumApplications, 10)})
	}
	return data
}
