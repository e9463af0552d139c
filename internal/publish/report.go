package publish

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	reportRepositoryHeaderConstant = "REPOSITORY"
	reportDirectoryHeaderConstant  = "DIRECTORY"
	reportStatusHeaderConstant     = "STATUS"
	reportErrorHeaderConstant      = "ERROR"
)

// RenderReport writes one row per repository so partially published merges can be finished by hand.
// Declined publishes render nothing.
func RenderReport(writer io.Writer, result Result) {
	if writer == nil || len(result.Outcomes) == 0 {
		return
	}

	reportTable := table.NewWriter()
	reportTable.SetOutputMirror(writer)
	reportTable.AppendHeader(table.Row{reportRepositoryHeaderConstant, reportDirectoryHeaderConstant, reportStatusHeaderConstant, reportErrorHeaderConstant})
	for _, outcome := range result.Outcomes {
		failureMessage := ""
		if outcome.Failure != nil {
			failureMessage = outcome.Failure.Error()
		}
		reportTable.AppendRow(table.Row{string(outcome.Repository), outcome.Directory, string(outcome.Status), failureMessage})
	}
	reportTable.Render()
}
