package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vk/exportmap/internal/job"
)

// reportFailure logs err and writes a diagnostic block to the output writer.
func (a *App) reportFailure(err error, report *job.Report) {
	a.logger.Error("❌ Exception occurred: "+err.Error(), "stage", failedStage(err, report))
	writeDiagnostic(a.outW, err, report)
}

func failedStage(err error, report *job.Report) string {
	var stageErr *job.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	var panicErr *job.PanicError
	if errors.As(err, &panicErr) && panicErr.Stage != "" {
		return panicErr.Stage
	}
	if report != nil {
		return report.Stage
	}
	return ""
}

func writeDiagnostic(w io.Writer, err error, report *job.Report) {
	var b strings.Builder
	b.WriteString("--- export failure ---\n")
	fmt.Fprintf(&b, "error: %v\n", err)
	if stage := failedStage(err, report); stage != "" {
		fmt.Fprintf(&b, "stage: %s\n", stage)
	}
	b.WriteString("chain:\n")
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "  %T: %v\n", e, e)
	}
	var panicErr *job.PanicError
	if errors.As(err, &panicErr) && len(panicErr.Stack) > 0 {
		b.WriteString("stack:\n")
		b.Write(panicErr.Stack)
		if !strings.HasSuffix(string(panicErr.Stack), "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("--- end ---\n")
	_, _ = io.WriteString(w, b.String())
}
