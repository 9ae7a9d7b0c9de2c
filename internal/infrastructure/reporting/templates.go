package reporting

import (
	"embed"
)

//go:embed templates/*.html
var templateFS embed.FS

// RunReportTemplateName identifies the reconciliation run report template
const RunReportTemplateName = "reconciliation_run_a4"

// RunReportTemplate returns the embedded reconciliation run report template
func RunReportTemplate() (string, error) {
	content, err := templateFS.ReadFile("templates/reconciliation_run_a4.html")
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "embedded report template missing", err)
	}
	return string(content), nil
}

// RunReportFooterHTML is the page footer Chrome stamps on every page of
// the run report. Chrome substitutes the pageNumber/totalPages spans.
const RunReportFooterHTML = `<div style="font-size:8px; width:100%; text-align:center; color:#7b8794;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
