// Package report renders diagnostic reports as HTML email bodies and
// plain text.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/analyzer"
)

// PortalConfig identifies the factory for deep links into the Azure
// monitoring UI. All fields optional; without them no link is rendered.
type PortalConfig struct {
	SubscriptionID string
	ResourceGroup  string
	FactoryName    string
}

// Builder renders reports.
type Builder struct {
	portal PortalConfig
	tmpl   *template.Template
	logger *zap.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(portal PortalConfig, logger *zap.Logger) (*Builder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"severityColor": severityColor,
		"formatTime":    formatTime,
	}).Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}

	return &Builder{portal: portal, tmpl: tmpl, logger: logger}, nil
}

// Subject builds the email subject line for a report.
func (b *Builder) Subject(r *analyzer.DiagnosticReport) string {
	severity := strings.ToUpper(r.Severity)
	if severity == "" {
		severity = "UNKNOWN"
	}
	return fmt.Sprintf("[%s] ADF Pipeline Failed: %s", severity, r.PipelineName)
}

// PortalURL returns the Azure monitoring deep link for the run, or ""
// when the factory is not configured.
func (b *Builder) PortalURL(runID string) string {
	if b.portal.SubscriptionID == "" || b.portal.ResourceGroup == "" || b.portal.FactoryName == "" {
		return ""
	}
	factory := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.DataFactory/factories/%s",
		b.portal.SubscriptionID, b.portal.ResourceGroup, b.portal.FactoryName)
	return fmt.Sprintf("https://adf.azure.com/en/monitoring/pipelineruns/%s?factory=%s", runID, factory)
}

// templateData is what the HTML template sees.
type templateData struct {
	Report            *analyzer.DiagnosticReport
	PortalURL         string
	Duration          string
	TimeAgo           string
	ConfidencePercent int
}

// HTML renders the report as a self-contained HTML email body.
func (b *Builder) HTML(r *analyzer.DiagnosticReport) (string, error) {
	data := templateData{
		Report:            r,
		PortalURL:         b.PortalURL(r.RunID),
		Duration:          formatDuration(r.DurationSeconds),
		TimeAgo:           timeAgo(r.RunEnd),
		ConfidencePercent: int(r.ConfidenceScore*100 + 0.5),
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

// Text renders the report as plain text, the multipart fallback for
// mail clients that do not display HTML.
func (b *Builder) Text(r *analyzer.DiagnosticReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", b.Subject(r))
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&sb, "Pipeline:  %s\n", r.PipelineName)
	fmt.Fprintf(&sb, "Run ID:    %s\n", r.RunID)
	if r.FailingActivity != "" {
		fmt.Fprintf(&sb, "Activity:  %s (%s)\n", r.FailingActivity, r.ActivityType)
	}
	fmt.Fprintf(&sb, "Category:  %s\n", r.Category)
	fmt.Fprintf(&sb, "Severity:  %s\n", r.Severity)
	if d := formatDuration(r.DurationSeconds); d != "" {
		fmt.Fprintf(&sb, "Duration:  %s\n", d)
	}
	if r.EstimatedFixTime != "" {
		fmt.Fprintf(&sb, "Est. fix:  %s\n", r.EstimatedFixTime)
	}
	fmt.Fprintf(&sb, "Confidence: %.0f%% (%s)\n", r.ConfidenceScore*100, r.ConfidenceLevel)

	fmt.Fprintf(&sb, "\nWHAT HAPPENED\n%s\n", r.PlainEnglishError)
	fmt.Fprintf(&sb, "\nROOT CAUSE\n%s\n", r.RootCause)

	if len(r.Solutions) > 0 {
		sb.WriteString("\nSOLUTIONS\n")
		for i, sol := range r.Solutions {
			fmt.Fprintf(&sb, "%d. %s", i+1, sol.Title)
			if sol.Likelihood != "" {
				fmt.Fprintf(&sb, " (likelihood: %s)", sol.Likelihood)
			}
			sb.WriteString("\n")
			for _, step := range sol.Steps {
				fmt.Fprintf(&sb, "   - %s\n", step)
			}
		}
	}

	if len(r.Runbook) > 0 {
		sb.WriteString("\nRUNBOOK\n")
		for i, step := range r.Runbook {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	}

	if len(r.PreventiveMeasures) > 0 {
		sb.WriteString("\nPREVENTION\n")
		for _, p := range r.PreventiveMeasures {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}

	if len(r.DocumentationLinks) > 0 {
		sb.WriteString("\nDOCUMENTATION\n")
		for _, link := range r.DocumentationLinks {
			fmt.Fprintf(&sb, "- %s\n", link)
		}
	}

	if url := b.PortalURL(r.RunID); url != "" {
		fmt.Fprintf(&sb, "\nView in Azure portal:\n%s\n", url)
	}

	fmt.Fprintf(&sb, "\nRaw error:\n%s\n", r.RawErrorMessage)

	return sb.String()
}

// formatDuration renders seconds as a compact human string.
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// timeAgo renders how long ago t was, or "" for nil.
func timeAgo(t *time.Time) string {
	if t == nil {
		return ""
	}
	d := time.Since(*t).Round(time.Minute)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func severityColor(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "#b91c1c"
	case "high":
		return "#ea580c"
	case "medium":
		return "#ca8a04"
	default:
		return "#2563eb"
	}
}
