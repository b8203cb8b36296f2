package report

// htmlTemplate is the email body. Inline styles only; mail clients
// strip <style> blocks.
const htmlTemplate = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f3f4f6;font-family:Segoe UI,Arial,sans-serif;color:#111827;">
<div style="max-width:680px;margin:0 auto;padding:24px;">

  <div style="background:{{severityColor .Report.Severity}};color:#ffffff;padding:16px 24px;border-radius:8px 8px 0 0;">
    <h2 style="margin:0;font-size:18px;">Pipeline Failed: {{.Report.PipelineName}}</h2>
    <p style="margin:4px 0 0;font-size:13px;opacity:0.9;">
      Severity: {{.Report.Severity}} &middot; Category: {{.Report.Category}}
      {{if .TimeAgo}} &middot; Failed {{.TimeAgo}}{{end}}
    </p>
  </div>

  <div style="background:#ffffff;padding:24px;border-radius:0 0 8px 8px;">

    <table style="width:100%;font-size:13px;border-collapse:collapse;margin-bottom:16px;">
      <tr><td style="padding:4px 8px;color:#6b7280;">Run ID</td><td style="padding:4px 8px;">{{.Report.RunID}}</td></tr>
      {{if .Report.FailingActivity}}
      <tr><td style="padding:4px 8px;color:#6b7280;">Failing activity</td><td style="padding:4px 8px;">{{.Report.FailingActivity}} ({{.Report.ActivityType}})</td></tr>
      {{end}}
      {{if .Report.ErrorCode}}
      <tr><td style="padding:4px 8px;color:#6b7280;">Error code</td><td style="padding:4px 8px;">{{.Report.ErrorCode}}</td></tr>
      {{end}}
      {{if .Duration}}
      <tr><td style="padding:4px 8px;color:#6b7280;">Duration</td><td style="padding:4px 8px;">{{.Duration}}</td></tr>
      {{end}}
      {{if .Report.RunStart}}
      <tr><td style="padding:4px 8px;color:#6b7280;">Started</td><td style="padding:4px 8px;">{{formatTime .Report.RunStart}}</td></tr>
      {{end}}
      {{if .Report.EstimatedFixTime}}
      <tr><td style="padding:4px 8px;color:#6b7280;">Estimated fix time</td><td style="padding:4px 8px;">{{.Report.EstimatedFixTime}}</td></tr>
      {{end}}
      <tr><td style="padding:4px 8px;color:#6b7280;">Confidence</td><td style="padding:4px 8px;">{{.ConfidencePercent}}% ({{.Report.ConfidenceLevel}})</td></tr>
    </table>

    <h3 style="font-size:15px;margin:16px 0 8px;">What happened</h3>
    <p style="font-size:14px;line-height:1.5;margin:0;">{{.Report.PlainEnglishError}}</p>

    <h3 style="font-size:15px;margin:16px 0 8px;">Root cause</h3>
    <p style="font-size:14px;line-height:1.5;margin:0;">{{.Report.RootCause}}</p>

    {{if .Report.Solutions}}
    <h3 style="font-size:15px;margin:16px 0 8px;">Solutions</h3>
    {{range $i, $sol := .Report.Solutions}}
    <div style="border:1px solid #e5e7eb;border-radius:6px;padding:12px;margin-bottom:8px;">
      <strong style="font-size:14px;">{{$sol.Title}}</strong>
      {{if $sol.Likelihood}}<span style="font-size:12px;color:#6b7280;"> &middot; likelihood {{$sol.Likelihood}}</span>{{end}}
      {{if $sol.EstimatedTime}}<span style="font-size:12px;color:#6b7280;"> &middot; {{$sol.EstimatedTime}}</span>{{end}}
      {{if $sol.Steps}}
      <ol style="font-size:13px;margin:8px 0 0;padding-left:20px;">
        {{range $sol.Steps}}<li style="margin-bottom:2px;">{{.}}</li>{{end}}
      </ol>
      {{end}}
    </div>
    {{end}}
    {{end}}

    {{if .Report.Runbook}}
    <h3 style="font-size:15px;margin:16px 0 8px;">Runbook</h3>
    <ol style="font-size:13px;margin:0;padding-left:20px;">
      {{range .Report.Runbook}}<li style="margin-bottom:2px;">{{.}}</li>{{end}}
    </ol>
    {{end}}

    {{if .Report.PreventiveMeasures}}
    <h3 style="font-size:15px;margin:16px 0 8px;">Prevention</h3>
    <ul style="font-size:13px;margin:0;padding-left:20px;">
      {{range .Report.PreventiveMeasures}}<li style="margin-bottom:2px;">{{.}}</li>{{end}}
    </ul>
    {{end}}

    {{if .Report.SimilarErrors}}
    <h3 style="font-size:15px;margin:16px 0 8px;">Similar known errors</h3>
    <ul style="font-size:13px;margin:0;padding-left:20px;">
      {{range .Report.SimilarErrors}}<li>{{.Title}} ({{.Category}})</li>{{end}}
    </ul>
    {{end}}

    {{if .Report.DocumentationLinks}}
    <h3 style="font-size:15px;margin:16px 0 8px;">Documentation</h3>
    <ul style="font-size:13px;margin:0;padding-left:20px;">
      {{range .Report.DocumentationLinks}}<li><a href="{{.}}" style="color:#2563eb;">{{.}}</a></li>{{end}}
    </ul>
    {{end}}

    {{if .PortalURL}}
    <p style="margin:20px 0 0;">
      <a href="{{.PortalURL}}" style="display:inline-block;background:#2563eb;color:#ffffff;font-size:13px;padding:10px 16px;border-radius:6px;text-decoration:none;">View run in Azure portal</a>
    </p>
    {{end}}

    <h3 style="font-size:15px;margin:20px 0 8px;">Raw error</h3>
    <pre style="background:#f9fafb;border:1px solid #e5e7eb;border-radius:6px;padding:12px;font-size:12px;white-space:pre-wrap;word-break:break-word;margin:0;">{{.Report.RawErrorMessage}}</pre>

  </div>

  <p style="font-size:11px;color:#9ca3af;text-align:center;margin-top:16px;">
    Generated by pipetriage &middot; report {{.Report.ReportID}}
  </p>

</div>
</body>
</html>`
