package mailer

import (
	"bytes"
	"html/template"
	"log/slog"
	"time"
)

// Mail bodies are rendered once per send from package-level templates.
// html/template escapes customer-supplied text on the way in.

var contactOperatorTmpl = template.Must(template.New("contact_operator").Parse(`
<h2>New contact inquiry</h2>
<table border="1" cellpadding="8" style="border-collapse:collapse;">
<tr><th>Type</th><td>{{.UserType}}</td></tr>
<tr><th>Name</th><td>{{.Name}}</td></tr>
<tr><th>Email</th><td>{{.Email}}</td></tr>
<tr><th>Company</th><td>{{or .Company "-"}}</td></tr>
<tr><th>Plan</th><td>{{or .Plan "-"}}</td></tr>
<tr><th>Servers</th><td>{{or .Servers "-"}}</td></tr>
<tr><th>Timeline</th><td>{{or .Timeline "-"}}</td></tr>
<tr><th>Message</th><td>{{.Message}}</td></tr>
</table>
<p style="color:#666;font-size:12px;">NOVE OS API - {{.SentAt}}</p>
`))

var contactReplyTmpl = template.Must(template.New("contact_reply").Parse(`
<p>Dear {{.Name}},</p>
<p>Thank you for contacting the Rocky Linux NOVE OS team.</p>
<p>We have received your inquiry and will reply within <strong>one business day</strong>.</p>
<hr>
<p><strong>Your message:</strong><br>{{.Message}}</p>
<hr>
<p style="color:#666;font-size:12px;">
NOVE OS Systems<br>
<a href="{{.SiteURL}}">{{.SiteURL}}</a>
</p>
`))

var licenseIssuedTmpl = template.Must(template.New("license_issued").Parse(`
<h2>Your NOVE OS license key</h2>
<p>Dear {{.CustomerName}},</p>
<p>Thank you for purchasing NOVE OS.</p>
<table border="1" cellpadding="10" style="border-collapse:collapse; min-width:400px;">
<tr style="background:#0071e3;color:#fff;"><th colspan="2">License details</th></tr>
<tr><th>License key</th><td><strong style="font-size:18px;font-family:monospace;">{{.Key}}</strong></td></tr>
<tr><th>Plan</th><td>{{.PlanName}} ({{.Price}})</td></tr>
<tr><th>Server limit</th><td>{{.ServerLimitLabel}}</td></tr>
<tr><th>Valid</th><td>{{.ValidFrom}} to {{.ValidUntil}}</td></tr>
</table>
<br>
<p>Keep your license key in a safe place.<br>
If you have any questions, just reply to this email.</p>
<p style="color:#666;font-size:12px;">
NOVE OS Systems | <a href="{{.SiteURL}}">{{.SiteURL}}</a>
</p>
`))

var trialWelcomeTmpl = template.Must(template.New("trial_welcome").Parse(`
<h2>Your 14-day NOVE OS trial</h2>
<p>Dear {{.CustomerName}},</p>
<p>Your trial license is ready. It is valid until <strong>{{.ValidUntil}}</strong> on a single server.</p>
<p>License key:</p>
<p><strong style="font-size:18px;font-family:monospace;">{{.Key}}</strong></p>
<p>Install with:</p>
<pre style="background:#f4f4f4;padding:12px;">{{.InstallCommand}}</pre>
<p style="color:#666;font-size:12px;">
NOVE OS Systems | <a href="{{.SiteURL}}">{{.SiteURL}}</a>
</p>
`))

var issuedOperatorTmpl = template.Must(template.New("issued_operator").Parse(`
<p>Key: <strong style="font-family:monospace;">{{.Key}}</strong><br>
Plan: {{.PlanName}}<br>
Email: {{.CustomerEmail}}</p>
`))

type ContactMailData struct {
	UserType string
	Name     string
	Email    string
	Company  string
	Plan     string
	Servers  string
	Timeline string
	Message  string
	SentAt   string
	SiteURL  string
}

type LicenseMailData struct {
	CustomerName     string
	CustomerEmail    string
	Key              string
	PlanName         string
	Price            string
	ServerLimitLabel string
	ValidFrom        string
	ValidUntil       string
	InstallCommand   string
	SiteURL          string
}

func render(t *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		slog.Error("mail template render failed", "template", t.Name(), "error", err)
		return ""
	}
	return buf.String()
}

// SendContactNotifications fires the operator notice and the customer
// auto-reply for a contact-form submission.
func (m *Mailer) SendContactNotifications(data ContactMailData) {
	data.SentAt = time.Now().UTC().Format("2006-01-02 15:04")
	m.NotifyOperator("[Inquiry] "+data.UserType+" / "+data.Name, render(contactOperatorTmpl, data))
	m.Dispatch(data.Email, "We received your inquiry - NOVE OS", render(contactReplyTmpl, data))
}

// SendLicenseNotifications fires the license-delivery mail to the customer
// and an issuance receipt to the operator.
func (m *Mailer) SendLicenseNotifications(data LicenseMailData) {
	m.Dispatch(data.CustomerEmail, "Your NOVE OS license key - "+data.PlanName, render(licenseIssuedTmpl, data))
	m.NotifyOperator("[Issued] "+data.CustomerName+" / "+data.PlanName, render(issuedOperatorTmpl, data))
}

// SendTrialNotifications fires the trial welcome mail and the operator receipt.
func (m *Mailer) SendTrialNotifications(data LicenseMailData) {
	m.Dispatch(data.CustomerEmail, "Your 14-day NOVE OS trial license", render(trialWelcomeTmpl, data))
	m.NotifyOperator("[Trial] "+data.CustomerName+" / "+data.CustomerEmail, render(issuedOperatorTmpl, data))
}
