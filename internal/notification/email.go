package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/sharath018/event-resource-backend/utils"
)

// EmailSender implements Channel over SMTP.
type EmailSender struct {
	settings utils.SMTPSettings
}

func NewEmailSender(settings utils.SMTPSettings) *EmailSender {
	return &EmailSender{settings: settings}
}

func (e *EmailSender) Send(to []string, subject, body string) error {
	return utils.SendHTMLMail(e.settings, to, subject, body)
}

// ===========================
// 📧 Roster email templates
// ===========================

var emailSubjects = map[TemplateKind]string{
	TemplateAdded:   "You have been added to %s",
	TemplateEdited:  "%s has been updated",
	TemplateRemoved: "You have been removed from %s",
}

var emailTemplates = template.Must(template.New("email").Funcs(template.FuncMap{
	"when": formatWindow,
}).Parse(`
{{define "added"}}<p>Hello {{.RecipientName}},</p>
<p>You have been added to <strong>{{.EventName}}</strong>{{if .Role}} as <em>{{.Role}}</em>{{end}}.</p>
{{template "details" .}}{{end}}
{{define "edited"}}<p>Hello {{.RecipientName}},</p>
<p>The details of <strong>{{.EventName}}</strong> have changed.</p>
{{template "details" .}}{{end}}
{{define "removed"}}<p>Hello {{.RecipientName}},</p>
<p>You are no longer on the roster of <strong>{{.EventName}}</strong>.</p>{{end}}
{{define "details"}}<ul>
<li>When: {{when .Date .EndDate}}</li>
{{if .Location}}<li>Where: {{.Location}}</li>{{end}}
</ul>{{end}}
`))

// RenderEmail returns the subject and HTML body for e.
func RenderEmail(e Email) (string, string, error) {
	subjectFmt, ok := emailSubjects[e.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", e.Template)
	}
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, string(e.Template), e.Context); err != nil {
		return "", "", fmt.Errorf("failed to render email template: %w", err)
	}
	return fmt.Sprintf(subjectFmt, e.Context.EventName), body.String(), nil
}

func formatWindow(start time.Time, end *time.Time) string {
	const layout = "Mon 02 Jan 2006 15:04"
	if end == nil {
		return start.Format(layout)
	}
	return start.Format(layout) + " to " + end.Format(layout)
}
