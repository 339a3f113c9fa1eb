package mailer

import (
	"fmt"

	mailtpl "github.com/oksasatya/six-cities-api/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or a prerendered Subject/Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// NewWelcomeJob builds the job queued after a successful registration.
func NewWelcomeJob(appName, name, email, accountType string, opts ...mailtpl.Option) EmailJob {
	return EmailJob{
		To:       email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(appName, name, email, accountType, opts...),
	}
}

// Render resolves the subject and bodies of the job.
// Prerendered fields win over the template output.
func (j *EmailJob) Render() (subject, text, html string, err error) {
	subject, text, html = j.Subject, j.Text, j.HTML
	if j.Template == "" {
		if subject == "" || (text == "" && html == "") {
			return "", "", "", fmt.Errorf("email job for %q has neither template nor body", j.To)
		}
		return subject, text, html, nil
	}
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	if v, ok := j.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		j.Data["Email"] = j.To
	}
	s, t, h, err := mailtpl.Render(j.Template, j.Data)
	if err != nil {
		return "", "", "", err
	}
	if subject == "" {
		subject = s
	}
	if text == "" {
		text = t
	}
	if html == "" {
		html = h
	}
	return subject, text, html, nil
}
