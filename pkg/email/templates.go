package email

import (
	"fmt"
	"html"
	"time"
)

// CrisisAlertData fills the message a psychologist gets when a patient raises
// a crisis.
type CrisisAlertData struct {
	PsychologistName  string
	PsychologistEmail string
	PatientName       string
	CrisisID          string
	RaisedAt          time.Time
	AppName           string
}

// BuildCrisisAlertEmail renders the crisis alert as text and HTML.
func BuildCrisisAlertEmail(data CrisisAlertData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "MindCare"
	}
	name := data.PsychologistName
	if name == "" {
		name = "there"
	}
	when := data.RaisedAt.UTC().Format("2006-01-02 15:04 MST")

	subject := fmt.Sprintf("[%s] Crisis alert from %s", appName, data.PatientName)

	textBody := fmt.Sprintf(`Hi %s,

%s has raised a crisis alert at %s.

Open %s to follow up. Crisis reference: %s

The %s Team`,
		name, data.PatientName, when, appName, data.CrisisID, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #dc2626;">Crisis alert</h2>
    <p>Hi %s,</p>
    <p><strong>%s</strong> has raised a crisis alert at %s.</p>
    <p>Open %s to follow up.</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace;">%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">The %s Team</p>
</body>
</html>`,
		html.EscapeString(name), html.EscapeString(data.PatientName), when,
		html.EscapeString(appName), html.EscapeString(data.CrisisID), html.EscapeString(appName))

	return Message{
		To:       []string{data.PsychologistEmail},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
		Headers:  map[string]string{"X-Priority": "1"},
	}
}
