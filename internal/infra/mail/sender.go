package mail

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

var alertTemplate = template.Must(template.New("alert").Parse(
	`A {{.Provider}} {{.Operation}} failed for account {{.AccountID}}.

Code:    {{.Code}}
Reason:  {{.Message}}
When:    {{.At}}
`))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// RenderAlert builds the subject and plain-text body of an alert.
func RenderAlert(n entity.Notification) (string, string, error) {
	data := AlertEmailData{
		Provider:  string(n.Provider),
		Operation: string(n.Operation),
		AccountID: n.AccountID,
		Code:      n.Code,
		Message:   n.Message,
		At:        n.At.Format(time.RFC3339),
	}

	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render alert template: %w", err)
	}
	subject := fmt.Sprintf("[leadsync] %s %s failed (%s)", n.Provider, n.Operation, n.Code)
	return subject, body.String(), nil
}

func (s *EmailSender) SendAlert(n entity.Notification) error {
	subject, body, err := RenderAlert(n)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert via SMTP: %w", err)
	}
	return nil
}
