package mailer

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error
}

type sendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, sender string) Mailer {
	return &sendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("LearnHub", sender),
	}
}

func (m *sendGridMailer) Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toEmail), StripTags(htmlBody), htmlBody)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs, used when SendGrid is not configured.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(_ context.Context, _ string, toEmail, subject, _ string) error {
	log.Printf("[mail] to=%s subject=%q (delivery disabled)", toEmail, subject)
	return nil
}

// Template wraps body content in the standard email layout.
func Template(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background-color: #f6f6f6; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 40px auto; background: #ffffff; border-radius: 8px;">
    <div style="background-color: #1d3557; padding: 24px; text-align: center; color: #ffffff;"><h1 style="margin: 0;">LearnHub</h1></div>
    <div style="padding: 32px; color: #1d3557; line-height: 1.6;"><h2>%s</h2>%s</div>
  </div>
</body>
</html>`, html.EscapeString(title), body)
}

func CertificateApprovedEmail(fullName, courseTitle, number string) (string, string) {
	subject := fmt.Sprintf("Your certificate for %s is ready", courseTitle)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Your certificate for <strong>%s</strong> was approved.</p><p>Certificate number: <strong>%s</strong></p>`,
		html.EscapeString(fullName), html.EscapeString(courseTitle), html.EscapeString(number))
	return subject, Template("Certificate issued", body)
}

func CertificateRejectedEmail(fullName, courseTitle, reason string) (string, string) {
	subject := fmt.Sprintf("Update on your certificate request for %s", courseTitle)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Your certificate request for <strong>%s</strong> was not approved.</p><p>Reason: %s</p>`,
		html.EscapeString(fullName), html.EscapeString(courseTitle), html.EscapeString(reason))
	return subject, Template("Certificate request", body)
}

func EnrollmentEmail(fullName, courseTitle string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s", courseTitle)
	body := fmt.Sprintf(`<p>Hi %s,</p><p>You are now enrolled in <strong>%s</strong>. Happy learning!</p>`,
		html.EscapeString(fullName), html.EscapeString(courseTitle))
	return subject, Template("Enrollment confirmed", body)
}
