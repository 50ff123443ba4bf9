package mailer

import (
	"context"
	"fmt"
	"html"

	"productpulse-backend/internal/logger"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Mailer sends the transactional emails of the site.
type Mailer interface {
	SendLoginLink(ctx context.Context, to, link string) error
	SendDemoWelcome(ctx context.Context, to, name string) error
}

// New returns a Resend-backed mailer, or a logging one when apiKey is empty.
func New(apiKey, from string, log *zap.Logger) Mailer {
	if apiKey == "" {
		log.Warn("RESEND_API_KEY not set, emails will only be logged")
		return NewLogMailer(log)
	}
	return NewResendMailer(resend.NewClient(apiKey), from, log)
}

type ResendMailer struct {
	client *resend.Client
	from   string
	log    *zap.Logger
}

func NewResendMailer(client *resend.Client, from string, log *zap.Logger) *ResendMailer {
	return &ResendMailer{client: client, from: from, log: log}
}

func (m *ResendMailer) SendLoginLink(ctx context.Context, to, link string) error {
	return m.send(ctx, to, "Your ProductPulse admin login link", loginLinkHTML(link))
}

func (m *ResendMailer) SendDemoWelcome(ctx context.Context, to, name string) error {
	return m.send(ctx, to, "Your ProductPulse demo newsletter is on its way", demoWelcomeHTML(name))
}

func (m *ResendMailer) send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.log.Info("email sent",
		zap.String("email_id", sent.Id),
		logger.Email("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// LogMailer is used in development: nothing is sent, links are logged.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendLoginLink(_ context.Context, to, link string) error {
	m.log.Info("[dev mode] login link", logger.Email("to", to), zap.String("link", link))
	return nil
}

func (m *LogMailer) SendDemoWelcome(_ context.Context, to, name string) error {
	m.log.Info("[dev mode] demo welcome email", logger.Email("to", to), zap.String("name", name))
	return nil
}

func loginLinkHTML(link string) string {
	link = html.EscapeString(link)
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">ProductPulse admin</h2>
			<p>Click the button below to sign in to the blog editor:</p>
			<a href="%s" style="display: inline-block; background: #4f46e5; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">
				Sign in
			</a>
			<p style="color: #888; font-size: 14px; margin-top: 16px;">
				This link expires in 15 minutes and can only be used once.
			</p>
			<p style="color: #aaa; font-size: 12px;">
				If you didn't request this, you can safely ignore this email.
			</p>
		</div>
	`, link)
}

func demoWelcomeHTML(name string) string {
	name = html.EscapeString(name)
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">Thanks, %s!</h2>
			<p>We're putting together a personalized demo newsletter based on your preferences.</p>
			<p>You'll receive it in your inbox within the next hour.</p>
			<p style="color: #aaa; font-size: 12px;">
				Don't see the email? Check your spam folder. You can unsubscribe at any time using the link in every email.
			</p>
		</div>
	`, name)
}
