package mailer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/config"
	"github.com/arklim/account-otp-service/internal/infra/logger"
)

// SMTPMailer delivers one-time codes over SMTP with bounded retries.
type SMTPMailer struct {
	dialer     *gomail.Dialer
	from       string
	maxRetries int
	retryBase  time.Duration
	log        *zap.Logger
}

// NewSMTPMailer constructs the SMTP delivery channel.
func NewSMTPMailer(cfg config.SMTPSettings, log *zap.Logger) *SMTPMailer {
	if log == nil {
		log = zap.NewNop()
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = 500 * time.Millisecond
	}

	return &SMTPMailer{
		dialer:     dialer,
		from:       cfg.From,
		maxRetries: cfg.MaxRetries,
		retryBase:  retryBase,
		log:        log,
	}
}

// SendOTPCode delivers the plaintext code to the recipient. Transient SMTP
// failures are retried with exponential backoff until the retry budget or the
// context runs out.
func (m *SMTPMailer) SendOTPCode(ctx context.Context, email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your verification code")

	body := fmt.Sprintf(`
		<h3>Verification code</h3>
		<p>Your one-time verification code is: <strong>%s</strong></p>
		<p>The code expires shortly. If you did not request it, you can ignore this email.</p>
	`, code)
	msg.SetBody("text/html", body)

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := m.retryBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("send otp email: %w", ctx.Err())
			}
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("send otp email: %w", err)
		}

		if err := m.dialer.DialAndSend(msg); err != nil {
			lastErr = err
			m.log.Warn("otp email delivery attempt failed",
				zap.String("email", logger.MaskEmail(email)),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		return nil
	}

	return fmt.Errorf("send otp email after %d attempts: %w", m.maxRetries+1, lastErr)
}

var _ port.Mailer = (*SMTPMailer)(nil)
