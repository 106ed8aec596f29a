package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/account-otp-service/internal/core/port"
	"github.com/arklim/account-otp-service/internal/infra/logger"
)

// LoggingMailer writes deliveries to the log instead of sending email. Used
// in development environments without an SMTP relay. The code itself is never
// logged; development clients read it from the API response instead.
type LoggingMailer struct {
	log *zap.Logger
}

// NewLoggingMailer constructs the development delivery channel.
func NewLoggingMailer(log *zap.Logger) *LoggingMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMailer{log: log}
}

func (m *LoggingMailer) SendOTPCode(_ context.Context, email, _ string) error {
	m.log.Info("otp delivery skipped, no smtp relay configured",
		zap.String("email", logger.MaskEmail(email)),
	)
	return nil
}

var _ port.Mailer = (*LoggingMailer)(nil)
