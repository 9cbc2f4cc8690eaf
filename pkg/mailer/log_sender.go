package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender logs jobs instead of delivering them. Used when MAIL_SEND_ENABLED
// is off so local signups still complete; the OTP code ends up in the log.
type LogSender struct {
	Logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) Send(_ context.Context, job EmailJob) error {
	s.Logger.WithFields(logrus.Fields{
		"to":       job.To,
		"template": job.Template,
		"data":     job.Data,
	}).Info("mail sending disabled; job logged")
	return nil
}
