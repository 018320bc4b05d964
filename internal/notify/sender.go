// Package notify delivers borrower-facing text messages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/config"
)

var ErrInvalidPhone = errors.New("invalid phone number")

type Sender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

func NewSenderFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (Sender, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.SMSMode))
	if mode == "" || mode == config.SMSModeStub {
		return NewStubSender(logger), nil
	}
	if mode != config.SMSModeSNS {
		return nil, fmt.Errorf("invalid SMS_MODE: %s", cfg.SMSMode)
	}
	return NewSNSSender(ctx, cfg.AWSRegion)
}

// NormalizePhone returns phone in E.164 form. Ten-digit numbers are assumed
// to be US numbers.
func NormalizePhone(phone string) (string, error) {
	trimmed := strings.TrimSpace(phone)
	var digits strings.Builder
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+1" + d, nil
	case len(d) == 11 && d[0] == '1':
		return "+" + d, nil
	case strings.HasPrefix(trimmed, "+") && len(d) >= 8 && len(d) <= 15:
		return "+" + d, nil
	}
	return "", ErrInvalidPhone
}

type StubSender struct {
	logger *zap.Logger
}

func NewStubSender(logger *zap.Logger) *StubSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubSender{logger: logger}
}

func (s *StubSender) SendSMS(_ context.Context, phone, message string) error {
	s.logger.Info("sms suppressed", zap.String("phone", phone), zap.Int("length", len(message)))
	return nil
}
