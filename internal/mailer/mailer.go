// Package mailer is the outbound email seam. Delivery itself is an external
// collaborator; the default driver only logs.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Yespecom/server-updated-sub001/internal/config"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

func New(cfg *config.MailConfig, log *zap.Logger) (Mailer, error) {
	switch cfg.Driver {
	case "log", "":
		return &logMailer{from: cfg.From, log: log}, nil
	default:
		return nil, fmt.Errorf("unknown mail driver: %s", cfg.Driver)
	}
}

type logMailer struct {
	from string
	log  *zap.Logger
}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info("outbound mail",
		zap.String("from", m.from),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
