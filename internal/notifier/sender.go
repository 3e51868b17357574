package notifier

import (
	"context"

	"fbgroup-notifier/internal/logging"
)

var logger = logging.GetModuleLogger("notifier")

// Sender delivers one formatted message.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Multi sends to every sender in order and stops at the first failure.
type Multi []Sender

func (m Multi) Send(ctx context.Context, message string) error {
	for _, s := range m {
		if err := s.Send(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

// Mirror forwards to an optional secondary channel. Failures are logged, never returned.
type Mirror struct {
	Name   string
	Sender Sender
}

func (m Mirror) Send(ctx context.Context, message string) error {
	if err := m.Sender.Send(ctx, message); err != nil {
		logger.WithError(err).Warnf("⚠️ %s mirror failed, continuing", m.Name)
	}
	return nil
}
