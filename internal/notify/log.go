package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier implements Notifier by writing messages to the logger.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Publish(_ context.Context, message string) error {
	n.log.Info("notification published", zap.String("message", message))
	return nil
}
