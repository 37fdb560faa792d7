package events

import (
	"github.com/sirupsen/logrus"

	"banking-ledger/internal/domain"
)

// LogSink publishes domain events to the structured log. It stands in for a
// message broker; services only see the Publish method.
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish emits one log record per event.
func (s *LogSink) Publish(evs ...domain.Event) {
	for _, ev := range evs {
		entry := s.logger.WithField("event", ev.EventName())
		switch e := ev.(type) {
		case domain.TransactionCompletedEvent:
			entry.WithFields(logrus.Fields{
				"transaction_id": e.TransactionID,
				"type":           e.Type,
				"amount":         e.Amount,
				"executed_at":    e.ExecutedAt,
			}).Info("transaction completed")
		case domain.TransactionFailedEvent:
			entry.WithFields(logrus.Fields{
				"transaction_id": e.TransactionID,
				"type":           e.Type,
				"amount":         e.Amount,
				"reason":         e.Reason,
			}).Warn("transaction failed")
		default:
			entry.Info("domain event")
		}
	}
}
