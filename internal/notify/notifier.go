package notify

import (
	"github.com/courseboard/api/internal/models"
	"github.com/sirupsen/logrus"
)

// Notifier is the sink that receives per-recipient sync payloads.
// Delivery is fire-and-forget: a failed emit must never surface to the
// request that triggered it.
type Notifier interface {
	Emit(user models.User, kind string, id int64, context any) error
}

// LogNotifier writes sync payloads to the log. It stands in for the
// push relay in development and tests.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Emit(user models.User, kind string, id int64, context any) error {
	n.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"kind":    kind,
		"id":      id,
	}).Debug("sync emit")
	return nil
}
