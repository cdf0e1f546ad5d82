package orders

import (
	"mercado/models"
	"time"
)

// transitions is the allowed status graph. Delivered and cancelled are
// terminal.
var transitions = map[string][]string{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered},
	models.StatusDelivered:  {},
	models.StatusCancelled:  {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewStatusChange builds a history entry, defaulting the actor to "system".
func NewStatusChange(status, actorID string) models.StatusChange {
	if actorID == "" {
		actorID = "system"
	}
	return models.StatusChange{
		Status:    status,
		Timestamp: time.Now(),
		ActorID:   actorID,
	}
}
