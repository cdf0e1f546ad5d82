package orders

import (
	"mercado/models"
	"testing"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "Pending", "refunded", "done"} {
		if ValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{"pending", "processing"},
		{"pending", "cancelled"},
		{"processing", "shipped"},
		{"processing", "cancelled"},
		{"shipped", "delivered"},
	}
	for _, tc := range allowed {
		if !CanTransition(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be allowed", tc[0], tc[1])
		}
	}

	denied := [][2]string{
		{"pending", "shipped"},
		{"pending", "delivered"},
		{"processing", "delivered"},
		{"shipped", "cancelled"},
		{"delivered", "cancelled"},
		{"delivered", "pending"},
		{"cancelled", "processing"},
		{"shipped", "pending"},
	}
	for _, tc := range denied {
		if CanTransition(tc[0], tc[1]) {
			t.Errorf("expected %s -> %s to be denied", tc[0], tc[1])
		}
	}
}

func TestTerminalStatesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []string{"delivered", "cancelled"} {
		for next := range transitions {
			if CanTransition(terminal, next) {
				t.Errorf("terminal state %s allows transition to %s", terminal, next)
			}
		}
	}
}

func TestStatusTransitionFilterPinsPriorStatus(t *testing.T) {
	filter := statusTransitionFilter("ord-1", models.StatusPending)
	if filter["orderId"] != "ord-1" {
		t.Errorf("filter does not target the order: %v", filter)
	}
	// the write must only match while the order still holds the status the
	// transition was checked against, so concurrent updates cannot both win
	if filter["status"] != models.StatusPending {
		t.Errorf("filter does not pin the prior status: %v", filter)
	}
}

func TestNewStatusChangeDefaultsActor(t *testing.T) {
	change := NewStatusChange(models.StatusProcessing, "")
	if change.ActorID != "system" {
		t.Errorf("expected default actor system, got %q", change.ActorID)
	}
	if change.Status != models.StatusProcessing {
		t.Errorf("unexpected status %q", change.Status)
	}
	if change.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	change = NewStatusChange(models.StatusShipped, "seller-1")
	if change.ActorID != "seller-1" {
		t.Errorf("expected actor seller-1, got %q", change.ActorID)
	}
}
