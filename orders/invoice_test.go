package orders

import (
	"strings"
	"testing"
	"time"
)

func TestInvoicePayloadRoundTrip(t *testing.T) {
	payload := SignInvoicePayload("order-1", "TRK123", time.Now().Unix())
	if !VerifyInvoicePayload(payload) {
		t.Fatal("freshly signed payload failed verification")
	}
	if !strings.HasPrefix(payload, "order-1|TRK123|") {
		t.Fatalf("unexpected payload shape: %s", payload)
	}
}

func TestInvoicePayloadTamperDetected(t *testing.T) {
	payload := SignInvoicePayload("order-1", "TRK123", 1700000000)
	tampered := strings.Replace(payload, "TRK123", "TRK999", 1)
	if VerifyInvoicePayload(tampered) {
		t.Fatal("tampered payload passed verification")
	}
	if VerifyInvoicePayload("no-separator") {
		t.Fatal("malformed payload passed verification")
	}
}
