package orders

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComputeRequestHashStable(t *testing.T) {
	body := []byte(`{"total":115}`)
	r1 := httptest.NewRequest("POST", "/api/orders", strings.NewReader(string(body)))
	r2 := httptest.NewRequest("POST", "/api/orders", strings.NewReader(string(body)))

	if computeRequestHash(r1, body, "u1") != computeRequestHash(r2, body, "u1") {
		t.Fatal("identical requests hashed differently")
	}
}

func TestComputeRequestHashDistinguishes(t *testing.T) {
	body := []byte(`{"total":115}`)
	r := httptest.NewRequest("POST", "/api/orders", strings.NewReader(string(body)))

	base := computeRequestHash(r, body, "u1")
	if computeRequestHash(r, []byte(`{"total":999}`), "u1") == base {
		t.Fatal("different bodies hashed the same")
	}
	if computeRequestHash(r, body, "u2") == base {
		t.Fatal("different users hashed the same")
	}
}
