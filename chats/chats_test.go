package chats

import (
	"errors"
	"net/http"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestNormalizeParticipantsDedupesAndSorts(t *testing.T) {
	got := NormalizeParticipants([]string{"bob", "alice", "bob", " alice ", "alice"})
	want := []string{"alice", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeParticipantsDropsBlanks(t *testing.T) {
	got := NormalizeParticipants([]string{"", "  ", "carol"})
	if !reflect.DeepEqual(got, []string{"carol"}) {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizeParticipantsStableForAnyOrder(t *testing.T) {
	a := NormalizeParticipants([]string{"u2", "u1"})
	b := NormalizeParticipants([]string{"u1", "u2", "u1"})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same set produced different arrays: %v vs %v", a, b)
	}
}

func TestNormalizeParticipantsSingleUser(t *testing.T) {
	got := NormalizeParticipants([]string{"solo", "solo"})
	if len(got) != 1 {
		t.Fatalf("expected 1 unique participant, got %d", len(got))
	}
}

func TestLookupStatusSeparatesMissingFromFailure(t *testing.T) {
	if got := lookupStatus(mongo.ErrNoDocuments); got != http.StatusNotFound {
		t.Errorf("missing document should map to 404, got %d", got)
	}
	if got := lookupStatus(errors.New("server selection timeout")); got != http.StatusInternalServerError {
		t.Errorf("database failure should map to 500, got %d", got)
	}
}
