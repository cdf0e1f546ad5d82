package messages

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBothParticipants(t *testing.T) {
	participants := []string{"alice", "bob"}

	if !bothParticipants(participants, "alice", "bob") {
		t.Error("expected two members of the chat to pass")
	}
	if bothParticipants(participants, "mallory", "bob") {
		t.Error("sender outside the chat must be rejected")
	}
	if bothParticipants(participants, "alice", "mallory") {
		t.Error("receiver outside the chat must be rejected")
	}
	if bothParticipants(nil, "alice", "bob") {
		t.Error("empty participant set must reject everyone")
	}
}

func TestParseMessageIDsDropsMalformed(t *testing.T) {
	valid := primitive.NewObjectID()
	ids := parseMessageIDs([]string{valid.Hex(), "not-a-hex-id", ""})

	if len(ids) != 1 || ids[0] != valid {
		t.Fatalf("expected only the valid id, got %v", ids)
	}
	if got := parseMessageIDs([]string{"zz", ""}); got != nil {
		t.Fatalf("expected nil for all-malformed input, got %v", got)
	}
}

func TestSeenFilterScopesToCallerAndChat(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID()}
	filter := seenFilter(ids, "chat-1", "bob")

	if filter["chatId"] != "chat-1" {
		t.Errorf("filter not scoped to the chat: %v", filter)
	}
	// only messages addressed to the caller may flip to seen
	if filter["receiverId"] != "bob" {
		t.Errorf("filter not scoped to the caller's inbox: %v", filter)
	}
	in, ok := filter["_id"].(bson.M)
	if !ok {
		t.Fatalf("filter does not constrain message ids: %v", filter)
	}
	got, ok := in["$in"].([]primitive.ObjectID)
	if !ok || len(got) != 1 {
		t.Errorf("unexpected id constraint: %v", in)
	}
}
