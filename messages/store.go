package messages

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"mercado/db"
	"mercado/models"
	"mercado/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SaveMessage validates and persists one message, then refreshes the owning
// chat's lastMessage snapshot. Used by both the REST handler and the socket
// relay. Returns the HTTP-style status code describing a failure.
//
// The message insert and the lastMessage update are two writes without a
// transaction; a crash in between leaves the snapshot stale.
func SaveMessage(ctx context.Context, chatIDHex, senderID, receiverID, content string) (models.Message, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, http.StatusBadRequest, errors.New("message content is required")
	}
	if receiverID == "" {
		return models.Message{}, http.StatusBadRequest, errors.New("receiverId is required")
	}

	chatID, err := primitive.ObjectIDFromHex(chatIDHex)
	if err != nil {
		return models.Message{}, http.StatusBadRequest, errors.New("invalid chat ID")
	}

	var chat models.Chat
	err = db.ChatsCollection.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return models.Message{}, http.StatusNotFound, errors.New("chat not found")
	}
	if err != nil {
		return models.Message{}, http.StatusInternalServerError, errors.New("database error")
	}

	if !bothParticipants(chat.Participants, senderID, receiverID) {
		return models.Message{}, http.StatusForbidden, errors.New("sender and receiver must both be chat participants")
	}

	now := time.Now()
	msg := models.Message{
		ChatID:     chatIDHex,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Status:     models.MessageSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := db.MessagesCollection.InsertOne(ctx, msg)
	if err != nil {
		return models.Message{}, http.StatusInternalServerError, errors.New("failed to save message")
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)

	_, _ = db.ChatsCollection.UpdateOne(ctx,
		bson.M{"_id": chatID},
		bson.M{"$set": bson.M{
			"lastMessage": models.MessagePreview{Text: content, Sender: senderID, Timestamp: now},
			"updatedAt":   now,
		}},
	)

	return msg, http.StatusCreated, nil
}

// MarkDelivered flips a stored message to delivered.
func MarkDelivered(ctx context.Context, id primitive.ObjectID) {
	_, _ = db.MessagesCollection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.MessageSent},
		bson.M{"$set": bson.M{"status": models.MessageDelivered, "updatedAt": time.Now()}},
	)
}

// bothParticipants reports whether sender and receiver both belong to the
// chat's participant set.
func bothParticipants(participants []string, senderID, receiverID string) bool {
	return utils.Contains(participants, senderID) && utils.Contains(participants, receiverID)
}

// parseMessageIDs converts hex ids to ObjectIDs, dropping malformed ones.
func parseMessageIDs(raw []string) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, r := range raw {
		id, err := primitive.ObjectIDFromHex(r)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// seenFilter constrains a bulk seen update to the chat and to messages
// addressed to the caller; a caller can never mark someone else's inbox.
func seenFilter(ids []primitive.ObjectID, chatIDHex, callerID string) bson.M {
	return bson.M{
		"_id":        bson.M{"$in": ids},
		"chatId":     chatIDHex,
		"receiverId": callerID,
	}
}

// MarkSeen bulk-updates the given messages to seen, constrained to the chat
// and to messages addressed to the caller. Returns the ids that matched the
// constraint.
func MarkSeen(ctx context.Context, chatIDHex, callerID string, messageIDs []string) ([]string, error) {
	ids := parseMessageIDs(messageIDs)
	if len(ids) == 0 {
		return nil, errors.New("no valid message ids")
	}

	filter := seenFilter(ids, chatIDHex, callerID)

	cursor, err := db.MessagesCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var matched []string
	for cursor.Next(ctx) {
		var m models.Message
		if err := cursor.Decode(&m); err == nil {
			matched = append(matched, m.ID.Hex())
		}
	}
	cursor.Close(ctx)

	if len(matched) == 0 {
		return nil, nil
	}

	_, err = db.MessagesCollection.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"status": models.MessageSeen, "updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, err
	}
	return matched, nil
}
