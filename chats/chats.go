package chats

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"mercado/db"
	"mercado/models"
	"mercado/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NormalizeParticipants trims, deduplicates and sorts a participant list so
// that a participant set maps to exactly one stored array.
func NormalizeParticipants(ids []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// lookupStatus maps a single-document read error to an HTTP status; only a
// genuinely absent document is a 404, everything else is a server fault.
func lookupStatus(err error) int {
	if err == mongo.ErrNoDocuments {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// CreateChat handles POST /api/chats. Creation is idempotent on the
// participant set: an existing chat for the same set is returned with 200.
func CreateChat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body struct {
		Participants []string               `json:"participants"`
		LastMessage  *models.MessagePreview `json:"lastMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	participants := NormalizeParticipants(body.Participants)
	if len(participants) < 2 {
		utils.RespondWithError(w, http.StatusBadRequest, "A chat needs at least 2 unique participants")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.UserCollection.CountDocuments(ctx, bson.M{"userid": bson.M{"$in": participants}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if int(count) != len(participants) {
		utils.RespondWithError(w, http.StatusNotFound, "One or more participants do not exist")
		return
	}

	var existing models.Chat
	err = db.ChatsCollection.FindOne(ctx, bson.M{"participants": participants}).Decode(&existing)
	if err == nil {
		utils.RespondWithJSON(w, http.StatusOK, existing)
		return
	}
	if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	chat := models.Chat{
		Participants: participants,
		LastMessage:  body.LastMessage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := db.ChatsCollection.InsertOne(ctx, chat)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create chat")
		return
	}

	chat.ID = res.InsertedID.(primitive.ObjectID)
	utils.RespondWithJSON(w, http.StatusCreated, chat)
}

// GetUserChats handles GET /api/chats/user/:userid, most recent activity first.
func GetUserChats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" || userID != ps.ByName("userid") {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.ChatsCollection.Find(ctx,
		bson.M{"participants": bson.M{"$in": []string{userID}}},
		options.Find().SetSort(bson.M{"updatedAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var chats []models.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}

	utils.RespondWithJSON(w, http.StatusOK, chats)
}

// GetChat handles GET /api/chats/:chatid, participant-only.
func GetChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID, err := primitive.ObjectIDFromHex(ps.ByName("chatid"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var chat models.Chat
	err = db.ChatsCollection.FindOne(ctx, bson.M{
		"_id":          chatID,
		"participants": bson.M{"$in": []string{userID}},
	}).Decode(&chat)
	if err != nil {
		if status := lookupStatus(err); status == http.StatusNotFound {
			utils.RespondWithError(w, status, "Chat not found")
		} else {
			utils.RespondWithError(w, status, "Database error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, chat)
}

// UpdateChat handles PUT /api/chats/:chatid. Only the participant list can
// change; it is re-normalized and re-validated against the user collection.
func UpdateChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID, err := primitive.ObjectIDFromHex(ps.ByName("chatid"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	var body struct {
		Participants []string `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	participants := NormalizeParticipants(body.Participants)
	if len(participants) < 2 {
		utils.RespondWithError(w, http.StatusBadRequest, "A chat needs at least 2 unique participants")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := db.UserCollection.CountDocuments(ctx, bson.M{"userid": bson.M{"$in": participants}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if int(count) != len(participants) {
		utils.RespondWithError(w, http.StatusNotFound, "One or more participants do not exist")
		return
	}

	res, err := db.ChatsCollection.UpdateOne(ctx,
		bson.M{"_id": chatID, "participants": bson.M{"$in": []string{userID}}},
		bson.M{"$set": bson.M{"participants": participants, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update chat")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Chat not found")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Chat updated", nil)
}

// UpdateLastMessage handles PATCH /api/chats/:chatid/last-message.
func UpdateLastMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatID, err := primitive.ObjectIDFromHex(ps.ByName("chatid"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	var preview models.MessagePreview
	if err := json.NewDecoder(r.Body).Decode(&preview); err != nil || strings.TrimSpace(preview.Text) == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if preview.Sender == "" {
		preview.Sender = userID
	}
	if preview.Timestamp.IsZero() {
		preview.Timestamp = time.Now()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ChatsCollection.UpdateOne(ctx,
		bson.M{"_id": chatID, "participants": bson.M{"$in": []string{userID}}},
		bson.M{"$set": bson.M{"lastMessage": preview, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update chat")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Chat not found")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "Last message updated", nil)
}

// DeleteChat handles DELETE /api/chats/:chatid. Removes the chat and its
// messages; the two deletes are not transactional.
func DeleteChat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	chatIDHex := ps.ByName("chatid")
	chatID, err := primitive.ObjectIDFromHex(chatIDHex)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ChatsCollection.DeleteOne(ctx, bson.M{
		"_id":          chatID,
		"participants": bson.M{"$in": []string{userID}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete chat")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Chat not found")
		return
	}

	_, _ = db.MessagesCollection.DeleteMany(ctx, bson.M{"chatId": chatIDHex})

	utils.SendResponse(w, http.StatusOK, nil, "Chat deleted", nil)
}
