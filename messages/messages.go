package messages

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mercado/db"
	"mercado/models"
	"mercado/mq"
	"mercado/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Broadcaster fans a payload out to every socket currently joined to a room.
// Implemented by the relay hub.
type Broadcaster interface {
	Emit(room string, payload any)
}

// CreateMessage handles POST /api/messages. The sender comes from the auth
// context; sockets joined to the chat room get the message pushed live.
func CreateMessage(hub Broadcaster) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		senderID := utils.GetUserIDFromRequest(r)
		if senderID == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			ChatID     string `json:"chatId"`
			ReceiverID string `json:"receiverId"`
			Content    string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		msg, code, err := SaveMessage(ctx, input.ChatID, senderID, input.ReceiverID, input.Content)
		if err != nil {
			utils.RespondWithError(w, code, err.Error())
			return
		}

		if hub != nil {
			hub.Emit(msg.ChatID, utils.M{"action": "new_message", "message": msg})
		}

		mq.Emit(ctx, "message-sent", models.Event{
			EntityType: "chat",
			Method:     "message",
			EntityId:   msg.ChatID,
			ItemId:     msg.ID.Hex(),
			ActorId:    senderID,
		})

		utils.RespondWithJSON(w, http.StatusCreated, msg)
	}
}

// GetMessages handles GET /api/messages/:chatid — paginated, newest first,
// participant-only.
func GetMessages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	var chat models.Chat
	err = db.ChatsCollection.FindOne(ctx, bson.M{"_id": chatID}).Decode(&chat)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Chat not found")
		return
	}
	if !utils.Contains(chat.Participants, userID) {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	opts := utils.ParseQueryOptions(r)
	cursor, err := db.MessagesCollection.Find(ctx,
		bson.M{"chatId": chatIDHex},
		options.Find().
			SetSort(bson.M{"createdAt": -1}).
			SetSkip(int64((opts.Page-1)*opts.Limit)).
			SetLimit(int64(opts.Limit)),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var msgs []models.Message
	if err := cursor.All(ctx, &msgs); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"chatId":   chatIDHex,
		"page":     opts.Page,
		"limit":    opts.Limit,
		"messages": msgs,
	})
}
