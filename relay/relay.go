package relay

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mercado/db"
	"mercado/messages"
	"mercado/middleware"
	"mercado/models"
	"mercado/mq"
	"mercado/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// inboundPayload is what clients send us.
type inboundPayload struct {
	Action     string   `json:"action"`
	ChatID     string   `json:"chatId,omitempty"`
	ReceiverID string   `json:"receiverId,omitempty"`
	Content    string   `json:"content,omitempty"`
	IsTyping   bool     `json:"isTyping,omitempty"`
	MessageIDs []string `json:"messageIds,omitempty"`
}

// handshakeToken pulls the JWT from the query string or the Authorization
// header; both raw and "Bearer <jwt>" forms are accepted.
func handshakeToken(r *http.Request) string {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	return r.Header.Get("Authorization")
}

// ChatSocketHandler authenticates the handshake, upgrades the connection and
// runs the read loop. Unauthenticated connections are rejected before the
// upgrade.
func ChatSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ParseToken(handshakeToken(r))
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		var user models.User
		err = db.UserCollection.FindOne(ctx, bson.M{"userid": claims.UserID}).Decode(&user)
		cancel()
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("relay upgrade:", err)
			return
		}

		client := &Client{
			Conn:     conn,
			Send:     make(chan []byte, 256),
			UserID:   user.UserID,
			Username: user.Username,
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			conn.Close()
			return
		}
		go writePump(client)
		readPump(client, hub)
	}
}

func readPump(c *Client, hub *Hub) {
	defer func() {
		select {
		case hub.unregister <- c:
		case <-hub.quit:
		}
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundPayload
		if err := json.Unmarshal(raw, &in); err != nil {
			c.sendError("invalid payload")
			continue
		}

		switch in.Action {
		case "join_chat":
			handleJoin(c, hub, in)
		case "leave_chat":
			if in.ChatID == "" {
				c.sendError("chatId is required")
				continue
			}
			select {
			case hub.leave <- membership{client: c, room: in.ChatID}:
			case <-hub.quit:
				return
			}
		case "send_message":
			handleSendMessage(c, hub, in)
		case "typing":
			handleTyping(c, hub, in)
		case "message_seen":
			handleMessageSeen(c, hub, in)
		default:
			c.sendError("unknown action: " + in.Action)
		}
	}
}

// handleJoin admits the socket to the chat room after verifying the user is
// a participant.
func handleJoin(c *Client, hub *Hub, in inboundPayload) {
	if in.ChatID == "" {
		c.sendError("chatId is required")
		return
	}
	chatID, err := primitive.ObjectIDFromHex(in.ChatID)
	if err != nil {
		c.sendError("invalid chat ID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := db.ChatsCollection.CountDocuments(ctx, bson.M{
		"_id":          chatID,
		"participants": bson.M{"$in": []string{c.UserID}},
	})
	if err != nil || count == 0 {
		c.sendError("not a participant of this chat")
		return
	}

	select {
	case hub.join <- membership{client: c, room: in.ChatID}:
	case <-hub.quit:
	}
}

// handleSendMessage persists the message, fans it out to the room (sender
// included), then acks the sender alone with a delivered status. "Delivered"
// here means persisted, not received.
func handleSendMessage(c *Client, hub *Hub, in inboundPayload) {
	if in.ChatID == "" || in.ReceiverID == "" || in.Content == "" {
		c.sendError("chatId, receiverId and content are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg, _, err := messages.SaveMessage(ctx, in.ChatID, c.UserID, in.ReceiverID, in.Content)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	hub.Emit(msg.ChatID, utils.M{"action": "new_message", "message": msg})

	messages.MarkDelivered(ctx, msg.ID)
	c.sendJSON(utils.M{
		"action":    "message_delivered",
		"messageId": msg.ID.Hex(),
		"status":    models.MessageDelivered,
	})

	mq.Emit(ctx, "message-sent", models.Event{
		EntityType: "chat",
		Method:     "message",
		EntityId:   msg.ChatID,
		ItemId:     msg.ID.Hex(),
		ActorId:    c.UserID,
	})
}

// handleTyping relays the ephemeral indicator to the room, excluding the
// sender. Nothing is persisted and the server does no debouncing.
func handleTyping(c *Client, hub *Hub, in inboundPayload) {
	if in.ChatID == "" {
		c.sendError("chatId is required")
		return
	}
	hub.EmitExcept(in.ChatID, utils.M{
		"action":   "user_typing",
		"chatId":   in.ChatID,
		"userId":   c.UserID,
		"userName": c.Username,
		"isTyping": in.IsTyping,
	}, c)
}

// handleMessageSeen marks the caller's received messages as seen and tells
// the rest of the room.
func handleMessageSeen(c *Client, hub *Hub, in inboundPayload) {
	if in.ChatID == "" || len(in.MessageIDs) == 0 {
		c.sendError("chatId and messageIds are required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	marked, err := messages.MarkSeen(ctx, in.ChatID, c.UserID, in.MessageIDs)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if len(marked) == 0 {
		return
	}

	hub.EmitExcept(in.ChatID, utils.M{
		"action":     "messages_marked_seen",
		"chatId":     in.ChatID,
		"messageIds": marked,
		"seenBy":     c.UserID,
	}, c)
}
