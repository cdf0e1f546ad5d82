package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mercado/db"
	"mercado/models"
	"mercado/mq"
	"mercado/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateOrder handles POST /api/orders. The payload arrives fully priced
// from the client's cart state; the server validates shape, stamps identity
// and the first history entry, and persists.
func CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	customerID := utils.GetUserIDFromRequest(r)
	if customerID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order payload")
		return
	}

	if err := ValidateNewOrder(&order); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := order.Status
	if status == "" {
		status = models.StatusPending
	}
	if !ValidStatus(status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	now := time.Now()
	order.OrderID = utils.NewID()
	order.CustomerID = customerID
	order.Status = status
	order.History = []models.StatusChange{NewStatusChange(status, customerID)}
	order.CreatedAt = now
	order.UpdatedAt = now

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.OrdersCollection.InsertOne(ctx, order); err != nil {
		log.Printf("order insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	mq.Emit(ctx, "order-created", models.Event{
		EntityType: "order",
		Method:     "created",
		EntityId:   order.OrderID,
		ActorId:    customerID,
	})

	expandOrder(ctx, &order)
	utils.RespondWithJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /api/orders/:orderid
func GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderId": ps.ByName("orderid")}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	expandOrder(ctx, &order)
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// GetOrdersByCustomer handles GET /api/orders/user/:userid, newest first.
func GetOrdersByCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.OrdersCollection.Find(ctx,
		bson.M{"customerId": ps.ByName("userid")},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}
	if list == nil {
		list = []models.Order{}
	}

	for i := range list {
		expandOrder(ctx, &list[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GetOrdersBySeller handles GET /api/orders/seller/:sellerid. Each order is
// projected down to the seller's own lines with a recomputed sellerSubtotal.
func GetOrdersBySeller(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sellerID := ps.ByName("sellerid")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cursor, err := db.OrdersCollection.Find(ctx,
		bson.M{"products.seller": sellerID},
		options.Find().SetSort(bson.M{"createdAt": -1}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(ctx)

	var all []models.Order
	if err := cursor.All(ctx, &all); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Decode error")
		return
	}

	list := []models.Order{}
	for _, o := range all {
		if scoped, ok := SellerView(o, sellerID); ok {
			expandOrder(ctx, &scoped)
			list = append(list, scoped)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// statusTransitionFilter matches the order only while it still holds the
// status a transition was validated against. Two racing updates can both
// pass CanTransition on the same read; the filter lets only one of them win.
func statusTransitionFilter(orderID, fromStatus string) bson.M {
	return bson.M{"orderId": orderID, "status": fromStatus}
}

// UpdateOrderStatus handles PATCH /api/orders/:orderid/status. Invalid enum
// values and transitions outside the table are rejected before any write, so
// a rejected call leaves history untouched.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input struct {
		Status  string `json:"status"`
		ActorID string `json:"actorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if !ValidStatus(input.Status) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var order models.Order
	err := db.OrdersCollection.FindOne(ctx, bson.M{"orderId": ps.ByName("orderid")}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !CanTransition(order.Status, input.Status) {
		utils.RespondWithError(w, http.StatusBadRequest,
			"Cannot move order from "+order.Status+" to "+input.Status)
		return
	}

	change := NewStatusChange(input.Status, input.ActorID)
	res, err := db.OrdersCollection.UpdateOne(ctx,
		statusTransitionFilter(order.OrderID, order.Status),
		bson.M{
			"$set":  bson.M{"status": input.Status, "updatedAt": change.Timestamp},
			"$push": bson.M{"history": change},
		},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}
	if res.MatchedCount == 0 {
		// A concurrent update moved the order off the status this transition
		// was checked against.
		utils.RespondWithError(w, http.StatusConflict, "Order status changed, retry")
		return
	}

	order.Status = input.Status
	order.History = append(order.History, change)
	order.UpdatedAt = change.Timestamp

	mq.Emit(ctx, "order-status", models.Event{
		EntityType: "order",
		Method:     input.Status,
		EntityId:   order.OrderID,
		ActorId:    change.ActorID,
	})

	expandOrder(ctx, &order)
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// expandOrder attaches customer and per-line seller display info. The stored
// document keeps raw references; failures here degrade to raw ids.
func expandOrder(ctx context.Context, order *models.Order) {
	ids := []string{order.CustomerID}
	for _, p := range order.Products {
		if p.Seller != "" {
			ids = append(ids, p.Seller)
		}
	}

	cursor, err := db.UserCollection.Find(ctx, bson.M{"userid": bson.M{"$in": ids}})
	if err != nil {
		return
	}
	defer cursor.Close(ctx)

	refs := map[string]*models.UserRef{}
	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			continue
		}
		refs[u.UserID] = &models.UserRef{UserID: u.UserID, Username: u.Username}
	}

	order.CustomerInfo = refs[order.CustomerID]
	for i := range order.Products {
		order.Products[i].SellerInfo = refs[order.Products[i].Seller]
	}
}
