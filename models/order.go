package models

import "time"

// Order statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// OrderProduct is a single line item in an order.
type OrderProduct struct {
	ProductID string  `json:"productId" bson:"productId"`
	Title     string  `json:"title" bson:"title"`
	UnitPrice float64 `json:"unitPrice" bson:"unitPrice"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
	Seller    string  `json:"seller,omitempty" bson:"seller,omitempty"`

	// SellerInfo is attached on reads for display; never persisted.
	SellerInfo *UserRef `json:"sellerInfo,omitempty" bson:"-"`
}

// ShippingAddress is the delivery destination of an order.
type ShippingAddress struct {
	FullName    string `json:"fullName" bson:"fullName"`
	Phone       string `json:"phone" bson:"phone"`
	City        string `json:"city" bson:"city"`
	AddressLine string `json:"addressLine" bson:"addressLine"`
	Details     string `json:"details,omitempty" bson:"details,omitempty"`
}

// StatusChange is one entry of an order's append-only history trail.
type StatusChange struct {
	Status    string    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	ActorID   string    `json:"actorId" bson:"actorId"`
}

// Order represents a finalized purchase spanning one or more sellers.
type Order struct {
	OrderID         string          `json:"orderId" bson:"orderId"`
	CustomerID      string          `json:"customerId" bson:"customerId"`
	Status          string          `json:"status" bson:"status"`
	Products        []OrderProduct  `json:"products" bson:"products"`
	Subtotal        float64         `json:"subtotal" bson:"subtotal"`
	ShippingCost    float64         `json:"shippingCost" bson:"shippingCost"`
	Taxes           float64         `json:"taxes" bson:"taxes"`
	Discount        float64         `json:"discount" bson:"discount"`
	Total           float64         `json:"total" bson:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	DeliveryMethod  string          `json:"deliveryMethod" bson:"deliveryMethod"`
	TrackingNumber  string          `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	History         []StatusChange  `json:"history" bson:"history"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`

	// Read-time projections; never persisted.
	CustomerInfo   *UserRef `json:"customerInfo,omitempty" bson:"-"`
	SellerSubtotal *float64 `json:"sellerSubtotal,omitempty" bson:"-"`
}

// IdempotencyRecord backs the Idempotency-Key middleware on checkout.
type IdempotencyRecord struct {
	Key         string                 `bson:"key"`
	Method      string                 `bson:"method"`
	Path        string                 `bson:"path"`
	UserID      string                 `bson:"user_id"`
	RequestHash string                 `bson:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at"`
}
