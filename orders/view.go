package orders

import (
	"errors"
	"mercado/models"
)

// ErrMissingSeller is returned when a product line carries no seller reference.
var ErrMissingSeller = errors.New("every product line requires a seller reference")

// ValidateNewOrder checks the shape of an incoming checkout payload.
func ValidateNewOrder(o *models.Order) error {
	if len(o.Products) == 0 {
		return errors.New("order has no product lines")
	}
	for _, p := range o.Products {
		if p.Seller == "" {
			return ErrMissingSeller
		}
		if p.Quantity < 1 {
			return errors.New("product quantity must be at least 1")
		}
	}
	if o.ShippingAddress.FullName == "" || o.ShippingAddress.City == "" || o.ShippingAddress.AddressLine == "" {
		return errors.New("shipping address is incomplete")
	}
	return nil
}

// SellerView narrows an order's product lines to one seller and recomputes
// the partial subtotal. Computed per read, never persisted.
func SellerView(o models.Order, sellerID string) (models.Order, bool) {
	var lines []models.OrderProduct
	var subtotal float64
	for _, p := range o.Products {
		if p.Seller == sellerID {
			lines = append(lines, p)
			subtotal += p.Subtotal
		}
	}
	if len(lines) == 0 {
		return o, false
	}
	o.Products = lines
	o.SellerSubtotal = &subtotal
	return o, true
}
