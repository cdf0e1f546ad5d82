package orders

import (
	"mercado/models"
	"testing"
)

func sampleOrder() models.Order {
	return models.Order{
		OrderID:    "o1",
		CustomerID: "cust",
		Status:     models.StatusPending,
		Products: []models.OrderProduct{
			{ProductID: "p1", Title: "Lamp", UnitPrice: 10, Quantity: 2, Subtotal: 20, Seller: "alice"},
			{ProductID: "p2", Title: "Rug", UnitPrice: 40, Quantity: 1, Subtotal: 40, Seller: "bob"},
			{ProductID: "p3", Title: "Vase", UnitPrice: 15, Quantity: 3, Subtotal: 45, Seller: "alice"},
		},
		Subtotal: 105,
		Total:    115,
		ShippingAddress: models.ShippingAddress{
			FullName: "Ana Gomez", Phone: "555", City: "Lima", AddressLine: "Av. Sol 1",
		},
	}
}

func TestSellerViewFiltersAndRecomputes(t *testing.T) {
	scoped, ok := SellerView(sampleOrder(), "alice")
	if !ok {
		t.Fatal("expected a seller view for alice")
	}
	if len(scoped.Products) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(scoped.Products))
	}
	if scoped.SellerSubtotal == nil || *scoped.SellerSubtotal != 65 {
		t.Fatalf("expected sellerSubtotal 65, got %v", scoped.SellerSubtotal)
	}
	for _, p := range scoped.Products {
		if p.Seller != "alice" {
			t.Errorf("foreign line leaked into view: %s", p.ProductID)
		}
	}
}

func TestSellerViewRecomputedPerCall(t *testing.T) {
	o := sampleOrder()
	if _, ok := SellerView(o, "alice"); !ok {
		t.Fatal("first view missing")
	}

	// drop one of alice's lines and recompute
	o.Products = o.Products[:2]
	scoped, ok := SellerView(o, "alice")
	if !ok {
		t.Fatal("second view missing")
	}
	if len(scoped.Products) != 1 || *scoped.SellerSubtotal != 20 {
		t.Fatalf("expected recomputed subtotal 20, got %v", *scoped.SellerSubtotal)
	}
}

func TestSellerViewNoMatchingLines(t *testing.T) {
	if _, ok := SellerView(sampleOrder(), "carol"); ok {
		t.Fatal("expected no view for a seller with no lines")
	}
}

func TestValidateNewOrder(t *testing.T) {
	o := sampleOrder()
	if err := ValidateNewOrder(&o); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	missing := sampleOrder()
	missing.Products[1].Seller = ""
	if err := ValidateNewOrder(&missing); err != ErrMissingSeller {
		t.Fatalf("expected ErrMissingSeller, got %v", err)
	}

	empty := sampleOrder()
	empty.Products = nil
	if err := ValidateNewOrder(&empty); err == nil {
		t.Fatal("expected error for empty product list")
	}

	badQty := sampleOrder()
	badQty.Products[0].Quantity = 0
	if err := ValidateNewOrder(&badQty); err == nil {
		t.Fatal("expected error for zero quantity")
	}

	noAddr := sampleOrder()
	noAddr.ShippingAddress.City = ""
	if err := ValidateNewOrder(&noAddr); err == nil {
		t.Fatal("expected error for incomplete address")
	}
}
