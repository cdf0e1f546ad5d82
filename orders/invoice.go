package orders

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"mercado/db"
	"mercado/globals"
	"mercado/models"
	"mercado/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var invoiceSecret = []byte(globals.EnvOr("INVOICE_SECRET", "invoice-signing-key"))

// SignInvoicePayload returns "orderid|tracking|ts|signature" for the QR code.
func SignInvoicePayload(orderID, tracking string, ts int64) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, tracking, ts)
	h := hmac.New(sha256.New, invoiceSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyInvoicePayload checks the signature half of a QR payload.
func VerifyInvoicePayload(payload string) bool {
	idx := len(payload) - 1
	for ; idx >= 0; idx-- {
		if payload[idx] == '|' {
			break
		}
	}
	if idx <= 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]

	h := hmac.New(sha256.New, invoiceSecret)
	h.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

// PrintInvoice handles GET /api/orders/:orderid/invoice. Customer-only; the
// PDF carries the line items, totals, and a signed QR payload.
func PrintInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
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

	if order.CustomerID != userID {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	qrPayload := SignInvoicePayload(order.OrderID, order.TrackingNumber, time.Now().Unix())
	qrPNG, err := qrcode.Encode(qrPayload, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Order ID: %s", order.OrderID))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Ship to: %s, %s, %s", order.ShippingAddress.FullName,
		order.ShippingAddress.AddressLine, order.ShippingAddress.City))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(90, 7, "Product")
	pdf.Cell(25, 7, "Qty")
	pdf.Cell(35, 7, "Unit")
	pdf.Cell(35, 7, "Subtotal")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 11)
	for _, p := range order.Products {
		pdf.Cell(90, 7, p.Title)
		pdf.Cell(25, 7, fmt.Sprintf("%d", p.Quantity))
		pdf.Cell(35, 7, fmt.Sprintf("%.2f", p.UnitPrice))
		pdf.Cell(35, 7, fmt.Sprintf("%.2f", p.Subtotal))
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.Cell(0, 7, fmt.Sprintf("Subtotal: %.2f", order.Subtotal))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Shipping: %.2f  Taxes: %.2f  Discount: -%.2f",
		order.ShippingCost, order.Taxes, order.Discount))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", order.Total))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+order.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
