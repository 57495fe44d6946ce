package orders

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"recipebook/models"
)

// ReceiptSigner signs the payload printed as a QR code on receipts so a
// scanned receipt can be checked against the server secret.
type ReceiptSigner struct {
	secret []byte
}

func NewReceiptSigner(secret []byte) *ReceiptSigner {
	return &ReceiptSigner{secret: secret}
}

// Payload returns orderId|unixCreatedAt|signature.
func (s *ReceiptSigner) Payload(order *models.Order) string {
	data := fmt.Sprintf("%s|%d", order.OrderID, order.CreatedAt.Unix())
	return data + "|" + s.sign(data)
}

// Verify returns the orderId of a payload produced by Payload.
func (s *ReceiptSigner) Verify(payload string) (string, bool) {
	i := strings.LastIndex(payload, "|")
	if i < 0 {
		return "", false
	}
	data, sig := payload[:i], payload[i+1:]
	if !hmac.Equal([]byte(sig), []byte(s.sign(data))) {
		return "", false
	}
	orderID, _, ok := strings.Cut(data, "|")
	return orderID, ok
}

func (s *ReceiptSigner) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Receipt renders a one-page PDF for order with a signed QR code.
func (s *ReceiptSigner) Receipt(order *models.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(s.Payload(order), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, "Order: "+order.OrderID)
	pdf.Ln(8)
	pdf.Cell(0, 10, "Placed: "+order.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(8)
	pdf.Cell(0, 10, "Address: "+order.Address)
	pdf.Ln(8)
	pdf.Cell(0, 10, "Phone: "+order.PhoneNumber)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(120, 8, "Item")
	pdf.Cell(30, 8, "Quantity")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	for _, it := range order.Items {
		pdf.Cell(120, 8, it.ItemID.Hex())
		pdf.Cell(30, 8, fmt.Sprint(it.Quantity))
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
