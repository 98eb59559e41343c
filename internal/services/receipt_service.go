package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/repositories"
	"flavorjunction/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReceiptService renders a PDF receipt for a completed payment.
type ReceiptService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	RequestID   string
	Loader      func(ctx context.Context, checkoutID string, userID int64) (receiptData, error)
}

type receiptData struct {
	Payment models.PaymentRequest
	Booking models.Booking
}

// Receipt returns the PDF bytes and a download filename.
func (s ReceiptService) Receipt(ctx context.Context, checkoutID string, userID int64) ([]byte, string, error) {
	d, err := s.load(ctx, checkoutID, userID)
	if err != nil {
		return nil, "", err
	}
	if d.Payment.Status != models.PaymentCompleted {
		return nil, "", domain.ConflictError{Resource: "payment", Msg: "pembayaran belum selesai"}
	}
	utils.LogFields(s.RequestID, "receipt", "generate", "checkout_request_id", d.Payment.CheckoutRequestID, "booking_id", d.Booking.ID)
	return buildReceiptPDF(d)
}

func (s ReceiptService) load(ctx context.Context, checkoutID string, userID int64) (receiptData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, checkoutID, userID)
	}
	p, err := s.PaymentRepo.GetForUser(ctx, strings.TrimSpace(checkoutID), userID)
	if err != nil {
		return receiptData{}, err
	}
	b, err := s.BookingRepo.GetForUser(ctx, p.BookingID, userID)
	if err != nil {
		return receiptData{}, err
	}
	return receiptData{Payment: p, Booking: b}, nil
}

func buildReceiptPDF(d receiptData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "M-Pesa Receipt : "+safe(d.Payment.MpesaReceipt, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Checkout ID    : "+d.Payment.CheckoutRequestID)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Paid at        : "+utils.FormatDateTime(d.Payment.UpdatedAt))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Name  : "+safe(d.Booking.Name, "-"))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Phone : "+safe(d.Payment.PhoneNumber, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, bookingLine(d.Booking), "", "", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatKES(d.Payment.Amount))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%d_%s.pdf", d.Booking.ID, safeFilenamePart(d.Payment.MpesaReceipt))
	return buf.Bytes(), filename, nil
}

func bookingLine(b models.Booking) string {
	if b.Kind == models.BookingKindRoom {
		return fmt.Sprintf("Room %s, %s to %s, %d guest(s)",
			safe(b.RoomType, "-"), safe(b.CheckInDate, "-"), safe(b.CheckOutDate, "-"), b.Guests)
	}
	return fmt.Sprintf("Table reservation %s %s, %d guest(s)",
		safe(b.ReservationDate, "-"), safe(b.ReservationTime, "-"), b.Guests)
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
