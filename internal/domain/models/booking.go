package models

import "time"

type BookingKind string

const (
	BookingKindTable BookingKind = "table"
	BookingKindRoom  BookingKind = "room"
)

func (k BookingKind) Valid() bool {
	return k == BookingKindTable || k == BookingKindRoom
}

type BookingStatus string

const (
	BookingUnpaid BookingStatus = "unpaid"
	BookingPaid   BookingStatus = "paid"
)

// Booking is a table reservation or a room stay. It is also the order a
// payment settles: TotalAmount is what gets charged, PaymentRef holds the
// M-Pesa receipt once paid.
type Booking struct {
	ID     int64       `json:"id"`
	UserID int64       `json:"user_id"`
	Kind   BookingKind `json:"kind"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// table
	ReservationDate string `json:"reservation_date,omitempty"`
	ReservationTime string `json:"reservation_time,omitempty"`

	// room
	CheckInDate  string `json:"check_in_date,omitempty"`
	CheckOutDate string `json:"check_out_date,omitempty"`
	RoomType     string `json:"room_type,omitempty"`

	Guests      int           `json:"guests"`
	TotalAmount float64       `json:"total_amount"`
	Status      BookingStatus `json:"status"`
	PaymentRef  string        `json:"payment_ref,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
