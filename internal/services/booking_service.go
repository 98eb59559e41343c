package services

import (
	"context"
	"strings"

	"flavorjunction/internal/domain"
	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/repositories"
	"flavorjunction/internal/utils"
)

// Nightly room rates in KES.
var RoomRates = map[string]float64{
	"standard": 5000,
	"deluxe":   8000,
	"suite":    12000,
}

const maxGuests = 50

type BookingService struct {
	BookingRepo repositories.BookingRepository
	// TableDepositPerGuest is charged per guest for a table reservation.
	TableDepositPerGuest float64
	RequestID            string
}

// Contact is shared by both booking kinds.
type Contact struct {
	Name  string
	Email string
	Phone string
}

type TableBookingInput struct {
	Contact
	Date   string
	Time   string
	Guests int
}

type RoomBookingInput struct {
	Contact
	CheckIn  string
	CheckOut string
	RoomType string
	Guests   int
}

func (c Contact) normalize() (Contact, error) {
	c.Name = utils.NormalizeSpace(c.Name)
	c.Email = utils.NormalizeEmail(c.Email)
	c.Phone = utils.TrimOrEmpty(c.Phone)
	if c.Name == "" {
		return c, domain.ValidationError{Field: "name", Msg: "wajib diisi"}
	}
	if err := validEmail(c.Email); err != nil {
		return c, err
	}
	if c.Phone == "" {
		return c, domain.ValidationError{Field: "phone", Msg: "wajib diisi"}
	}
	return c, nil
}

func validGuests(n int) error {
	if n < 1 || n > maxGuests {
		return domain.ValidationError{Field: "guests", Msg: "jumlah tamu tidak valid"}
	}
	return nil
}

// TablePrice is the deposit for a table booking.
func (s BookingService) TablePrice(guests int) float64 {
	return float64(guests) * s.TableDepositPerGuest
}

// RoomPrice returns nights × nightly rate for roomType.
func RoomPrice(roomType string, nights int) (float64, error) {
	rate, ok := RoomRates[strings.ToLower(strings.TrimSpace(roomType))]
	if !ok {
		return 0, domain.ValidationError{Field: "room_type", Msg: "tipe kamar tidak dikenal"}
	}
	if nights < 1 {
		return 0, domain.ValidationError{Field: "check_out_date", Msg: "harus setelah check-in"}
	}
	return rate * float64(nights), nil
}

func (s BookingService) CreateTableBooking(ctx context.Context, userID int64, in TableBookingInput) (models.Booking, error) {
	contact, err := in.Contact.normalize()
	if err != nil {
		return models.Booking{}, err
	}
	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "date", Msg: "format harus YYYY-MM-DD", Err: err}
	}
	clock, err := utils.ParseClock(in.Time)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "time", Msg: "format harus HH:MM", Err: err}
	}
	if err := validGuests(in.Guests); err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{
		UserID:          userID,
		Kind:            models.BookingKindTable,
		Name:            contact.Name,
		Email:           contact.Email,
		Phone:           contact.Phone,
		ReservationDate: date.Format(utils.LayoutDate),
		ReservationTime: clock.Format(utils.LayoutClock),
		Guests:          in.Guests,
		TotalAmount:     s.TablePrice(in.Guests),
	}
	if err := s.BookingRepo.Create(ctx, &b); err != nil {
		utils.LogEvent(s.RequestID, "booking", "create_table", "insert failed: "+err.Error())
		return models.Booking{}, err
	}
	utils.LogFields(s.RequestID, "booking", "create_table", "booking_id", b.ID, "user_id", userID, "amount", b.TotalAmount)
	return b, nil
}

func (s BookingService) CreateRoomBooking(ctx context.Context, userID int64, in RoomBookingInput) (models.Booking, error) {
	contact, err := in.Contact.normalize()
	if err != nil {
		return models.Booking{}, err
	}
	checkIn, err := utils.ParseDate(in.CheckIn)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "check_in_date", Msg: "format harus YYYY-MM-DD", Err: err}
	}
	checkOut, err := utils.ParseDate(in.CheckOut)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "check_out_date", Msg: "format harus YYYY-MM-DD", Err: err}
	}
	if !checkOut.After(checkIn) {
		return models.Booking{}, domain.ValidationError{Field: "check_out_date", Msg: "harus setelah check-in"}
	}
	if err := validGuests(in.Guests); err != nil {
		return models.Booking{}, err
	}
	roomType := strings.ToLower(strings.TrimSpace(in.RoomType))
	amount, err := RoomPrice(roomType, utils.Nights(checkIn, checkOut))
	if err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{
		UserID:       userID,
		Kind:         models.BookingKindRoom,
		Name:         contact.Name,
		Email:        contact.Email,
		Phone:        contact.Phone,
		CheckInDate:  checkIn.Format(utils.LayoutDate),
		CheckOutDate: checkOut.Format(utils.LayoutDate),
		RoomType:     roomType,
		Guests:       in.Guests,
		TotalAmount:  amount,
	}
	if err := s.BookingRepo.Create(ctx, &b); err != nil {
		utils.LogEvent(s.RequestID, "booking", "create_room", "insert failed: "+err.Error())
		return models.Booking{}, err
	}
	utils.LogFields(s.RequestID, "booking", "create_room", "booking_id", b.ID, "user_id", userID, "amount", b.TotalAmount)
	return b, nil
}

// List returns the user's bookings. kind may be empty.
func (s BookingService) List(ctx context.Context, userID int64, kind models.BookingKind) ([]models.Booking, error) {
	if kind != "" && !kind.Valid() {
		return nil, domain.ValidationError{Field: "kind", Msg: "jenis booking tidak dikenal"}
	}
	return s.BookingRepo.ListByUser(ctx, userID, kind)
}

func (s BookingService) Get(ctx context.Context, userID, bookingID int64) (models.Booking, error) {
	if bookingID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	return s.BookingRepo.GetForUser(ctx, bookingID, userID)
}

// ListAll is for admins. kind may be empty.
func (s BookingService) ListAll(ctx context.Context, kind models.BookingKind, limit int) ([]models.Booking, error) {
	if kind != "" && !kind.Valid() {
		return nil, domain.ValidationError{Field: "kind", Msg: "jenis booking tidak dikenal"}
	}
	return s.BookingRepo.ListAll(ctx, kind, limit)
}
