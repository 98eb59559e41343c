package handlers

import (
	"net/http"

	"flavorjunction/internal/domain/models"
	"flavorjunction/internal/http/middleware"
	"flavorjunction/internal/services"

	"github.com/gin-gonic/gin"
)

type contactFields struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

func (f contactFields) contact() services.Contact {
	return services.Contact{Name: f.Name, Email: f.Email, Phone: f.Phone}
}

type tableBookingRequest struct {
	contactFields
	Date           string `json:"date" binding:"required,datetime=2006-01-02"`
	Time           string `json:"time" binding:"required,datetime=15:04"`
	NumberOfPeople int    `json:"number_of_people" binding:"omitempty,min=1"`
	Guests         int    `json:"guests" binding:"omitempty,min=1"`
}

type roomBookingRequest struct {
	contactFields
	CheckInDate  string `json:"check_in_date" binding:"required,datetime=2006-01-02"`
	CheckOutDate string `json:"check_out_date" binding:"required,datetime=2006-01-02"`
	RoomType     string `json:"room_type" binding:"required"`
	Guests       int    `json:"guests" binding:"required,min=1"`
}

// POST /api/bookings/table
func (h *Handler) CreateTableBooking(c *gin.Context) {
	var req tableBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	guests := req.NumberOfPeople
	if guests == 0 {
		guests = req.Guests
	}
	b, err := h.bookingSvc(c).CreateTableBooking(c.Request.Context(), middleware.UserID(c), services.TableBookingInput{
		Contact: req.contact(),
		Date:    req.Date,
		Time:    req.Time,
		Guests:  guests,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "booking meja berhasil", "bookingId": b.ID, "booking": b})
}

// POST /api/bookings/room
func (h *Handler) CreateRoomBooking(c *gin.Context) {
	var req roomBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookingSvc(c).CreateRoomBooking(c.Request.Context(), middleware.UserID(c), services.RoomBookingInput{
		Contact:  req.contact(),
		CheckIn:  req.CheckInDate,
		CheckOut: req.CheckOutDate,
		RoomType: req.RoomType,
		Guests:   req.Guests,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "booking kamar berhasil", "bookingId": b.ID, "booking": b})
}

// listBookings serves GET /api/bookings/table, /api/bookings/room and
// /api/user/bookings (kind empty).
func (h *Handler) listBookings(kind models.BookingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.bookingSvc(c).List(c.Request.Context(), middleware.UserID(c), kind)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (h *Handler) ListTableBookings() gin.HandlerFunc { return h.listBookings(models.BookingKindTable) }

func (h *Handler) ListRoomBookings() gin.HandlerFunc { return h.listBookings(models.BookingKindRoom) }

func (h *Handler) ListMyBookings() gin.HandlerFunc { return h.listBookings("") }

// GET /api/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	b, err := h.bookingSvc(c).Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
