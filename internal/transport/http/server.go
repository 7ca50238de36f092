package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"minibook/internal/domain"
	"minibook/internal/service/scheduling"
	"minibook/internal/store"
)

type Server struct {
	svc schedulingService
	log *slog.Logger
}

type schedulingService interface {
	CreateRoom(ctx context.Context, in scheduling.CreateRoomInput) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
	CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) error
	ListBookings(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error)
	ComputeAvailability(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]domain.Interval, error)
}

func NewServer(svc schedulingService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc: svc,
		log: log.With(slog.String("component", "http")),
	}
}

func (s *Server) Router(requestTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestTimeoutMiddleware(requestTimeout))

	api := r.Group("/api")
	{
		api.POST("/rooms", s.createRoom)
		api.GET("/rooms", s.listRooms)
		api.GET("/rooms/:id", s.getRoom)
		api.GET("/rooms/:id/availability", s.availability)
		api.POST("/bookings", s.createBooking)
		api.GET("/bookings", s.listBookings)
		api.DELETE("/bookings/:id", s.cancelBooking)
	}

	return r
}

func requestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (s *Server) createRoom(c *gin.Context) {
	log := s.log.With(slog.String("handler", "createRoom"))

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "malformed_body"))
		writeError(c, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	room, err := s.svc.CreateRoom(c.Request.Context(), scheduling.CreateRoomInput{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Info("room created", slog.String("room_id", room.ID.String()), slog.String("name", room.Name))
	c.JSON(http.StatusCreated, toRoomResponse(room))
}

func (s *Server) listRooms(c *gin.Context) {
	log := s.log.With(slog.String("handler", "listRooms"))

	rooms, err := s.svc.ListRooms(c.Request.Context())
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toRoomResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getRoom(c *gin.Context) {
	log := s.log.With(slog.String("handler", "getRoom"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		writeError(c, http.StatusBadRequest, "room id must be a UUID")
		return
	}

	room, err := s.svc.GetRoom(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toRoomResponse(room))
}

func (s *Server) availability(c *gin.Context) {
	log := s.log.With(slog.String("handler", "availability"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		writeError(c, http.StatusBadRequest, "room id must be a UUID")
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_from"))
		writeError(c, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_to"))
		writeError(c, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
		return
	}

	slots, err := s.svc.ComputeAvailability(c.Request.Context(), id, from, to)
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Debug(
		"availability computed",
		slog.String("room_id", id.String()),
		slog.Int("free_slots", len(slots)),
		slog.Time("from", from),
		slog.Time("to", to),
	)
	c.JSON(http.StatusOK, toFreeSlotResponses(slots))
}

func (s *Server) createBooking(c *gin.Context) {
	log := s.log.With(slog.String("handler", "createBooking"))

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "malformed_body"))
		writeError(c, http.StatusBadRequest, "request body must be valid JSON with RFC 3339 timestamps")
		return
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_room_uuid"))
		writeError(c, http.StatusBadRequest, "roomId must be a UUID")
		return
	}

	booking, err := s.svc.CreateBooking(c.Request.Context(), scheduling.CreateBookingInput{
		RoomID:    roomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Info(
		"booking created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("room_id", booking.RoomID.String()),
		slog.Time("start_time", booking.StartTime),
		slog.Time("end_time", booking.EndTime),
	)
	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (s *Server) listBookings(c *gin.Context) {
	log := s.log.With(slog.String("handler", "listBookings"))

	roomID, err := uuid.Parse(c.Query("roomId"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_room_uuid"))
		writeError(c, http.StatusBadRequest, "roomId must be a UUID")
		return
	}

	bookings, err := s.svc.ListBookings(c.Request.Context(), roomID)
	if err != nil {
		s.respondError(c, log, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) cancelBooking(c *gin.Context) {
	log := s.log.With(slog.String("handler", "cancelBooking"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		writeError(c, http.StatusBadRequest, "booking id must be a UUID")
		return
	}

	if err := s.svc.CancelBooking(c.Request.Context(), id); err != nil {
		s.respondError(c, log, err)
		return
	}

	log.Info("booking cancelled", slog.String("booking_id", id.String()))
	c.Status(http.StatusNoContent)
}

func (s *Server) respondError(c *gin.Context, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info("resource not found", slog.Any("err", err))
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrRoomExists):
		log.Info("room name taken", slog.Any("err", err))
		writeError(c, http.StatusConflict, "Room name already exists")
	case errors.Is(err, store.ErrConflict):
		log.Info("booking conflict", slog.Any("err", err))
		writeError(c, http.StatusConflict, "Time slot already booked")
	default:
		var vErr *scheduling.ValidationError
		var rErr *scheduling.RangeError
		if errors.As(err, &vErr) {
			log.Warn("invalid request", slog.Any("err", err))
			writeError(c, http.StatusBadRequest, vErr.Error())
			return
		}
		if errors.As(err, &rErr) {
			log.Warn("invalid range", slog.Any("err", err))
			writeError(c, http.StatusBadRequest, rErr.Error())
			return
		}
		log.Error("request failed", slog.Any("err", err))
		writeError(c, http.StatusInternalServerError, "Unexpected server error")
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
	})
}
