package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"minibook/internal/domain"
	"minibook/internal/store"
)

// AnonymousCreator is recorded on bookings created without a caller
// identity.
const AnonymousCreator = "anonymous"

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// RangeError reports a time window whose end is not strictly after
// its start.
type RangeError struct {
	msg string
}

func (e *RangeError) Error() string {
	return e.msg
}

func rangeError(msg string) error {
	return &RangeError{msg: msg}
}

// Notifier receives booking lifecycle events after a mutation has
// committed. Implementations must not block the caller's request.
type Notifier interface {
	BookingCreated(ctx context.Context, booking domain.Booking)
	BookingCancelled(ctx context.Context, booking domain.Booking)
}

type noopNotifier struct{}

func (noopNotifier) BookingCreated(context.Context, domain.Booking)   {}
func (noopNotifier) BookingCancelled(context.Context, domain.Booking) {}

type Service struct {
	rooms    store.RoomRepository
	bookings store.BookingRepository
	notifier Notifier
}

func NewService(rooms store.RoomRepository, bookings store.BookingRepository, notifier Notifier) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{rooms: rooms, bookings: bookings, notifier: notifier}
}

type CreateRoomInput struct {
	Name     string
	Capacity int
}

func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (domain.Room, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Room{}, validationError("name is required")
	}
	if in.Capacity <= 0 {
		return domain.Room{}, validationError("capacity must be positive")
	}

	return s.rooms.CreateRoom(ctx, domain.Room{Name: name, Capacity: in.Capacity})
}

func (s *Service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.ListRooms(ctx)
}

func (s *Service) GetRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	if roomID == uuid.Nil {
		return domain.Room{}, validationError("room_id is required")
	}
	return s.rooms.GetRoom(ctx, roomID)
}

type CreateBookingInput struct {
	RoomID    uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	CreatedBy string
}

func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if in.RoomID == uuid.Nil {
		return domain.Booking{}, validationError("room_id is required")
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return domain.Booking{}, rangeError("end_time must be after start_time")
	}

	createdBy := strings.TrimSpace(in.CreatedBy)
	if createdBy == "" {
		createdBy = AnonymousCreator
	}

	booking, err := s.bookings.CreateBooking(ctx, domain.Booking{
		RoomID:    in.RoomID,
		StartTime: start,
		EndTime:   end,
		CreatedBy: createdBy,
		Status:    domain.BookingStatusActive,
	})
	if err != nil {
		return domain.Booking{}, err
	}

	go s.notifier.BookingCreated(context.WithoutCancel(ctx), booking)

	return booking, nil
}

func (s *Service) CancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	if bookingID == uuid.Nil {
		return validationError("booking_id is required")
	}

	booking, err := s.bookings.CancelBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	go s.notifier.BookingCancelled(context.WithoutCancel(ctx), booking)

	return nil
}

func (s *Service) ListBookings(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error) {
	if roomID == uuid.Nil {
		return nil, validationError("room_id is required")
	}
	return s.bookings.ListBookings(ctx, roomID)
}

// ComputeAvailability returns the free sub-intervals of
// [from, to) on the room: the window minus its active bookings.
func (s *Service) ComputeAvailability(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]domain.Interval, error) {
	if roomID == uuid.Nil {
		return nil, validationError("room_id is required")
	}

	window, err := domain.NewInterval(from, to)
	if err != nil {
		return nil, rangeError("to must be after from")
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	active, err := s.bookings.ListActiveBookings(ctx, roomID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	busy := make([]domain.Interval, 0, len(active))
	for _, b := range active {
		busy = append(busy, b.Interval())
	}

	return domain.FreeSlots(window, busy), nil
}
