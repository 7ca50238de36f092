package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minibook/internal/domain"
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
}

// BookingRepository is the engine's view of durable booking state. The
// read-check-write sequence inside CreateBooking and CancelBooking is
// atomic per room: two mutations on the same room never interleave,
// mutations on distinct rooms never block one another.
type BookingRepository interface {
	// CreateBooking persists the booking iff no active booking on the
	// same room overlaps its [StartTime, EndTime). Returns ErrNotFound
	// when the room does not exist and ErrConflict on overlap.
	CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error)

	// CancelBooking transitions the booking to cancelled. Cancelling an
	// already-cancelled booking succeeds without effect.
	CancelBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)

	// ListBookings returns every booking for the room, active and
	// cancelled, ordered by start time ascending then id ascending.
	ListBookings(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error)

	// ListActiveBookings returns the active bookings intersecting
	// [windowStart, windowEnd), ordered by start time ascending.
	ListActiveBookings(ctx context.Context, roomID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}
