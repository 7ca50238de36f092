package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"minibook/internal/domain"
)

// RoomTx is the set of operations available inside a per-room
// exclusive section. Implementations guarantee that for a given room
// at most one RoomTx is live at a time.
type RoomTx interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListActiveBookings(ctx context.Context, roomID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	InsertBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	MarkBookingCancelled(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
}
