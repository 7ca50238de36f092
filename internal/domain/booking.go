package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a reservation of a room for a half-open interval
// [StartTime, EndTime). Cancelled bookings are retained for history
// but do not participate in overlap checks or availability.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID        uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	RoomID    uuid.UUID     `bun:"room_id,notnull,type:uuid" json:"roomId"`
	StartTime time.Time     `bun:"start_time,notnull" json:"startTime"`
	EndTime   time.Time     `bun:"end_time,notnull" json:"endTime"`
	CreatedBy string        `bun:"created_by,notnull" json:"createdBy"`
	Status    BookingStatus `bun:"status,notnull" json:"status"`
	CreatedAt time.Time     `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time     `bun:"updated_at,notnull" json:"updatedAt"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

func (b *Booking) Active() bool {
	return b.Status == BookingStatusActive
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}
