package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"minibook/internal/domain"
	"minibook/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type roomTx struct {
	tx bun.Tx
}

func (r *BookingRepo) CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.InRoomTransaction(ctx, booking.RoomID, func(ctx context.Context, tx store.RoomTx) error {
		if _, err := tx.GetRoom(ctx, booking.RoomID); err != nil {
			return err
		}
		if err := ensureNoOverlap(ctx, tx, booking); err != nil {
			return err
		}
		b, err := tx.InsertBooking(ctx, booking)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) CancelBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	// A plain read first: cancel is keyed by booking id, but the
	// exclusive section is keyed by room id, so the room must be known
	// before the lock is taken. The status is re-read inside the lock.
	var probe domain.Booking
	err := r.db.NewSelect().
		Model(&probe).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	if probe.Status == domain.BookingStatusCancelled {
		return probe, nil
	}

	var out domain.Booking
	err = r.InRoomTransaction(ctx, probe.RoomID, func(ctx context.Context, tx store.RoomTx) error {
		cur, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if cur.Status == domain.BookingStatusCancelled {
			out = cur
			return nil
		}
		b, err := tx.MarkBookingCancelled(ctx, bookingID)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) ListBookings(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error) {
	exists, err := r.db.NewSelect().
		Model((*domain.Room)(nil)).
		Where("id = ?", roomID).
		Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	var rows []domain.Booking
	err = r.db.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		OrderExpr("start_time ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListActiveBookings(ctx context.Context, roomID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Where("status = ?", domain.BookingStatusActive).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InRoomTransaction runs fn inside a transaction holding the room's
// advisory lock, serializing mutations per room without blocking
// other rooms.
func (r *BookingRepo) InRoomTransaction(ctx context.Context, roomID uuid.UUID, fn func(ctx context.Context, tx store.RoomTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockRoom(ctx, tx, roomID); err != nil {
			return err
		}
		return fn(ctx, roomTx{tx: tx})
	})
}

func lockRoom(ctx context.Context, tx bun.Tx, roomID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", roomID.String()).Exec(ctx)
	return err
}

func ensureNoOverlap(ctx context.Context, tx store.RoomTx, booking domain.Booking) error {
	active, err := tx.ListActiveBookings(ctx, booking.RoomID, booking.StartTime, booking.EndTime)
	if err != nil {
		return err
	}
	iv := booking.Interval()
	for _, b := range active {
		if iv.Overlaps(b.Interval()) {
			return store.ErrConflict
		}
	}
	return nil
}

func (r roomTx) GetRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	var room domain.Room
	err := r.tx.NewSelect().
		Model(&room).
		Where("id = ?", roomID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Room{}, store.ErrNotFound
		}
		return domain.Room{}, err
	}
	return room, nil
}

func (r roomTx) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.tx.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (r roomTx) ListActiveBookings(ctx context.Context, roomID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.tx.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Where("status = ?", domain.BookingStatusActive).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r roomTx) InsertBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	m := domain.Booking{
		ID:        booking.ID,
		RoomID:    booking.RoomID,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		CreatedBy: booking.CreatedBy,
		Status:    booking.Status,
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}

	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			// Backstop for the in-transaction scan; the exclusion
			// constraint holds even if the advisory lock is bypassed.
			return domain.Booking{}, store.ErrConflict
		}
		return domain.Booking{}, err
	}
	return m, nil
}

func (r roomTx) MarkBookingCancelled(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	res, err := r.tx.NewUpdate().
		Model((*domain.Booking)(nil)).
		Set("status = ?", domain.BookingStatusCancelled).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", bookingID).
		Exec(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		return domain.Booking{}, store.ErrNotFound
	}
	return r.GetBooking(ctx, bookingID)
}
