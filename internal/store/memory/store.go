// Package memory implements the store interfaces in process. Each
// room owns a mutex: the read-check-write sequence for a room runs
// under that room's mutex, so mutations on the same room serialize
// while distinct rooms proceed independently.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"minibook/internal/domain"
	"minibook/internal/store"
)

type Store struct {
	mu        sync.RWMutex
	rooms     map[uuid.UUID]domain.Room
	roomOrder []uuid.UUID
	roomLocks map[uuid.UUID]*sync.Mutex
	bookings  map[uuid.UUID]domain.Booking
	byRoom    map[uuid.UUID][]uuid.UUID
}

func New() *Store {
	return &Store{
		rooms:     make(map[uuid.UUID]domain.Room),
		roomLocks: make(map[uuid.UUID]*sync.Mutex),
		bookings:  make(map[uuid.UUID]domain.Booking),
		byRoom:    make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *Store) CreateRoom(ctx context.Context, room domain.Room) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rooms {
		if strings.EqualFold(existing.Name, room.Name) {
			return domain.Room{}, store.ErrRoomExists
		}
	}

	if room.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Room{}, err
		}
		room.ID = id
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	s.rooms[room.ID] = room
	s.roomOrder = append(s.roomOrder, room.ID)
	s.roomLocks[room.ID] = &sync.Mutex{}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		out = append(out, s.rooms[id])
	}
	return out, nil
}

func (s *Store) GetRoom(ctx context.Context, roomID uuid.UUID) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Room{}, store.ErrNotFound
	}
	return room, nil
}

func (s *Store) CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	lock, err := s.roomLock(booking.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}
	lock.Lock()
	defer lock.Unlock()

	iv := booking.Interval()
	s.mu.RLock()
	conflict := false
	for _, id := range s.byRoom[booking.RoomID] {
		b := s.bookings[id]
		if b.Active() && iv.Overlaps(b.Interval()) {
			conflict = true
			break
		}
	}
	s.mu.RUnlock()
	if conflict {
		return domain.Booking{}, store.ErrConflict
	}

	if booking.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Booking{}, err
		}
		booking.ID = id
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	s.mu.Lock()
	s.bookings[booking.ID] = booking
	s.byRoom[booking.RoomID] = append(s.byRoom[booking.RoomID], booking.ID)
	s.mu.Unlock()

	return booking, nil
}

func (s *Store) CancelBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	s.mu.RLock()
	booking, ok := s.bookings[bookingID]
	s.mu.RUnlock()
	if !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	if booking.Status == domain.BookingStatusCancelled {
		return booking, nil
	}

	lock, err := s.roomLock(booking.RoomID)
	if err != nil {
		return domain.Booking{}, err
	}
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	booking = s.bookings[bookingID]
	if booking.Status == domain.BookingStatusCancelled {
		return booking, nil
	}
	booking.Status = domain.BookingStatusCancelled
	booking.UpdatedAt = time.Now().UTC()
	s.bookings[bookingID] = booking
	return booking, nil
}

func (s *Store) ListBookings(ctx context.Context, roomID uuid.UUID) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.rooms[roomID]; !ok {
		return nil, store.ErrNotFound
	}

	out := make([]domain.Booking, 0, len(s.byRoom[roomID]))
	for _, id := range s.byRoom[roomID] {
		out = append(out, s.bookings[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) ListActiveBookings(ctx context.Context, roomID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	window := domain.Interval{Start: windowStart.UTC(), End: windowEnd.UTC()}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, 0)
	for _, id := range s.byRoom[roomID] {
		b := s.bookings[id]
		if b.Active() && b.Interval().Overlaps(window) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) roomLock(roomID uuid.UUID) (*sync.Mutex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lock, ok := s.roomLocks[roomID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return lock, nil
}
