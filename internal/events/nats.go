// Package events publishes booking lifecycle events for downstream
// consumers (notification workers, audit). Publishing is best effort:
// a failed publish is logged, never surfaced to the booking caller.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"minibook/internal/domain"
)

const (
	subjectCreated   = "booking.created"
	subjectCancelled = "booking.cancelled"
)

type NATSNotifier struct {
	conn   *nats.Conn
	prefix string
	log    *slog.Logger
}

func NewNATSNotifier(url, subjectPrefix string, log *slog.Logger) (*NATSNotifier, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, err := nats.Connect(url, nats.Name("minibook-server"))
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{
		conn:   conn,
		prefix: subjectPrefix,
		log:    log.With(slog.String("component", "events.nats")),
	}, nil
}

type bookingEvent struct {
	BookingID  string    `json:"bookingId"`
	RoomID     string    `json:"roomId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	CreatedBy  string    `json:"createdBy"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}

func (n *NATSNotifier) BookingCreated(ctx context.Context, booking domain.Booking) {
	n.publish(subjectCreated, booking)
}

func (n *NATSNotifier) BookingCancelled(ctx context.Context, booking domain.Booking) {
	n.publish(subjectCancelled, booking)
}

func (n *NATSNotifier) publish(subject string, booking domain.Booking) {
	if n.prefix != "" {
		subject = n.prefix + "." + subject
	}

	payload, err := json.Marshal(bookingEvent{
		BookingID:  booking.ID.String(),
		RoomID:     booking.RoomID.String(),
		StartTime:  booking.StartTime,
		EndTime:    booking.EndTime,
		CreatedBy:  booking.CreatedBy,
		Status:     string(booking.Status),
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		n.log.Warn("event encode failed", slog.Any("err", err), slog.String("subject", subject))
		return
	}

	if err := n.conn.Publish(subject, payload); err != nil {
		n.log.Warn(
			"event publish failed",
			slog.Any("err", err),
			slog.String("subject", subject),
			slog.String("booking_id", booking.ID.String()),
		)
	}
}

func (n *NATSNotifier) Close() {
	if n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
	}
}
