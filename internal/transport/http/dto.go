package http

import (
	"time"

	"minibook/internal/domain"
)

type createRoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type roomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type createBookingRequest struct {
	RoomID    string    `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedBy string    `json:"createdBy"`
}

type bookingResponse struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedBy string    `json:"createdBy"`
	Status    string    `json:"status"`
}

type freeSlotResponse struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type errorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

func toRoomResponse(r domain.Room) roomResponse {
	return roomResponse{
		ID:       r.ID.String(),
		Name:     r.Name,
		Capacity: r.Capacity,
	}
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:        b.ID.String(),
		RoomID:    b.RoomID.String(),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		CreatedBy: b.CreatedBy,
		Status:    string(b.Status),
	}
}

func toFreeSlotResponses(ivs []domain.Interval) []freeSlotResponse {
	out := make([]freeSlotResponse, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, freeSlotResponse{StartTime: iv.Start, EndTime: iv.End})
	}
	return out
}
