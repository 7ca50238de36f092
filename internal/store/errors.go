package store

import "errors"

var (
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrRoomExists = errors.New("room name already exists")
)
