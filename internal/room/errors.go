package room

import "errors"

var (
	errNotWaiting = errors.New("room: game already started")
	errWrongPhase = errors.New("room: operation invalid in current phase")
	errNotHost    = errors.New("room: only the host may perform this action")
	errRoomFull   = errors.New("room: room is full")
	errNotFound   = errors.New("room: not found")
)
