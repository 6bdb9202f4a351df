package broadcast

import "errors"

var (
	ErrRegistryClosed = errors.New("connection registry is closed")
	ErrRoomRequired   = errors.New("room name is required")
)
