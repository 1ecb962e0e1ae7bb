package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrWorkerTerminal     = fmt.Errorf("worker cannot be restarted")
	ErrInvalidPacket      = fmt.Errorf("invalid packet")
	ErrUnresolvableClient = fmt.Errorf("packet has no resolvable client")
	ErrMissingEvent       = fmt.Errorf("packet has no event name")
	ErrAlreadyStarted     = fmt.Errorf("relay already started")
	ErrNotStarted         = fmt.Errorf("relay not started")
	ErrSinkFull           = fmt.Errorf("connection send buffer full")
	ErrSinkClosed         = fmt.Errorf("connection closed")
	ErrNotWhitelisted     = fmt.Errorf("topic is not whitelisted")
)
