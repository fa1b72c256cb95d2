package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrDuplicateName       = fmt.Errorf("a participant with this name is already online")
	ErrParticipantNotFound = fmt.Errorf("participant not found")
	ErrStoreUnavailable    = fmt.Errorf("store unavailable")
	ErrMissingIdentity     = fmt.Errorf("missing identity header")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
)
