package errors

import "fmt"

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrNameTaken           = fmt.Errorf("participant name already taken")
	ErrParticipantNotFound = fmt.Errorf("participant not found")
	ErrMessageNotFound     = fmt.Errorf("message not found")
	ErrNotMessageOwner     = fmt.Errorf("requester is not the message owner")
)
