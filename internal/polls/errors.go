package polls

import "errors"

var (
	ErrPollNotFound           = errors.New("poll not found")
	ErrPollClosed             = errors.New("poll is closed")
	ErrQuorumRefused          = errors.New("at least one affirmative vote is required to close the poll")
	ErrPersistenceUnavailable = errors.New("poll store unavailable")
	ErrMessagingFailed        = errors.New("messaging failed")
	ErrUnknownPurpose         = errors.New("unknown poll purpose")
)
