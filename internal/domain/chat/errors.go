package chat

import (
	"errors"
	"fmt"
	"time"

	"zonechat/internal/domain/moderation"
)

var (
	ErrNotFound            = errors.New("message not found")
	ErrInvalidContentType  = errors.New("invalid content type")
	ErrEmptyContent        = errors.New("empty content")
	ErrAudioTooLong        = errors.New("audio duration exceeds limit")
	ErrMessageLimitReached = errors.New("message limit reached")
	ErrWrongZone           = errors.New("session does not belong to zone")
)

// RateLimitedError reports a send inside the per-type cooldown window.
// WaitSeconds is the ceiling of the remaining wait, always > 0.
type RateLimitedError struct {
	WaitSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry in %ds", e.WaitSeconds)
}

// SilencedError reports a send while the session is silenced
type SilencedError struct {
	Until time.Time
}

func (e *SilencedError) Error() string {
	return fmt.Sprintf("session silenced until %s", e.Until.Format(time.RFC3339))
}

// ExpelledError reports a send or admission while the session is expelled
type ExpelledError struct {
	Until time.Time
}

func (e *ExpelledError) Error() string {
	return fmt.Sprintf("session expelled until %s", e.Until.Format(time.RFC3339))
}

// BlockedError reports content rejected by the moderator. Only the coarse
// reason is carried; the matched pattern stays internal.
type BlockedError struct {
	Reason moderation.Reason
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("content blocked: %s", e.Reason)
}
