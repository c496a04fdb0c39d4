// Package location resolves the user's current coordinate from a platform
// location provider with a bounded wait and a cached recent fix.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinefind/geo"
)

// Reason classifies a failed resolution.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonDenied
	ReasonUnavailable
	ReasonTimedOut
	ReasonUnsupported
)

var reasonNames = map[Reason]string{
	ReasonUnknown:     "unknown",
	ReasonDenied:      "denied",
	ReasonUnavailable: "unavailable",
	ReasonTimedOut:    "timeout",
	ReasonUnsupported: "unsupported",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return reasonNames[ReasonUnknown]
}

// ParseReason maps a reason name, as reported by browsers through the API,
// back to a Reason. Unrecognised names map to ReasonUnknown.
func ParseReason(s string) Reason {
	for r, name := range reasonNames {
		if name == s {
			return r
		}
	}
	return ReasonUnknown
}

// Message returns the user-facing text for a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonDenied:
		return "Location access denied by user."
	case ReasonUnavailable:
		return "Location information is unavailable."
	case ReasonTimedOut:
		return "Location request timed out."
	case ReasonUnsupported:
		return "Geolocation is not supported on this platform."
	default:
		return "Unable to retrieve your location."
	}
}

// Error is a failed resolution.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("location %s: %v", e.Reason, e.Err)
	}
	return "location " + e.Reason.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by reason, so errors.Is(err, ErrDenied) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Err == nil && t.Reason == e.Reason
}

var (
	ErrDenied      = &Error{Reason: ReasonDenied}
	ErrUnavailable = &Error{Reason: ReasonUnavailable}
	ErrTimedOut    = &Error{Reason: ReasonTimedOut}
	ErrUnsupported = &Error{Reason: ReasonUnsupported}
)

// ReasonOf extracts the reason of a resolution error.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimedOut
	}
	return ReasonUnknown
}

// Message returns the user-facing text for a resolution error.
func Message(err error) string {
	return ReasonOf(err).Message()
}

// Options mirror the knobs of a one-shot position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge is how old a cached fix may be and still be returned
	// without a new request.
	MaximumAge time.Duration
}

// DefaultOptions asks for a high accuracy fix within 10s, accepting one up
// to five minutes old.
var DefaultOptions = Options{
	HighAccuracy: true,
	Timeout:      10 * time.Second,
	MaximumAge:   5 * time.Minute,
}

// Fix is a position reported by a provider.
type Fix struct {
	Coordinate geo.Coordinate
	Timestamp  time.Time
}

// Provider is a platform location service. Implementations return an *Error
// with a specific reason when they can, and must honour ctx.
type Provider interface {
	Name() string
	CurrentPosition(ctx context.Context, opts Options) (Fix, error)
}
