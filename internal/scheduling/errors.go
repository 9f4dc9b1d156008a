package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced doctor, patient or
	// appointment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the actor lacks the role or ownership
	// an operation requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedInput is returned for missing or unparseable booking fields.
	ErrMalformedInput = errors.New("malformed input")
	// ErrSlotConflict matches every *SlotConflictError.
	ErrSlotConflict = errors.New("slot conflict")
	// ErrInvalidTransition is returned when a status change would leave a
	// terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrBookingBusy is returned when another booking for the same doctor
	// and date held the lock for the whole wait. Retrying may succeed.
	ErrBookingBusy = errors.New("booking busy")
)

// SlotConflictError is returned by Book when the requested slot is refused.
type SlotConflictError struct {
	Kind ConflictKind
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflict: %s", e.Kind)
}

// Is lets errors.Is(err, ErrSlotConflict) match any conflict kind.
func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}

// ConflictKindOf extracts the conflict kind from err, or ConflictNone.
func ConflictKindOf(err error) ConflictKind {
	var conflict *SlotConflictError
	if errors.As(err, &conflict) {
		return conflict.Kind
	}
	return ConflictNone
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
