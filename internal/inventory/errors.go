package inventory

import (
	"errors"
	"fmt"
)

// ValidationError is returned when an input is rejected: a freshness out of
// range in AddItem, or a malformed recipient in Distribute.
// Nothing is mutated when it is returned.
type ValidationError struct {
	Field  string // Name of the rejected input ("freshness", "recipients[1]")
	Value  any    // The rejected value
	Min    int    // Inclusive lower bound, for range checks
	Max    int    // Inclusive upper bound, for range checks
	Reason string // Set for non-range checks; replaces the bounds message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Field + " " + e.Reason
	}
	return fmt.Sprintf("%s must be between %d and %d", e.Field, e.Min, e.Max)
}

// InsufficientInventoryError is returned by Distribute when there are more
// recipients than items. Nothing is mutated when it is returned.
type InsufficientInventoryError struct {
	Requested int // Number of recipients
	Available int // Number of items on hand
}

// Error implements the error interface.
func (e *InsufficientInventoryError) Error() string {
	return "not enough items for all recipients"
}

// Shortage returns how many more items would have been needed.
func (e *InsufficientInventoryError) Shortage() int {
	return e.Requested - e.Available
}

// IntegrityError is returned by VerifyLog when the hash chain is broken.
type IntegrityError struct {
	Seq    int64  // Seq of the first entry that failed verification
	Reason string // What did not match
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("action log integrity: entry seq=%d: %s", e.Seq, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInsufficientInventory reports whether err is (or wraps) an
// InsufficientInventoryError.
func IsInsufficientInventory(err error) bool {
	var ie *InsufficientInventoryError
	return errors.As(err, &ie)
}

// IsIntegrityError reports whether err is (or wraps) an IntegrityError.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
