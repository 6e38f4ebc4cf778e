package validation

import (
	"errors"
	"fmt"
)

// MsgNoURLs is the client-facing message for an empty or missing URL list.
const MsgNoURLs = "No video URLs provided"

// Validator checks analyze requests before any URL is processed.
type Validator struct {
	maxURLs int
}

// New returns a validator that accepts at most maxURLs per batch. A
// non-positive maxURLs disables the size check.
func New(maxURLs int) *Validator {
	return &Validator{maxURLs: maxURLs}
}

// ValidateURLs checks a batch before any work is started.
func (v *Validator) ValidateURLs(urls []string) error {
	if len(urls) == 0 {
		return errors.New(MsgNoURLs)
	}

	if v.maxURLs > 0 && len(urls) > v.maxURLs {
		return fmt.Errorf("too many video URLs (max %d, got %d)", v.maxURLs, len(urls))
	}

	return nil
}
