package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/model"
)

const (
	// Size limits
	MaxKeySize   = 1024             // 1 KB
	MaxValueSize = 10 * 1024 * 1024 // 10 MB

	// Vector clock limits
	MaxVectorClockEntries = 1000
	MaxClockComponentSize = 128
)

// Validator validates writes before they reach the store
type Validator struct {
	maxKeySize   int
	maxValueSize int
}

// NewValidator creates a new validator with default limits
func NewValidator() *Validator {
	return &Validator{
		maxKeySize:   MaxKeySize,
		maxValueSize: MaxValueSize,
	}
}

// NewValidatorWithLimits creates a validator with custom limits
func NewValidatorWithLimits(maxKeySize, maxValueSize int) *Validator {
	return &Validator{
		maxKeySize:   maxKeySize,
		maxValueSize: maxValueSize,
	}
}

// ValidateWrite validates a Put or Replicate
func (v *Validator) ValidateWrite(key, value string, vectorClock model.VectorClock) error {
	if err := v.ValidateKey(key); err != nil {
		return err
	}
	if err := v.ValidateValue(value); err != nil {
		return err
	}
	return v.ValidateVectorClock(vectorClock)
}

// ValidateKey validates a key
func (v *Validator) ValidateKey(key string) error {
	if key == "" {
		return errors.InvalidKey(key, "key cannot be empty")
	}

	if len(key) > v.maxKeySize {
		return errors.KeyTooLarge(len(key), v.maxKeySize)
	}

	// Null bytes are control characters too
	for _, r := range key {
		if unicode.IsControl(r) && r != '\t' && r != '\n' {
			return errors.InvalidKey(key, "key cannot contain control characters")
		}
	}

	return nil
}

// ValidateValue validates a value
func (v *Validator) ValidateValue(value string) error {
	if len(value) > v.maxValueSize {
		return errors.ValueTooLarge(len(value), v.maxValueSize)
	}
	return nil
}

// ValidateVectorClock validates a vector clock
func (v *Validator) ValidateVectorClock(vc model.VectorClock) error {
	if len(vc) > MaxVectorClockEntries {
		return errors.InvalidArgument(
			fmt.Sprintf("vector clock has too many entries: %d > %d", len(vc), MaxVectorClockEntries),
			nil,
		)
	}

	for component := range vc {
		if component == "" {
			return errors.InvalidArgument("vector clock has an empty component name", nil)
		}
		if len(component) > MaxClockComponentSize {
			return errors.InvalidArgument(
				fmt.Sprintf("vector clock component exceeds maximum size of %d", MaxClockComponentSize),
				nil,
			)
		}
		if strings.Contains(component, "\x00") {
			return errors.InvalidArgument("vector clock component contains null bytes", nil)
		}
	}

	return nil
}
