package core

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidClassification = errors.New("invalid classification")
)

// NewClassificationError describes why a classification was rejected
func NewClassificationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidClassification, fmt.Sprintf(format, args...))
}

// IsClassificationError reports whether err stems from a rejected classification
func IsClassificationError(err error) bool {
	return errors.Is(err, ErrInvalidClassification)
}
