package utils

import (
	"github.com/pkg/errors"
)

// NewMissingDependencyError is used when a required collaborator was not supplied.
func NewMissingDependencyError(name string) error {
	return errors.Errorf("missing required dependency %q", name)
}

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError(expected interface{}, actual interface{}) error {
	return errors.Errorf("expected %T but got %T", expected, actual)
}
