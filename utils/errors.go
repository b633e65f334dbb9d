package utils

import (
	"github.com/pkg/errors"
)

// NewDependencyNotFoundError is used when a named piece of hardware is missing.
func NewDependencyNotFoundError(kind, name string) error {
	return errors.Errorf("%s %q not found", kind, name)
}
