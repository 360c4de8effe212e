package discovery

import (
	"errors"
	"fmt"
)

var (
	// ErrForbiddenComponent matches every *ForbiddenComponentError via errors.Is.
	ErrForbiddenComponent = errors.New("component can not be discovered")

	// ErrConfigRequired is returned when LoadPlatform is handed a nil or empty
	// host config. It signals a caller bug.
	ErrConfigRequired = errors.New("discovery: the real host config is required")

	// ErrComponentRequired is returned when LoadPlatform is called without a component.
	ErrComponentRequired = errors.New("discovery: component is required")

	// ErrCalledFromLoop is returned when an awaiting entry point is invoked
	// with a loop context. Use the Schedule form there.
	ErrCalledFromLoop = errors.New("discovery: awaiting call made on the loop; use the Schedule form")
)

// ForbiddenComponentError reports an attempt to discover a deny-listed component.
type ForbiddenComponentError struct {
	Component string
}

func (e *ForbiddenComponentError) Error() string {
	return fmt.Sprintf("cannot discover the %s component", e.Component)
}

func (e *ForbiddenComponentError) Is(target error) bool { return target == ErrForbiddenComponent }

// IsForbiddenComponent reports whether err is a deny-list rejection.
func IsForbiddenComponent(err error) bool {
	return errors.Is(err, ErrForbiddenComponent)
}
