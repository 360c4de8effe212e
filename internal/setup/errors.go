package setup

import "errors"

var (
	ErrComponentExists  = errors.New("component already registered")
	ErrInvalidComponent = errors.New("invalid component")
)
