package settings

import "errors"

var (
	// ErrInvalidIdentity is returned when a required identity string is empty.
	ErrInvalidIdentity = errors.New("identity strings must be non-empty")
	// ErrInvalidPin is returned when a pin is outside the GPIO range.
	ErrInvalidPin = errors.New("pin outside GPIO range")
	// ErrPinConflict is returned when two settings share a pin.
	ErrPinConflict = errors.New("pin assigned more than once")
	// ErrLEDVariant is returned when zero or several LED variants are selected.
	ErrLEDVariant = errors.New("exactly one LED variant must be active")
	// ErrInvalidDuration is returned for non-positive or inconsistent durations.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidBrightness is returned when brightness is outside 0..255.
	ErrInvalidBrightness = errors.New("brightness must be within 0..255")
	// ErrInvalidPWM is returned when the PWM ceiling is not positive.
	ErrInvalidPWM = errors.New("PWM max must be positive")
	// ErrInvalidNetwork is returned for an unusable access point address, mask or port.
	ErrInvalidNetwork = errors.New("invalid access point network")
	// ErrInvalidTimer is returned when zero or several timer sources are selected.
	ErrInvalidTimer = errors.New("exactly one timer source must be selected")
)
