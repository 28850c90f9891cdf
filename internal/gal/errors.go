package gal

import "github.com/pkg/errors"

// Error kinds raised while building a blueprint or filling fuses.
// Callers wrap them with pin names and limits via errors.Wrapf; use
// errors.Cause to recover the kind.
var (
	ErrUnknownChip  = errors.New("unknown device type")
	ErrUndefinedPin = errors.New("undefined pin")
	ErrBadSuffix    = errors.New("unsupported equation type")
	ErrNotAnOutput  = errors.New("not an output pin")
	ErrModeConflict = errors.New("mode conflict")
	ErrTooManyTerms = errors.New("too many product terms")
	ErrBadFeedback  = errors.New("no feedback path")
	ErrPinList      = errors.New("pin list mismatch")
	ErrNoClock      = errors.New("registered output has no clock")
	ErrSoloPower    = errors.New("VCC/GND must be the whole equation")
	ErrPowerPin     = errors.New("power pin used in equation")
)
