package virtkey

import "github.com/pkg/errors"

var (
	ErrNotX           = errors.New("not an X display")
	ErrNoXkb          = errors.New("xkb extension not available")
	ErrNoGroupNames   = errors.New("no group names available")
	ErrNoSymbolsNames = errors.New("no symbols names available")
	ErrNoRulesNames   = errors.New("no rules names available")
	ErrKeycodeRange   = errors.New("keycode out of range")
	ErrNoFreeSlot     = errors.New("no keycode available for remapping")
	ErrClosed         = errors.New("virtkey closed")
)

// Reports whether err, or any error it wraps, is target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
