package xinput

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Temporarily binds keysyms that have no keycode to spare keycodes at the top of the keycode range.
type Remapper struct {
	km    *KMap
	slots []xproto.Keycode
	next  int

	held map[xproto.Keycode]xproto.Keysym   // keysym written to the slot
	orig map[xproto.Keycode][]xproto.Keysym // keysyms before the first write

	change ChangeFunc
}

// Sends a keycode mapping change to the server.
type ChangeFunc func(kc xproto.Keycode, perKeycode byte, kss []xproto.Keysym) error

func NewRemapper(km *KMap, nslots int) *Remapper {
	r := &Remapper{
		km:   km,
		held: map[xproto.Keycode]xproto.Keysym{},
		orig: map[xproto.Keycode][]xproto.Keysym{},
	}
	r.change = r.changeMapping
	r.setupSlots(nslots)
	return r
}

func (r *Remapper) setupSlots(n int) {
	r.slots = nil
	// the max keycode itself is not used
	for i := 1; i <= n; i++ {
		kc := int(r.km.MaxKeycode()) - i
		if kc < int(r.km.MinKeycode()) {
			break
		}
		r.slots = append(r.slots, xproto.Keycode(kc))
	}
	if r.next >= len(r.slots) {
		r.next = 0
	}
}

// Replaces the server request, used to run without a connection.
func (r *Remapper) SetChangeFunc(fn ChangeFunc) {
	r.change = fn
}

func (r *Remapper) Slots() []xproto.Keycode {
	return r.slots
}

func (r *Remapper) Held(kc xproto.Keycode) (xproto.Keysym, bool) {
	ks, ok := r.held[kc]
	return ks, ok
}

//----------

// Returns a keycode whose first column is the keysym, changing the server mapping of a spare keycode if needed.
func (r *Remapper) Remap(ks xproto.Keysym) (xproto.Keycode, error) {
	if len(r.slots) == 0 {
		return 0, fmt.Errorf("no remap slots")
	}
	for kc, ks2 := range r.held {
		if ks2 == ks {
			return kc, nil
		}
	}

	i, ok := r.freeSlot()
	if !ok {
		// all slots are bound by the layout: overwrite in rotation
		i = r.next
	}
	kc := r.slots[i]

	per := r.km.KeysymsPerKeycode()
	kss := make([]xproto.Keysym, per)
	for j := range kss {
		kss[j] = ks // same keysym on all levels and groups
	}

	if _, ok := r.orig[kc]; !ok {
		cur := r.km.KeycodeToKeysyms(kc)
		r.orig[kc] = append([]xproto.Keysym(nil), cur...)
	}
	if err := r.change(kc, byte(per), kss); err != nil {
		return 0, err
	}
	r.km.setKeysyms(kc, kss)
	r.held[kc] = ks
	r.next = (i + 1) % len(r.slots)
	return kc, nil
}

// Starting at the rotation index, the first slot that is either empty or was written by a previous remap.
func (r *Remapper) freeSlot() (int, bool) {
	n := len(r.slots)
	for k := 0; k < n; k++ {
		i := (r.next + k) % n
		kc := r.slots[i]
		if _, ok := r.held[kc]; ok || isEmpty(r.km.KeycodeToKeysyms(kc)) {
			return i, true
		}
	}
	return 0, false
}

// Forgets slots that were changed by someone else after a mapping reload.
func (r *Remapper) Sync() {
	for kc, ks := range r.held {
		if r.km.KeycodeToKeysym(kc, 0) != ks {
			delete(r.held, kc)
			delete(r.orig, kc)
		}
	}
}

// Writes back the keysyms the slots had before being remapped.
func (r *Remapper) Restore() error {
	var firstErr error
	for kc, kss := range r.orig {
		if len(kss) == 0 {
			continue
		}
		err := r.change(kc, byte(len(kss)), kss)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.km.setKeysyms(kc, kss)
		delete(r.orig, kc)
		delete(r.held, kc)
	}
	return firstErr
}

func (r *Remapper) changeMapping(kc xproto.Keycode, per byte, kss []xproto.Keysym) error {
	// checked request: waits for the server, so a following fake key event sees the new mapping
	c := xproto.ChangeKeyboardMappingChecked(r.km.conn, 1, kc, per, kss)
	return c.Check()
}

//----------

func isEmpty(kss []xproto.Keysym) bool {
	for _, ks := range kss {
		if ks != 0 {
			return false
		}
	}
	return true
}
