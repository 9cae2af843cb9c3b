// Keyboard backend for on-screen keyboards: layout queries, keycode/keysym translation, keysym synthesis by remapping spare keycodes, and modifier lock/latch.
package virtkey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Raw hardware key number.
type Keycode uint8

// Core modifier bits.
type ModMask uint8

const (
	ModShift ModMask = 1 << iota
	ModLock
	ModControl
	Mod1 // usually alt
	Mod2 // usually num lock
	Mod3
	Mod4 // usually super
	Mod5 // usually altgr
)

var modNames = []string{"shift", "lock", "control", "mod1", "mod2", "mod3", "mod4", "mod5"}

func (m ModMask) String() string {
	u := []string{}
	for i, name := range modNames {
		if m&(1<<uint(i)) != 0 {
			u = append(u, name)
		}
	}
	if len(u) == 0 {
		return "none"
	}
	return strings.Join(u, "|")
}

// Parses "shift|mod1", "shift,control", "none" or a number.
// The alt, altgr, super, meta and numlock names use the default rows.
func ParseModMask(s string) (ModMask, error) {
	return DefaultModifierIndices().ParseModMask(s)
}

// Like ParseModMask, with the rows detected by the backend if it is a ModifierIndexer.
func ParseModMaskFor(vk Virtkey, s string) (ModMask, error) {
	mi := DefaultModifierIndices()
	if mx, ok := vk.(ModifierIndexer); ok {
		mi2, err := mx.ModifierIndices()
		if err != nil {
			return 0, err
		}
		if mi2 != nil {
			mi = mi2
		}
	}
	return mi.ParseModMask(s)
}

//----------

// Modifier rows (bit positions) of keys that can move between rows, -1 if not found.
type ModifierIndices struct {
	Shift   int
	Alt     int
	Meta    int
	NumLock int
	AltGr   int
	Super   int
}

func DefaultModifierIndices() *ModifierIndices {
	return &ModifierIndices{Shift: 0, Alt: 3, Meta: -1, NumLock: 4, AltGr: 7, Super: 6}
}

// Implemented by backends that detect the modifier rows from the keyboard mapping.
type ModifierIndexer interface {
	ModifierIndices() (*ModifierIndices, error)
}

func (mi *ModifierIndices) String() string {
	return fmt.Sprintf("shift=%v alt=%v meta=%v numlock=%v altgr=%v super=%v",
		mi.Shift, mi.Alt, mi.Meta, mi.NumLock, mi.AltGr, mi.Super)
}

func (mi *ModifierIndices) ParseModMask(s string) (ModMask, error) {
	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return ModMask(v), nil
	}
	aliases := map[string]int{
		"alt":     mi.Alt,
		"altgr":   mi.AltGr,
		"super":   mi.Super,
		"meta":    mi.Meta,
		"numlock": mi.NumLock,
	}
	m := ModMask(0)
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' || r == '+' }) {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "none":
			continue
		case "ctrl":
			f = "control"
		case "caps":
			f = "lock"
		}
		if i, ok := aliases[f]; ok {
			if i < 0 || i >= len(modNames) {
				return 0, fmt.Errorf("modifier not mapped: %q", f)
			}
			m |= 1 << uint(i)
			continue
		}
		found := false
		for i, name := range modNames {
			if name == f {
				m |= 1 << uint(i)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown modifier: %q", f)
		}
	}
	return m, nil
}

//----------

// Contents of the _XKB_RULES_NAMES root window property.
type RulesNames struct {
	Rules   string
	Model   string
	Layout  string
	Variant string
	Options string
}

func (rn *RulesNames) Strings() []string {
	return []string{rn.Rules, rn.Model, rn.Layout, rn.Variant, rn.Options}
}

//----------

type Virtkey interface {
	// Drops the cached keyboard description and reads it again.
	Reload() error
	// Restores remapped keycodes and releases the display connection.
	Close() error

	CurrentGroup() (int, error)
	CurrentGroupName() (string, error)

	LabelFromKeycode(kc Keycode, mods ModMask, group int) (string, error)
	KeysymFromKeycode(kc Keycode, mods ModMask, group int) (keysym.Keysym, error)
	// Returns a keycode that produces the keysym, and the modifiers that need to be held. May remap a spare keycode.
	KeycodeFromKeysym(ks keysym.Keysym) (Keycode, ModMask, error)

	RulesNames() (*RulesNames, error)
	// Plus-sign separated string of all keyboard layouts.
	LayoutSymbols() (string, error)

	// Locks or latches the modifiers. Press sets them, release clears them.
	SetModifiers(mods ModMask, lock, press bool) error
	// Synthetic key event.
	SendKeycode(kc Keycode, press bool) error
}

//----------

type Options struct {
	Display    string // empty uses $DISPLAY
	RemapSlots int    // spare keycodes used for remapping; zero uses the default
	Labels     map[keysym.Keysym]string
	Logger     *logrus.Logger
}

const DefaultRemapSlots = 10

func (opt *Options) Normalize() {
	if opt.RemapSlots <= 0 {
		opt.RemapSlots = DefaultRemapSlots
	}
	if opt.Logger == nil {
		opt.Logger = logrus.StandardLogger()
	}
}

//----------

type OpenFunc func(*Options) (Virtkey, error)

var backends = struct {
	sync.Mutex
	m map[string]OpenFunc
}{m: map[string]OpenFunc{}}

func Register(name string, fn OpenFunc) {
	backends.Lock()
	defer backends.Unlock()
	backends.m[name] = fn
}

func Backends() []string {
	backends.Lock()
	defer backends.Unlock()
	u := []string{}
	for k := range backends.m {
		u = append(u, k)
	}
	sort.Strings(u)
	return u
}

func Open(name string, opt *Options) (Virtkey, error) {
	backends.Lock()
	fn, ok := backends.m[name]
	backends.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend: %q", name)
	}
	if opt == nil {
		opt = &Options{}
	}
	opt.Normalize()
	vk, err := fn(opt)
	if err != nil {
		return nil, errors.Wrapf(err, "%v backend", name)
	}
	return vk, nil
}

//----------

// Implemented by backends that can hold the modifier keys around a key tap.
type KeyTapper interface {
	TapKeycode(kc Keycode, mods ModMask) error
}

// Finds (or remaps) a keycode for the keysym and sends a press and a release.
// Without a KeyTapper, the needed modifiers are latched for the key.
func SendKeysym(vk Virtkey, ks keysym.Keysym) error {
	kc, mods, err := vk.KeycodeFromKeysym(ks)
	if err != nil {
		return err
	}
	if t, ok := vk.(KeyTapper); ok {
		return t.TapKeycode(kc, mods)
	}
	if mods != 0 {
		if err := vk.SetModifiers(mods, false, true); err != nil {
			return err
		}
	}
	if err := vk.SendKeycode(kc, true); err != nil {
		return err
	}
	return vk.SendKeycode(kc, false)
}

// Sends each rune of the string as a keysym.
func SendString(vk Virtkey, s string) error {
	for _, ru := range s {
		ks := keysym.FromRune(ru)
		if err := SendKeysym(vk, ks); err != nil {
			return errors.Wrapf(err, "send %q", ru)
		}
	}
	return nil
}
