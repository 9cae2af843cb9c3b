package virtkey

import (
	"fmt"
	"testing"

	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModMask(t *testing.T) {
	assert.Equal(t, "none", ModMask(0).String())
	assert.Equal(t, "shift|mod5", (ModShift | Mod5).String())

	type pair struct {
		s string
		m ModMask
	}
	pairs := []pair{
		{"shift", ModShift},
		{"Shift|Ctrl", ModShift | ModControl},
		{"alt,altgr", Mod1 | Mod5},
		{"super+caps", Mod4 | ModLock},
		{"0x81", ModShift | Mod5},
		{"5", ModShift | ModControl},
		{"", 0},
		{"none", 0},
		{"none|shift", ModShift},
	}
	for _, p := range pairs {
		m, err := ParseModMask(p.s)
		require.NoError(t, err, p.s)
		assert.Equal(t, p.m, m, p.s)
	}

	_, err := ParseModMask("hyper")
	assert.Error(t, err)
	_, err = ParseModMask("256")
	assert.Error(t, err)
	_, err = ParseModMask("meta")
	assert.Error(t, err) // no default row

	// the string form parses back
	for _, m := range []ModMask{0, ModShift | Mod5, 0xff} {
		m2, err := ParseModMask(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, m2)
	}
}

func TestParseModMaskFor(t *testing.T) {
	f := newFake()
	m, err := ParseModMaskFor(f, "altgr|super")
	require.NoError(t, err)
	assert.Equal(t, Mod5|Mod4, m)

	mi := &ModifierIndices{Shift: 0, Alt: 3, Meta: 5, NumLock: 4, AltGr: 6, Super: -1}
	fi := &fakeIndexer{fake: f, mi: mi}
	m, err = ParseModMaskFor(fi, "altgr|meta|shift")
	require.NoError(t, err)
	assert.Equal(t, Mod4|Mod3|ModShift, m)
	_, err = ParseModMaskFor(fi, "super")
	assert.Error(t, err)
	assert.Equal(t, "shift=0 alt=3 meta=5 numlock=4 altgr=6 super=-1", mi.String())

	fi.err = errors.New("closed")
	_, err = ParseModMaskFor(fi, "shift")
	assert.Error(t, err)
}

func TestRulesNamesStrings(t *testing.T) {
	rn := &RulesNames{Rules: "evdev", Model: "pc105", Layout: "us,pt", Options: "grp:alt_shift_toggle"}
	assert.Equal(t, []string{"evdev", "pc105", "us,pt", "", "grp:alt_shift_toggle"}, rn.Strings())
}

func TestRegistry(t *testing.T) {
	var got *Options
	Register("fake", func(opt *Options) (Virtkey, error) {
		got = opt
		return newFake(), nil
	})
	Register("broken", func(opt *Options) (Virtkey, error) {
		return nil, ErrNotX
	})
	assert.Subset(t, Backends(), []string{"broken", "fake"})

	vk, err := Open("fake", nil)
	require.NoError(t, err)
	assert.NotNil(t, vk)
	assert.Equal(t, DefaultRemapSlots, got.RemapSlots)
	assert.NotNil(t, got.Logger)

	_, err = Open("broken", &Options{RemapSlots: 3})
	assert.True(t, Is(err, ErrNotX))
	assert.Contains(t, err.Error(), "broken backend")

	_, err = Open("nope", nil)
	assert.Error(t, err)
}

func TestSendKeysym(t *testing.T) {
	f := newFake()
	require.NoError(t, SendKeysym(f, 'A'))
	assert.Equal(t, []string{"latch shift", "press 38", "release 38"}, f.events)

	f.events = nil
	require.NoError(t, SendKeysym(f, 'a'))
	assert.Equal(t, []string{"press 38", "release 38"}, f.events)

	ft := &fakeTapper{newFake()}
	require.NoError(t, SendKeysym(ft, 'A'))
	assert.Equal(t, []string{"tap 38 shift"}, ft.events)

	f.events = nil
	err := SendKeysym(f, 0x20ac)
	assert.True(t, Is(err, ErrNoFreeSlot))
	assert.Empty(t, f.events)
}

func TestSendString(t *testing.T) {
	f := newFake()
	require.NoError(t, SendString(f, "aA"))
	assert.Equal(t, []string{"press 38", "release 38", "latch shift", "press 38", "release 38"}, f.events)

	err := SendString(f, "a€")
	assert.True(t, Is(err, ErrNoFreeSlot))
	assert.Contains(t, err.Error(), `send '€'`)
}

//----------

type fake struct {
	events []string
}

func newFake() *fake { return &fake{} }

func (f *fake) Reload() error                     { return nil }
func (f *fake) Close() error                      { return nil }
func (f *fake) CurrentGroup() (int, error)        { return 0, nil }
func (f *fake) CurrentGroupName() (string, error) { return "English (US)", nil }
func (f *fake) LabelFromKeycode(kc Keycode, mods ModMask, group int) (string, error) {
	ks, err := f.KeysymFromKeycode(kc, mods, group)
	return keysym.Label(ks), err
}
func (f *fake) KeysymFromKeycode(kc Keycode, mods ModMask, group int) (keysym.Keysym, error) {
	if kc != 38 {
		return keysym.NoSymbol, nil
	}
	if mods&ModShift != 0 {
		return 'A', nil
	}
	return 'a', nil
}
func (f *fake) KeycodeFromKeysym(ks keysym.Keysym) (Keycode, ModMask, error) {
	switch ks {
	case 'a':
		return 38, 0, nil
	case 'A':
		return 38, ModShift, nil
	}
	return 0, 0, errors.Wrap(ErrNoFreeSlot, "fake")
}
func (f *fake) RulesNames() (*RulesNames, error)  { return &RulesNames{Rules: "evdev"}, nil }
func (f *fake) LayoutSymbols() (string, error)    { return "pc+us+inet(evdev)", nil }
func (f *fake) SetModifiers(mods ModMask, lock, press bool) error {
	s := "latch"
	if lock {
		s = "lock"
	}
	if !press {
		s = "un" + s
	}
	f.events = append(f.events, fmt.Sprintf("%v %v", s, mods))
	return nil
}
func (f *fake) SendKeycode(kc Keycode, press bool) error {
	s := "press"
	if !press {
		s = "release"
	}
	f.events = append(f.events, fmt.Sprintf("%v %v", s, kc))
	return nil
}

type fakeTapper struct {
	*fake
}

func (f *fakeTapper) TapKeycode(kc Keycode, mods ModMask) error {
	f.events = append(f.events, fmt.Sprintf("tap %v %v", kc, mods))
	return nil
}

type fakeIndexer struct {
	*fake
	mi  *ModifierIndices
	err error
}

func (f *fakeIndexer) ModifierIndices() (*ModifierIndices, error) {
	return f.mi, f.err
}
