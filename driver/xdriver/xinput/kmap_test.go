package xinput

import (
	"errors"
	"fmt"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKMapLookup(t *testing.T) {
	km := newTestKMap(t, false)

	assert.Equal(t, xproto.Keysym('a'), km.KeycodeToKeysym(10, 0))
	assert.Equal(t, xproto.Keysym('A'), km.KeycodeToKeysym(10, 1))
	assert.Equal(t, xproto.Keysym(0), km.KeycodeToKeysym(10, 9))
	assert.Nil(t, km.KeycodeToKeysyms(7))
	assert.Nil(t, km.KeycodeToKeysyms(21))

	assert.Equal(t, xproto.Keycode(10), km.KeysymToKeycode('A'))
	assert.Equal(t, xproto.Keycode(11), km.KeysymToKeycode('@'))
	assert.Equal(t, xproto.Keycode(0), km.KeysymToKeycode(0x20ac))
	assert.Equal(t, 4, km.KeysymsPerKeycode())
}

func TestKMapModifiers(t *testing.T) {
	km := newTestKMap(t, false)
	assert.Equal(t, xproto.Keycode(9), km.ModifierKeycode(ShiftMapIndex))
	assert.Equal(t, xproto.Keycode(0), km.ModifierKeycode(LockMapIndex))
	assert.Equal(t, xproto.Keycode(12), km.ModifierKeycode(Mod1MapIndex))
	assert.Equal(t, xproto.Keycode(0), km.ModifierKeycode(NumModIndices))

	assert.Equal(t, ShiftMapIndex, km.ShiftIndex)
	assert.Equal(t, Mod1MapIndex, km.AltIndex)
	assert.Equal(t, -1, km.MetaIndex)
	assert.Equal(t, Mod2MapIndex, km.NumLockIndex())
	assert.Equal(t, Mod4MapIndex, km.SuperIndex())
	assert.Equal(t, Mod5MapIndex, km.AltGrIndex())

	assert.Equal(t, &virtkey.ModifierIndices{Shift: 0, Alt: 3, Meta: -1, NumLock: 4, AltGr: 7, Super: 6}, km.ModifierIndices())

	km = newTestKMap(t, true)
	assert.Equal(t, Mod3MapIndex, km.MetaIndex)
	assert.Equal(t, Mod3MapIndex, km.ModifierIndices().Meta)
}

func TestKMapMovedModifiers(t *testing.T) {
	// altgr on mod3, super on mod5
	type KS = xproto.Keysym
	min, max, per := xproto.Keycode(8), xproto.Keycode(11), 2
	kss := []KS{
		KS(keysym.ShiftL), 0,
		KS(keysym.AltL), 0,
		KS(keysym.ISOLevel3Shift), 0,
		KS(keysym.SuperL), 0,
	}
	reply := &xproto.GetKeyboardMappingReply{KeysymsPerKeycode: byte(per), Keysyms: kss}
	modMap := &xproto.GetModifierMappingReply{
		KeycodesPerModifier: 1,
		Keycodes:            []xproto.Keycode{8, 0, 0, 9, 0, 10, 0, 11},
	}
	km, err := NewKMapFromReplies(nil, min, max, reply, modMap)
	require.NoError(t, err)

	mi := km.ModifierIndices()
	assert.Equal(t, Mod3MapIndex, mi.AltGr)
	assert.Equal(t, Mod5MapIndex, mi.Super)
	m, err := mi.ParseModMask("altgr|super|alt")
	require.NoError(t, err)
	assert.Equal(t, virtkey.Mod3|virtkey.Mod5|virtkey.Mod1, m)

	_, err = NewKMapFromReplies(nil, min, max, &xproto.GetKeyboardMappingReply{KeysymsPerKeycode: 2}, modMap)
	assert.Error(t, err)
}

func TestKMapShortMapping(t *testing.T) {
	km := &KMap{}
	reply := &xproto.GetKeyboardMappingReply{KeysymsPerKeycode: 2, Keysyms: make([]xproto.Keysym, 3)}
	assert.Error(t, km.setKeyboardMapping(8, 9, reply))
	reply = &xproto.GetKeyboardMappingReply{KeysymsPerKeycode: 0}
	assert.Error(t, km.setKeyboardMapping(8, 9, reply))
}

func TestKMapTableString(t *testing.T) {
	km := newTestKMap(t, false)
	s := km.TableString()
	assert.Contains(t, s, "kc=10:")
	assert.Contains(t, s, `("a",a)`)
	assert.NotContains(t, s, "kc=8:")
}

//----------

func TestRemapper(t *testing.T) {
	km := newTestKMap(t, false)
	r := NewRemapper(km, 3)
	assert.Equal(t, []xproto.Keycode{19, 18, 17}, r.Slots())

	changes := []string{}
	r.change = func(kc xproto.Keycode, per byte, kss []xproto.Keysym) error {
		changes = append(changes, fmt.Sprintf("%v:%v:%x", kc, per, kss))
		return nil
	}

	// 19 is bound by the layout, 18 is empty
	kc, err := r.Remap(0x20ac)
	require.NoError(t, err)
	assert.Equal(t, xproto.Keycode(18), kc)
	assert.Equal(t, xproto.Keycode(18), km.KeysymToKeycode(0x20ac))
	assert.Equal(t, []string{"18:4:[20ac 20ac 20ac 20ac]"}, changes)

	// already held
	kc, err = r.Remap(0x20ac)
	require.NoError(t, err)
	assert.Equal(t, xproto.Keycode(18), kc)
	assert.Len(t, changes, 1)

	kc, err = r.Remap(0x1000444)
	require.NoError(t, err)
	assert.Equal(t, xproto.Keycode(17), kc)

	// rotation reuses the oldest remapped slot
	kc, err = r.Remap(0x100263a)
	require.NoError(t, err)
	assert.Equal(t, xproto.Keycode(18), kc)
	_, ok := r.Held(18)
	assert.True(t, ok)
	assert.Equal(t, xproto.Keycode(0), km.KeysymToKeycode(0x20ac))

	changes = nil
	require.NoError(t, r.Restore())
	assert.ElementsMatch(t, []string{"18:4:[0 0 0 0]", "17:4:[0 0 0 0]"}, changes)
	_, ok = r.Held(18)
	assert.False(t, ok)
	assert.Equal(t, xproto.Keycode(0), km.KeysymToKeycode(0x100263a))
}

func TestRemapperOverwrite(t *testing.T) {
	km := newTestKMap(t, false)
	r := NewRemapper(km, 1)
	changes := []string{}
	r.change = func(kc xproto.Keycode, per byte, kss []xproto.Keysym) error {
		changes = append(changes, fmt.Sprintf("%v:%x", kc, kss))
		return nil
	}

	kc, err := r.Remap(0x20ac)
	require.NoError(t, err)
	assert.Equal(t, xproto.Keycode(19), kc)

	require.NoError(t, r.Restore())
	assert.Equal(t, "19:[1008ff12 0 0 0]", changes[len(changes)-1])
	assert.Equal(t, xproto.Keysym(0x1008ff12), km.KeycodeToKeysym(19, 0))
}

func TestRemapperErrors(t *testing.T) {
	km := newTestKMap(t, false)
	r := NewRemapper(km, 2)
	r.change = func(xproto.Keycode, byte, []xproto.Keysym) error {
		return errors.New("bad match")
	}
	_, err := r.Remap(0x20ac)
	assert.Error(t, err)
	_, ok := r.Held(18)
	assert.False(t, ok)
	assert.Equal(t, xproto.Keysym(0), km.KeycodeToKeysym(18, 0))

	r = NewRemapper(km, 0)
	_, err = r.Remap(0x20ac)
	assert.Error(t, err)
}

func TestRemapperSync(t *testing.T) {
	km := newTestKMap(t, false)
	r := NewRemapper(km, 3)
	r.change = func(xproto.Keycode, byte, []xproto.Keysym) error { return nil }

	kc, err := r.Remap(0x20ac)
	require.NoError(t, err)

	// another client changed the slot
	km.setKeysyms(kc, []xproto.Keysym{'x', 'X', 0, 0})
	r.Sync()
	_, ok := r.Held(kc)
	assert.False(t, ok)
}

//----------

func TestXInputTap(t *testing.T) {
	km := newTestKMap(t, false)
	events := []string{}
	failOn := xproto.Keycode(0)
	xi := &XInput{km: km}
	xi.fake = func(typ byte, kc xproto.Keycode) error {
		if kc == failOn && typ == xproto.KeyPress {
			return errors.New("fail")
		}
		s := "press"
		if typ == xproto.KeyRelease {
			s = "release"
		}
		events = append(events, fmt.Sprintf("%v %v", s, kc))
		return nil
	}

	require.NoError(t, xi.Tap(10, []int{ShiftMapIndex, LockMapIndex}))
	assert.Equal(t, []string{"press 9", "press 10", "release 10", "release 9"}, events)

	events = nil
	failOn = 10
	assert.Error(t, xi.Tap(10, []int{ShiftMapIndex}))
	assert.Equal(t, []string{"press 9", "release 9"}, events)
}

//----------

func newTestKMap(t *testing.T, meta bool) *KMap {
	t.Helper()
	type KS = xproto.Keysym
	rows := map[xproto.Keycode][]KS{
		9:  {KS(keysym.ShiftL)},
		10: {'a', 'A'},
		11: {'2', '@'},
		12: {KS(keysym.AltL), KS(keysym.MetaL)},
		13: {KS(keysym.SuperL)},
		14: {KS(keysym.ISOLevel3Shift)},
		15: {KS(keysym.NumLock)},
		16: {KS(keysym.Return)},
		19: {0x1008ff12},
	}
	mod3 := xproto.Keycode(0)
	if meta {
		rows[17] = []KS{KS(keysym.MetaL)}
		mod3 = 17
	}

	min, max, per := xproto.Keycode(8), xproto.Keycode(20), 4
	kss := make([]KS, (int(max)-int(min)+1)*per)
	for kc, row := range rows {
		copy(kss[int(kc-min)*per:], row)
	}
	km := &KMap{}
	reply := &xproto.GetKeyboardMappingReply{KeysymsPerKeycode: byte(per), Keysyms: kss}
	require.NoError(t, km.setKeyboardMapping(min, max, reply))

	km.setModMapping(&xproto.GetModifierMappingReply{
		KeycodesPerModifier: 2,
		Keycodes: []xproto.Keycode{
			9, 0, // shift
			0, 0, // lock
			0, 0, // control
			12, 0, // mod1
			15, 0, // mod2
			mod3, 0, // mod3
			13, 0, // mod4
			14, 0, // mod5
		},
	})
	return km
}
