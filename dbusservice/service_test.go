package dbusservice

import (
	"fmt"
	"os"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectMethods(t *testing.T) {
	f := &fakeVirtkey{}
	o := New(f, nil).obj

	g, derr := o.CurrentGroup()
	require.Nil(t, derr)
	assert.Equal(t, int32(1), g)

	name, derr := o.CurrentGroupName()
	require.Nil(t, derr)
	assert.Equal(t, "Portuguese", name)

	rn, derr := o.RulesNames()
	require.Nil(t, derr)
	assert.Equal(t, []string{"evdev", "pc105", "us,pt", "", ""}, rn)

	ks, derr := o.KeysymFromKeycode(38, byte(virtkey.ModShift), 0)
	require.Nil(t, derr)
	assert.Equal(t, uint32('A'), ks)

	label, derr := o.LabelFromKeycode(38, 0, 0)
	require.Nil(t, derr)
	assert.Equal(t, "a", label)

	kc, mods, derr := o.KeycodeFromKeysym('A')
	require.Nil(t, derr)
	assert.Equal(t, byte(38), kc)
	assert.Equal(t, byte(virtkey.ModShift), mods)

	require.Nil(t, o.SetModifiers(byte(virtkey.Mod5), true, true))
	require.Nil(t, o.SendKeysym('a'))
	assert.Equal(t, []string{"lock mod5", "press 38", "release 38"}, f.events)

	require.Nil(t, o.Reload())
	assert.Equal(t, 1, f.reloads)
}

func TestObjectModifierNames(t *testing.T) {
	f := &fakeVirtkey{}
	o := New(&fakeIndexer{fakeVirtkey: f, altGr: 5}, nil).obj

	m, derr := o.ModifierMask("shift|altgr")
	require.Nil(t, derr)
	assert.Equal(t, byte(virtkey.ModShift|virtkey.Mod3), m)

	require.Nil(t, o.SetModifiersByName("altgr", false, true))
	assert.Equal(t, []string{"latch mod3"}, f.events)

	derr = o.SetModifiersByName("hyper", true, true)
	require.NotNil(t, derr)
	assert.Equal(t, Interface+".Error.Failed", derr.Name)
	assert.Len(t, f.events, 1)

	// without detected rows the defaults apply
	o = New(f, nil).obj
	m, derr = o.ModifierMask("altgr")
	require.Nil(t, derr)
	assert.Equal(t, byte(virtkey.Mod5), m)
}

func TestObjectErrors(t *testing.T) {
	f := &fakeVirtkey{fail: true}
	o := New(f, logrus.New()).obj

	_, derr := o.CurrentGroupName()
	require.NotNil(t, derr)
	assert.Equal(t, Interface+".Error.NoGroupNames", derr.Name)
	assert.Contains(t, fmt.Sprint(derr.Body...), "no group names")

	_, derr = o.LayoutSymbols()
	require.NotNil(t, derr)
	assert.Equal(t, Interface+".Error.NoSymbolsNames", derr.Name)

	_, derr = o.RulesNames()
	require.NotNil(t, derr)
	assert.Equal(t, Interface+".Error.NoRulesNames", derr.Name)

	derr = o.SendString("a€")
	require.NotNil(t, derr)
	assert.Equal(t, Interface+".Error.NoFreeSlot", derr.Name)
}

func TestErrorName(t *testing.T) {
	assert.Equal(t, Interface+".Error.Closed", ErrorName(virtkey.ErrClosed))
	assert.Equal(t, Interface+".Error.KeycodeRange", ErrorName(errors.Wrap(virtkey.ErrKeycodeRange, "kc 300")))
	assert.Equal(t, Interface+".Error.Failed", ErrorName(errors.New("other")))
}

func TestIntrospectMethods(t *testing.T) {
	ms := introspect.Methods(&object{})
	names := []string{}
	for _, m := range ms {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "KeycodeFromKeysym")
	assert.Contains(t, names, "SendKeysym")
	assert.Contains(t, names, "ModifierMask")
	assert.NotContains(t, names, "dbusError")
}

func TestSessionBus(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no session bus")
	}
	s := New(&fakeVirtkey{}, nil)
	if err := s.Start(); err != nil {
		t.Skip(err)
	}
	defer s.Close()

	conn, err := dbus.ConnectSessionBus()
	require.NoError(t, err)
	defer conn.Close()

	var name string
	obj := conn.Object(BusName, Path)
	require.NoError(t, obj.Call(Interface+".CurrentGroupName", 0).Store(&name))
	assert.Equal(t, "Portuguese", name)
}

//----------

type fakeVirtkey struct {
	fail    bool
	reloads int
	events  []string
}

func (f *fakeVirtkey) Reload() error { f.reloads++; return nil }
func (f *fakeVirtkey) Close() error  { return nil }

func (f *fakeVirtkey) CurrentGroup() (int, error) { return 1, nil }
func (f *fakeVirtkey) CurrentGroupName() (string, error) {
	if f.fail {
		return "", virtkey.ErrNoGroupNames
	}
	return "Portuguese", nil
}
func (f *fakeVirtkey) LabelFromKeycode(kc virtkey.Keycode, mods virtkey.ModMask, group int) (string, error) {
	ks, err := f.KeysymFromKeycode(kc, mods, group)
	return keysym.Label(ks), err
}
func (f *fakeVirtkey) KeysymFromKeycode(kc virtkey.Keycode, mods virtkey.ModMask, group int) (keysym.Keysym, error) {
	if kc != 38 {
		return 0, virtkey.ErrKeycodeRange
	}
	if mods&virtkey.ModShift != 0 {
		return 'A', nil
	}
	return 'a', nil
}
func (f *fakeVirtkey) KeycodeFromKeysym(ks keysym.Keysym) (virtkey.Keycode, virtkey.ModMask, error) {
	switch ks {
	case 'a':
		return 38, 0, nil
	case 'A':
		return 38, virtkey.ModShift, nil
	}
	return 0, 0, errors.Wrap(virtkey.ErrNoFreeSlot, "fake")
}
func (f *fakeVirtkey) RulesNames() (*virtkey.RulesNames, error) {
	if f.fail {
		return nil, virtkey.ErrNoRulesNames
	}
	return &virtkey.RulesNames{Rules: "evdev", Model: "pc105", Layout: "us,pt"}, nil
}
func (f *fakeVirtkey) LayoutSymbols() (string, error) {
	if f.fail {
		return "", virtkey.ErrNoSymbolsNames
	}
	return "pc+us+pt:2+inet(evdev)", nil
}
func (f *fakeVirtkey) SetModifiers(mods virtkey.ModMask, lock, press bool) error {
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
func (f *fakeVirtkey) SendKeycode(kc virtkey.Keycode, press bool) error {
	s := "press"
	if !press {
		s = "release"
	}
	f.events = append(f.events, fmt.Sprintf("%v %v", s, kc))
	return nil
}

type fakeIndexer struct {
	*fakeVirtkey
	altGr int
}

func (f *fakeIndexer) ModifierIndices() (*virtkey.ModifierIndices, error) {
	mi := virtkey.DefaultModifierIndices()
	mi.AltGr = f.altGr
	return mi, nil
}
