package xutil

import (
	"errors"
	"reflect"
	"testing"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyStrings(t *testing.T) {
	val := []byte("evdev\x00pc105\x00us,pt\x00\x00grp:alt_shift_toggle\x00")
	reply := &xproto.GetPropertyReply{
		Format:   8,
		Type:     xproto.AtomString,
		ValueLen: uint32(len(val)),
		Value:    val,
	}
	strs, err := propertyStrings(reply)
	require.NoError(t, err)
	assert.Equal(t, []string{"evdev", "pc105", "us,pt", "", "grp:alt_shift_toggle"}, strs)

	_, err = propertyStrings(&xproto.GetPropertyReply{})
	assert.Equal(t, ErrPropertyNotFound, err)
}

func TestAtomNamesCache(t *testing.T) {
	calls := 0
	an := NewAtomNames(nil)
	an.get = func(_ *xgb.Conn, a xproto.Atom) (string, error) {
		calls++
		if a == 13 {
			return "", errors.New("bad atom")
		}
		return "pc+us+pt:2", nil
	}

	for i := 0; i < 3; i++ {
		name, err := an.Name(7)
		require.NoError(t, err)
		assert.Equal(t, "pc+us+pt:2", name)
	}
	assert.Equal(t, 1, calls)

	name, err := an.Name(xproto.AtomNone)
	require.NoError(t, err)
	assert.Equal(t, "", name)
	assert.Equal(t, 1, calls)

	_, err = an.Name(13)
	assert.Error(t, err)

	an.Clear()
	_, _ = an.Name(7)
	assert.Equal(t, 3, calls)
}

func TestAtomFieldName(t *testing.T) {
	type atoms struct {
		STRING     xproto.Atom
		RulesNames xproto.Atom `loadAtoms:"_XKB_RULES_NAMES"`
	}
	typ := reflect.TypeOf(atoms{})
	assert.Equal(t, "STRING", AtomFieldName(typ.Field(0)))
	assert.Equal(t, "_XKB_RULES_NAMES", AtomFieldName(typ.Field(1)))
}

func TestPadStrings(t *testing.T) {
	u := padStrings([]string{"evdev", "pc105"}, NumRulesNames)
	assert.Equal(t, []string{"evdev", "pc105", "", "", ""}, u)

	u = padStrings([]string{"a", "b", "c", "d", "e", "f"}, NumRulesNames)
	assert.Len(t, u, 6)
}
