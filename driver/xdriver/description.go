package xdriver

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/driver/xdriver/xkb"
	"github.com/jmigpin/virtkey/driver/xdriver/xutil"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
)

// Xkb keyboard description: client map and names.
type description struct {
	cmap  *xkb.ClientMap
	names *xkb.GetNamesReply
}

func readDescription(conn *xgb.Conn) (*description, error) {
	// send both requests before waiting on the replies
	mc := xkb.GetMap(conn, device, xkb.ClientMapParts)
	nc := xkb.GetNames(conn, device, namesWhich)

	mr, err := mc.Reply()
	if err != nil {
		return nil, errors.Wrap(err, "xkb get map")
	}
	nr, err := nc.Reply()
	if err != nil {
		return nil, errors.Wrap(err, "xkb get names")
	}
	if mr == nil || nr == nil {
		return nil, errors.New("missing keyboard description")
	}
	return &description{cmap: mr.ClientMap(), names: nr}, nil
}

//----------

func (d *description) translate(kc virtkey.Keycode, mods virtkey.ModMask, group int) (keysym.Keysym, error) {
	xkc := xproto.Keycode(kc)
	if !d.cmap.InRange(xkc) {
		return 0, errors.Wrapf(virtkey.ErrKeycodeRange, "keycode %v", kc)
	}
	state := xkb.BuildCoreState(uint8(mods), group)
	ks, _, _ := d.cmap.TranslateKeycode(xkc, state)
	return keysym.Keysym(ks), nil
}

// Modifiers needed for the keycode to produce the keysym in the group: none at level 0, shift at level 1.
func (d *description) levelMods(kc xproto.Keycode, group int, ks keysym.Keysym) (virtkey.ModMask, bool) {
	switch xproto.Keysym(ks) {
	case d.cmap.KeycodeToKeysym(kc, group, 0):
		return 0, true
	case d.cmap.KeycodeToKeysym(kc, group, 1):
		return virtkey.ModShift, true
	}
	return 0, false
}

// Empty string if the group has no name.
func (d *description) groupName(names *xutil.AtomNames, group int) (string, error) {
	if !d.names.HasGroupNames() {
		return "", virtkey.ErrNoGroupNames
	}
	return names.Name(d.names.GroupName(group))
}
