package xutil

import (
	"errors"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

var ErrPropertyNotFound = errors.New("property not found")

// max length in 4-byte units
const maxPropertyLength = 4096

// Reads a null separated 8-bit STRING property.
func GetStringsProperty(conn *xgb.Conn, win xproto.Window, atom xproto.Atom) ([]string, error) {
	cookie := xproto.GetProperty(conn, false, win, atom, xproto.AtomString, 0, maxPropertyLength)
	reply, err := cookie.Reply()
	if err != nil {
		return nil, err
	}
	return propertyStrings(reply)
}

// rules, model, layout, variant, options
const NumRulesNames = 5

// Reads the _XKB_RULES_NAMES property of the root window. Always returns NumRulesNames entries.
func ReadRulesNames(conn *xgb.Conn, root xproto.Window, atom xproto.Atom) ([]string, error) {
	u, err := GetStringsProperty(conn, root, atom)
	if err != nil {
		return nil, err
	}
	return padStrings(u, NumRulesNames), nil
}

func padStrings(u []string, n int) []string {
	for len(u) < n {
		u = append(u, "")
	}
	return u
}

func propertyStrings(reply *xproto.GetPropertyReply) ([]string, error) {
	if reply == nil || reply.Type == xproto.AtomNone || reply.Format == 0 {
		return nil, ErrPropertyNotFound
	}
	return xprop.PropValStrs(reply, nil)
}
