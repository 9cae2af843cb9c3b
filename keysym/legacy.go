package keysym

import (
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Names outside the local table (cyrillic, greek, kana, XF86 keys) come from the xgbutil keysymdef table.

// legacy keysym ranges of keysymdef.h
var legacyRanges = [][2]Keysym{
	{0x0100, 0x20ff},
	{0xfe00, 0xffff},
	{0x1008ff00, 0x1008ffff},
}

var legacy struct {
	once   sync.Once
	byName map[string]Keysym
}

func legacyName(ks Keysym) (string, bool) {
	name := keybind.KeysymToStr(xproto.Keysym(ks))
	// short forms like "{" are not names
	if name == "" || utf8.RuneCountInString(name) == 1 {
		return "", false
	}
	return name, true
}

func legacyKeysym(name string) (Keysym, bool) {
	legacy.once.Do(func() {
		legacy.byName = map[string]Keysym{}
		for _, r := range legacyRanges {
			for ks := r[0]; ks <= r[1]; ks++ {
				if n, ok := legacyName(ks); ok {
					legacy.byName[n] = ks
				}
			}
		}
	})
	ks, ok := legacy.byName[name]
	return ks, ok
}
