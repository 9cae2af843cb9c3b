package keysym

import (
	"strings"
	"unicode"
)

// based on libgnomekbd, gkbd-keyboard-drawing.c, set_key_label_in_layout
var fixedLabels = map[Keysym]string{
	ScrollLock: "Scroll\nLock",
	Space:      " ",
	SysReq:     "Sys Rq",
	PageUp:     "Page\nUp",
	PageDown:   "Page\nDown",
	NumLock:    "Num\nLock",
	KPPageUp:   "Pg Up",
	KPPageDown: "Pg Dn",
	KPHome:     "Home",
	KPLeft:     "Left",
	KPEnd:      "End",
	KPUp:       "Up",
	KPBegin:    "Begin",
	KPRight:    "Right",
	KPEnter:    "Enter",
	KPDown:     "Down",
	KPInsert:   "Ins",
	KPDelete:   "Del",

	DeadGrave:       "ˋ",
	DeadAcute:       "ˊ",
	DeadCircumflex:  "ˆ",
	DeadTilde:       "~",
	DeadMacron:      "ˉ",
	DeadBreve:       "˘",
	DeadAbovedot:    "˙",
	DeadDiaeresis:   "¨",
	DeadAbovering:   "˚",
	DeadDoubleacute: "˝",
	DeadCaron:       "ˇ",
	DeadCedilla:     "¸",
	DeadOgonek:      "˛",
	DeadBelowdot:    ".",

	ModeSwitch: "AltGr",
	MultiKey:   "Compose",
}

// Returns the text to show on a key cap for the keysym.
func Label(ks Keysym) string {
	if ks == NoSymbol {
		return ""
	}
	if l, ok := fixedLabels[ks]; ok {
		return l
	}
	if ru := ToRune(ks); ru != 0 && isGraph(ru) {
		return string(ru)
	}

	// short version of the name
	name := Name(ks)
	n := 2
	if strings.HasPrefix(name, "0x") {
		// likely an erroneous keysym, show the full number
		n = 10
	}
	if len(name) > n {
		name = name[:n]
	}
	return name
}

// printable and not a space
func isGraph(ru rune) bool {
	return unicode.IsGraphic(ru) && !unicode.IsSpace(ru) && !unicode.Is(unicode.Zs, ru)
}
