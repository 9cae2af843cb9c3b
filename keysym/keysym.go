// Keysym values and names, from /usr/include/X11/keysymdef.h.
package keysym

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Encoding of a symbol on the cap of a key.
type Keysym uint32

func (ks Keysym) String() string {
	return Name(ks)
}

const (
	NoSymbol Keysym = 0

	Space Keysym = 0x20

	BackSpace  Keysym = 0xff08
	Tab        Keysym = 0xff09
	Linefeed   Keysym = 0xff0a
	Clear      Keysym = 0xff0b
	Return     Keysym = 0xff0d
	Pause      Keysym = 0xff13
	ScrollLock Keysym = 0xff14
	SysReq     Keysym = 0xff15
	Escape     Keysym = 0xff1b
	MultiKey   Keysym = 0xff20
	Delete     Keysym = 0xffff

	Home     Keysym = 0xff50
	Left     Keysym = 0xff51
	Up       Keysym = 0xff52
	Right    Keysym = 0xff53
	Down     Keysym = 0xff54
	PageUp   Keysym = 0xff55
	PageDown Keysym = 0xff56
	End      Keysym = 0xff57
	Begin    Keysym = 0xff58
	Print    Keysym = 0xff61
	Insert   Keysym = 0xff63
	Menu     Keysym = 0xff67
	Break    Keysym = 0xff6b

	ModeSwitch Keysym = 0xff7e
	NumLock    Keysym = 0xff7f

	KPSpace     Keysym = 0xff80
	KPTab       Keysym = 0xff89
	KPEnter     Keysym = 0xff8d
	KPHome      Keysym = 0xff95
	KPLeft      Keysym = 0xff96
	KPUp        Keysym = 0xff97
	KPRight     Keysym = 0xff98
	KPDown      Keysym = 0xff99
	KPPageUp    Keysym = 0xff9a
	KPPageDown  Keysym = 0xff9b
	KPEnd       Keysym = 0xff9c
	KPBegin     Keysym = 0xff9d
	KPInsert    Keysym = 0xff9e
	KPDelete    Keysym = 0xff9f
	KPMultiply  Keysym = 0xffaa
	KPAdd       Keysym = 0xffab
	KPSeparator Keysym = 0xffac
	KPSubtract  Keysym = 0xffad
	KPDecimal   Keysym = 0xffae
	KPDivide    Keysym = 0xffaf
	KP0         Keysym = 0xffb0
	KP9         Keysym = 0xffb9
	KPEqual     Keysym = 0xffbd

	F1  Keysym = 0xffbe
	F35 Keysym = 0xffe0

	ShiftL   Keysym = 0xffe1
	ShiftR   Keysym = 0xffe2
	ControlL Keysym = 0xffe3
	ControlR Keysym = 0xffe4
	CapsLock Keysym = 0xffe5
	MetaL    Keysym = 0xffe7
	MetaR    Keysym = 0xffe8
	AltL     Keysym = 0xffe9
	AltR     Keysym = 0xffea
	SuperL   Keysym = 0xffeb
	SuperR   Keysym = 0xffec

	ISOLevel3Shift Keysym = 0xfe03
	ISOLevel5Shift Keysym = 0xfe11
	ISOLeftTab     Keysym = 0xfe20

	DeadGrave       Keysym = 0xfe50
	DeadAcute       Keysym = 0xfe51
	DeadCircumflex  Keysym = 0xfe52
	DeadTilde       Keysym = 0xfe53
	DeadMacron      Keysym = 0xfe54
	DeadBreve       Keysym = 0xfe55
	DeadAbovedot    Keysym = 0xfe56
	DeadDiaeresis   Keysym = 0xfe57
	DeadAbovering   Keysym = 0xfe58
	DeadDoubleacute Keysym = 0xfe59
	DeadCaron       Keysym = 0xfe5a
	DeadCedilla     Keysym = 0xfe5b
	DeadOgonek      Keysym = 0xfe5c
	DeadBelowdot    Keysym = 0xfe60

	// unicode keysyms: 0x01000000 | codepoint
	unicodeOffset Keysym = 0x01000000
	unicodeMax    Keysym = 0x0110ffff
)

//----------

type nameEntry struct {
	ks   Keysym
	name string
}

// First entry wins for Name(), all entries are accepted by Parse().
var nameEntries = []nameEntry{
	{BackSpace, "BackSpace"},
	{Tab, "Tab"},
	{Linefeed, "Linefeed"},
	{Clear, "Clear"},
	{Return, "Return"},
	{Pause, "Pause"},
	{ScrollLock, "Scroll_Lock"},
	{SysReq, "Sys_Req"},
	{Escape, "Escape"},
	{MultiKey, "Multi_key"},
	{Delete, "Delete"},
	{Home, "Home"},
	{Left, "Left"},
	{Up, "Up"},
	{Right, "Right"},
	{Down, "Down"},
	{PageUp, "Page_Up"},
	{PageUp, "Prior"},
	{PageDown, "Page_Down"},
	{PageDown, "Next"},
	{End, "End"},
	{Begin, "Begin"},
	{0xff60, "Select"},
	{Print, "Print"},
	{0xff62, "Execute"},
	{Insert, "Insert"},
	{0xff65, "Undo"},
	{0xff66, "Redo"},
	{Menu, "Menu"},
	{0xff68, "Find"},
	{0xff69, "Cancel"},
	{0xff6a, "Help"},
	{Break, "Break"},
	{ModeSwitch, "Mode_switch"},
	{ModeSwitch, "ISO_Group_Shift"},
	{NumLock, "Num_Lock"},

	{KPSpace, "KP_Space"},
	{KPTab, "KP_Tab"},
	{KPEnter, "KP_Enter"},
	{0xff91, "KP_F1"},
	{0xff92, "KP_F2"},
	{0xff93, "KP_F3"},
	{0xff94, "KP_F4"},
	{KPHome, "KP_Home"},
	{KPLeft, "KP_Left"},
	{KPUp, "KP_Up"},
	{KPRight, "KP_Right"},
	{KPDown, "KP_Down"},
	{KPPageUp, "KP_Page_Up"},
	{KPPageUp, "KP_Prior"},
	{KPPageDown, "KP_Page_Down"},
	{KPPageDown, "KP_Next"},
	{KPEnd, "KP_End"},
	{KPBegin, "KP_Begin"},
	{KPInsert, "KP_Insert"},
	{KPDelete, "KP_Delete"},
	{KPEqual, "KP_Equal"},
	{KPMultiply, "KP_Multiply"},
	{KPAdd, "KP_Add"},
	{KPSeparator, "KP_Separator"},
	{KPSubtract, "KP_Subtract"},
	{KPDecimal, "KP_Decimal"},
	{KPDivide, "KP_Divide"},

	{ShiftL, "Shift_L"},
	{ShiftR, "Shift_R"},
	{ControlL, "Control_L"},
	{ControlR, "Control_R"},
	{CapsLock, "Caps_Lock"},
	{0xffe6, "Shift_Lock"},
	{MetaL, "Meta_L"},
	{MetaR, "Meta_R"},
	{AltL, "Alt_L"},
	{AltR, "Alt_R"},
	{SuperL, "Super_L"},
	{SuperR, "Super_R"},
	{0xffed, "Hyper_L"},
	{0xffee, "Hyper_R"},

	{ISOLevel3Shift, "ISO_Level3_Shift"},
	{0xfe08, "ISO_Next_Group"},
	{0xfe0a, "ISO_Prev_Group"},
	{ISOLevel5Shift, "ISO_Level5_Shift"},
	{ISOLeftTab, "ISO_Left_Tab"},

	{DeadGrave, "dead_grave"},
	{DeadAcute, "dead_acute"},
	{DeadCircumflex, "dead_circumflex"},
	{DeadTilde, "dead_tilde"},
	{DeadMacron, "dead_macron"},
	{DeadBreve, "dead_breve"},
	{DeadAbovedot, "dead_abovedot"},
	{DeadDiaeresis, "dead_diaeresis"},
	{DeadAbovering, "dead_abovering"},
	{DeadDoubleacute, "dead_doubleacute"},
	{DeadCaron, "dead_caron"},
	{DeadCedilla, "dead_cedilla"},
	{DeadOgonek, "dead_ogonek"},
	{0xfe5d, "dead_iota"},
	{DeadBelowdot, "dead_belowdot"},

	{0x1008ff11, "XF86AudioLowerVolume"},
	{0x1008ff12, "XF86AudioMute"},
	{0x1008ff13, "XF86AudioRaiseVolume"},
	{0x1008ff14, "XF86AudioPlay"},
	{0x1008ff15, "XF86AudioStop"},
	{0x1008ff16, "XF86AudioPrev"},
	{0x1008ff17, "XF86AudioNext"},

	{0x20ac, "EuroSign"},
}

// latin-1 names, indexed from 0x20
var latin1Names = [...]string{
	"space", "exclam", "quotedbl", "numbersign", "dollar", "percent",
	"ampersand", "apostrophe", "parenleft", "parenright", "asterisk",
	"plus", "comma", "minus", "period", "slash",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"colon", "semicolon", "less", "equal", "greater", "question", "at",
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"bracketleft", "backslash", "bracketright", "asciicircum",
	"underscore", "grave",
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"braceleft", "bar", "braceright", "asciitilde",
}

// latin-1 supplement names, indexed from 0xa0
var latin1SupNames = [...]string{
	"nobreakspace", "exclamdown", "cent", "sterling", "currency", "yen",
	"brokenbar", "section", "diaeresis", "copyright", "ordfeminine",
	"guillemotleft", "notsign", "hyphen", "registered", "macron",
	"degree", "plusminus", "twosuperior", "threesuperior", "acute", "mu",
	"paragraph", "periodcentered", "cedilla", "onesuperior", "masculine",
	"guillemotright", "onequarter", "onehalf", "threequarters",
	"questiondown",
	"Agrave", "Aacute", "Acircumflex", "Atilde", "Adiaeresis", "Aring",
	"AE", "Ccedilla", "Egrave", "Eacute", "Ecircumflex", "Ediaeresis",
	"Igrave", "Iacute", "Icircumflex", "Idiaeresis",
	"ETH", "Ntilde", "Ograve", "Oacute", "Ocircumflex", "Otilde",
	"Odiaeresis", "multiply", "Oslash", "Ugrave", "Uacute",
	"Ucircumflex", "Udiaeresis", "Yacute", "THORN", "ssharp",
	"agrave", "aacute", "acircumflex", "atilde", "adiaeresis", "aring",
	"ae", "ccedilla", "egrave", "eacute", "ecircumflex", "ediaeresis",
	"igrave", "iacute", "icircumflex", "idiaeresis",
	"eth", "ntilde", "ograve", "oacute", "ocircumflex", "otilde",
	"odiaeresis", "division", "oslash", "ugrave", "uacute",
	"ucircumflex", "udiaeresis", "yacute", "thorn", "ydiaeresis",
}

var (
	ksToName = map[Keysym]string{}
	nameToKs = map[string]Keysym{}
)

func init() {
	add := func(ks Keysym, name string) {
		if _, ok := ksToName[ks]; !ok {
			ksToName[ks] = name
		}
		nameToKs[name] = ks
	}
	for _, e := range nameEntries {
		add(e.ks, e.name)
	}
	for i, name := range latin1Names {
		add(Keysym(0x20+i), name)
	}
	for i, name := range latin1SupNames {
		add(Keysym(0xa0+i), name)
	}
	for i := Keysym(0); i <= F35-F1; i++ {
		add(F1+i, fmt.Sprintf("F%d", int(i)+1))
	}
	for i := Keysym(0); i <= KP9-KP0; i++ {
		add(KP0+i, fmt.Sprintf("KP_%d", int(i)))
	}
}

//----------

// Returns the keysym name, or a hexadecimal representation if the keysym has no known name.
func Name(ks Keysym) string {
	if name, ok := ksToName[ks]; ok {
		return name
	}
	if name, ok := legacyName(ks); ok {
		return name
	}
	if ks >= unicodeOffset+0x100 && ks <= unicodeMax {
		return fmt.Sprintf("U%04X", uint32(ks-unicodeOffset))
	}
	return fmt.Sprintf("%#x", uint32(ks))
}

// Accepts a keysym name ("Shift_L"), a single character ("ä"), a unicode codepoint ("U+20AC", "U20AC") or a hexadecimal value ("0xff08").
func Parse(s string) (Keysym, error) {
	if s == "" {
		return NoSymbol, fmt.Errorf("empty keysym")
	}
	if ks, ok := nameToKs[s]; ok {
		return ks, nil
	}
	if ks, ok := legacyKeysym(s); ok {
		return ks, nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return FromRune(r), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return NoSymbol, fmt.Errorf("bad keysym %q: %w", s, err)
		}
		return Keysym(v), nil
	}
	if s[0] == 'U' {
		u := strings.TrimPrefix(s[1:], "+")
		v, err := strconv.ParseUint(u, 16, 32)
		if err != nil || v > 0x10ffff {
			return NoSymbol, fmt.Errorf("bad unicode keysym: %q", s)
		}
		return FromRune(rune(v)), nil
	}
	return NoSymbol, fmt.Errorf("unknown keysym: %q", s)
}
