package xinput

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/keysym"
)

// $ man keymaps
// https://tronche.com/gui/x/xlib/input/XGetKeyboardMapping.html
// https://tronche.com/gui/x/xlib/input/keyboard-encoding.html

// xproto.Keycode is a physical key.
// xproto.Keysym is the encoding of a symbol on the cap of a key.
// A list of keysyms is associated with each keycode.

//----------

// modifier map rows
const (
	ShiftMapIndex = iota
	LockMapIndex
	ControlMapIndex
	Mod1MapIndex
	Mod2MapIndex
	Mod3MapIndex
	Mod4MapIndex
	Mod5MapIndex

	NumModIndices
)

// Core keyboard mapping and modifier mapping.
type KMap struct {
	conn *xgb.Conn

	min, max xproto.Keycode
	reply    *xproto.GetKeyboardMappingReply
	modMap   *xproto.GetModifierMappingReply

	// first keycode found in each modifier row, zero if the row is empty
	modTable [NumModIndices]xproto.Keycode

	ShiftIndex int
	AltIndex   int
	MetaIndex  int // -1 if not detected

	modGroups struct {
		numLock int8
		altGr   int8
		super   int8
	}
}

func NewKMap(conn *xgb.Conn) (*KMap, error) {
	km := &KMap{conn: conn}
	err := km.ReadMapping()
	if err != nil {
		return nil, err
	}
	return km, nil
}

// Builds the map from replies already read from the server.
func NewKMapFromReplies(conn *xgb.Conn, min, max xproto.Keycode, reply *xproto.GetKeyboardMappingReply, modMap *xproto.GetModifierMappingReply) (*KMap, error) {
	km := &KMap{conn: conn}
	if err := km.setKeyboardMapping(min, max, reply); err != nil {
		return nil, err
	}
	km.setModMapping(modMap)
	return km, nil
}

//----------

func (km *KMap) ReadMapping() error {
	if err := km.readKeyboardMapping(); err != nil {
		return err
	}
	if err := km.readModMapping(); err != nil {
		return err
	}
	return nil
}

func (km *KMap) readKeyboardMapping() error {
	si := xproto.Setup(km.conn)
	count := int(si.MaxKeycode) - int(si.MinKeycode) + 1
	if count <= 0 {
		return fmt.Errorf("bad keycode count: %v", count)
	}
	reply, err := xproto.GetKeyboardMapping(km.conn, si.MinKeycode, byte(count)).Reply()
	if err != nil {
		return err
	}
	return km.setKeyboardMapping(si.MinKeycode, si.MaxKeycode, reply)
}

func (km *KMap) setKeyboardMapping(min, max xproto.Keycode, reply *xproto.GetKeyboardMappingReply) error {
	if reply.KeysymsPerKeycode < 1 {
		return fmt.Errorf("keysyms per keycode < 1")
	}
	n := (int(max) - int(min) + 1) * int(reply.KeysymsPerKeycode)
	if len(reply.Keysyms) < n {
		return fmt.Errorf("short keyboard mapping: %v < %v", len(reply.Keysyms), n)
	}
	km.min, km.max = min, max
	km.reply = reply
	return nil
}

func (km *KMap) readModMapping() error {
	modMap, err := xproto.GetModifierMapping(km.conn).Reply()
	if err != nil {
		return err
	}
	km.setModMapping(modMap)
	return nil
}

func (km *KMap) setModMapping(modMap *xproto.GetModifierMappingReply) {
	km.modMap = modMap

	// 8 modifiers rows, that can have n keycodes
	//0	Shift
	//1	Lock (Caps Lock)
	//2	Control
	//--- detect
	//3	Mod1 (Usually Alt)
	//4	Mod2 (Often Num Lock)
	//5	Mod3 (Rarely used)
	//6	Mod4 (Often Super/Meta)
	//7	Mod5 (Often AltGr)

	for i := 0; i < NumModIndices; i++ {
		km.modTable[i] = 0
		for _, kc := range km.modRow(i) {
			if kc != 0 {
				km.modTable[i] = kc
				break
			}
		}
	}

	// defaults
	km.ShiftIndex = ShiftMapIndex
	km.AltIndex = Mod1MapIndex
	km.MetaIndex = -1

	// detect from the first keycode of each row, level 0
	for i := Mod1MapIndex; i <= Mod5MapIndex; i++ {
		kc := km.modTable[i]
		if kc == 0 {
			continue
		}
		switch keysym.Keysym(km.KeycodeToKeysym(kc, 0)) {
		case keysym.MetaL, keysym.MetaR:
			km.MetaIndex = i
		case keysym.AltL, keysym.AltR:
			km.AltIndex = i
		case keysym.ShiftL, keysym.ShiftR:
			km.ShiftIndex = i
		}
	}

	km.detectModGroups()
}

func (km *KMap) modRow(i int) []xproto.Keycode {
	stride := int(km.modMap.KeycodesPerModifier)
	if (i+1)*stride > len(km.modMap.Keycodes) {
		return nil
	}
	return km.modMap.Keycodes[i*stride : (i+1)*stride]
}

func (km *KMap) detectModGroups() {
	// X11: keysyms to detect which group might have them
	type KS = keysym.Keysym
	numLocks := []KS{keysym.NumLock}
	altGrs := []KS{keysym.ISOLevel3Shift, keysym.ISOLevel5Shift, keysym.ModeSwitch}
	supers := []KS{keysym.SuperL, keysym.SuperR}

	// defaults
	km.modGroups.numLock = Mod2MapIndex
	km.modGroups.altGr = Mod5MapIndex
	km.modGroups.super = -1

	type pair struct {
		group *int8
		kss   []KS
	}
	pairs := []pair{
		{&km.modGroups.numLock, numLocks},
		{&km.modGroups.altGr, altGrs},
		{&km.modGroups.super, supers},
	}

	for g := int8(Mod1MapIndex); g <= Mod5MapIndex; g++ {
	kcLoop: // iterate keycodes/keysyms, keep first found group
		for _, kc := range km.modRow(int(g)) {
			for _, ks := range km.KeycodeToKeysyms(kc) {
				for _, p := range pairs {
					for _, ks2 := range p.kss {
						if KS(ks) == ks2 {
							*p.group = g
							break kcLoop
						}
					}
				}
			}
		}
	}
}

//----------

func (km *KMap) MinKeycode() xproto.Keycode { return km.min }
func (km *KMap) MaxKeycode() xproto.Keycode { return km.max }
func (km *KMap) KeysymsPerKeycode() int     { return int(km.reply.KeysymsPerKeycode) }

// First keycode of the modifier row, zero if none.
func (km *KMap) ModifierKeycode(index int) xproto.Keycode {
	if index < 0 || index >= NumModIndices {
		return 0
	}
	return km.modTable[index]
}

// Modifier row of the num lock, altgr and super keys, -1 if not detected.
func (km *KMap) NumLockIndex() int { return int(km.modGroups.numLock) }
func (km *KMap) AltGrIndex() int   { return int(km.modGroups.altGr) }
func (km *KMap) SuperIndex() int   { return int(km.modGroups.super) }

func (km *KMap) ModifierIndices() *virtkey.ModifierIndices {
	return &virtkey.ModifierIndices{
		Shift:   km.ShiftIndex,
		Alt:     km.AltIndex,
		Meta:    km.MetaIndex,
		NumLock: km.NumLockIndex(),
		AltGr:   km.AltGrIndex(),
		Super:   km.SuperIndex(),
	}
}

func (km *KMap) KeycodeToKeysyms(keycode xproto.Keycode) []xproto.Keysym {
	if km.reply == nil || keycode < km.min || keycode > km.max {
		return nil
	}
	y := int(keycode - km.min)
	stride := int(km.reply.KeysymsPerKeycode) // usually ~7
	return km.reply.Keysyms[y*stride : (y+1)*stride]
}

func (km *KMap) KeycodeToKeysym(keycode xproto.Keycode, column int) xproto.Keysym {
	kss := km.KeycodeToKeysyms(keycode)
	if column < 0 || column >= len(kss) {
		return 0
	}
	return kss[column]
}

// Core protocol search, first column first. Zero if not found.
func (km *KMap) KeysymToKeycode(ks xproto.Keysym) xproto.Keycode {
	for j := 0; j < km.KeysymsPerKeycode(); j++ {
		for kc := int(km.min); kc <= int(km.max); kc++ {
			if km.KeycodeToKeysym(xproto.Keycode(kc), j) == ks {
				return xproto.Keycode(kc)
			}
		}
	}
	return 0
}

// Updates the local copy only.
func (km *KMap) setKeysyms(keycode xproto.Keycode, kss []xproto.Keysym) {
	dst := km.KeycodeToKeysyms(keycode)
	copy(dst, kss)
}

//----------

func (km *KMap) TableString() string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "keysym table (%v per keycode)\n", km.KeysymsPerKeycode())
	for j := int(km.min); j <= int(km.max); j++ {
		kc := xproto.Keycode(j)
		u := []string{}
		for _, xks := range km.KeycodeToKeysyms(kc) {
			if xks == 0 {
				continue
			}
			ks := keysym.Keysym(xks)
			u = append(u, fmt.Sprintf("(%q,%v)", keysym.Label(ks), ks))
		}
		if len(u) == 0 {
			continue
		}
		fmt.Fprintf(sb, "kc=%v: %v\n", kc, strings.Join(u, " "))
	}
	for i := 0; i < NumModIndices; i++ {
		fmt.Fprintf(sb, "mod%v: %v\n", i, km.modRow(i))
	}
	return sb.String()
}
