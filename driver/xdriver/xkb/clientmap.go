package xkb

import "github.com/BurntSushi/xgb/xproto"

// group info: out of range group actions
const (
	WrapIntoRange     = 0x00
	ClampIntoRange    = 0x40
	RedirectIntoRange = 0x80
)

// Key types and symbols, enough to translate keycodes like XkbTranslateKeyCode.
type ClientMap struct {
	MinKeyCode  xproto.Keycode
	MaxKeyCode  xproto.Keycode
	FirstKeySym xproto.Keycode
	Types       []KeyType
	Syms        []KeySymMap // indexed from FirstKeySym
}

// Core event state: modifiers in the low byte, group in bits 13-14.
func BuildCoreState(mods uint8, group int) uint16 {
	return uint16(group&3)<<13 | uint16(mods)
}

func GroupForCoreState(state uint16) int {
	return int(state>>13) & 3
}

//----------

func (cm *ClientMap) symMap(kc xproto.Keycode) *KeySymMap {
	if kc < cm.MinKeyCode || kc > cm.MaxKeyCode || kc < cm.FirstKeySym {
		return nil
	}
	i := int(kc - cm.FirstKeySym)
	if i >= len(cm.Syms) {
		return nil
	}
	return &cm.Syms[i]
}

func (cm *ClientMap) InRange(kc xproto.Keycode) bool {
	return cm.symMap(kc) != nil
}

func (cm *ClientMap) NumGroups(kc xproto.Keycode) int {
	sm := cm.symMap(kc)
	if sm == nil {
		return 0
	}
	return int(sm.GroupInfo & 0x0f)
}

func (cm *ClientMap) keyType(sm *KeySymMap, group int) *KeyType {
	i := int(sm.KtIndex[group&3])
	if i >= len(cm.Types) {
		return nil
	}
	return &cm.Types[i]
}

// Number of shift levels of the key in the group.
func (cm *ClientMap) GroupWidth(kc xproto.Keycode, group int) int {
	sm := cm.symMap(kc)
	if sm == nil {
		return 0
	}
	kt := cm.keyType(sm, group)
	if kt == nil {
		return 0
	}
	return int(kt.NumLevels)
}

func (sm *KeySymMap) sym(group, level int) xproto.Keysym {
	i := group*int(sm.Width) + level
	if i < 0 || i >= len(sm.Syms) {
		return 0
	}
	return sm.Syms[i]
}

//----------

// Same as XkbKeycodeToKeysym.
func (cm *ClientMap) KeycodeToKeysym(kc xproto.Keycode, group, level int) xproto.Keysym {
	sm := cm.symMap(kc)
	if sm == nil {
		return 0
	}
	if group < 0 || level < 0 || group >= int(sm.GroupInfo&0x0f) {
		return 0
	}
	if w := cm.GroupWidth(kc, group); level >= w {
		// core protocol compatibility: always allow two symbols in the first two groups, one level types replicate the first one
		if group > 1 || w != 1 || level != 1 {
			return 0
		}
		level = 0
	}
	return sm.sym(group, level)
}

// Same as XkbTranslateKeyCode. Returns the keysym, the modifiers consumed, and false if the key produces no symbol.
func (cm *ClientMap) TranslateKeycode(kc xproto.Keycode, state uint16) (xproto.Keysym, uint8, bool) {
	sm := cm.symMap(kc)
	if sm == nil {
		return 0, 0, false
	}
	nGroups := int(sm.GroupInfo & 0x0f)
	if nGroups == 0 {
		return 0, 0, false
	}

	// effective group
	group := GroupForCoreState(state)
	if group >= nGroups {
		switch sm.GroupInfo & 0xc0 {
		case ClampIntoRange:
			group = nGroups - 1
		case RedirectIntoRange:
			group = int(sm.GroupInfo>>4) & 3
			if group >= nGroups {
				group = 0
			}
		default:
			group %= nGroups
		}
	}
	kt := cm.keyType(sm, group)
	if kt == nil {
		return 0, 0, false
	}

	// shift level within the group
	mods := uint8(state)
	level := 0
	preserve := uint8(0)
	for i, e := range kt.Map {
		if e.Active && mods&kt.ModsMask == e.ModsMask {
			level = int(e.Level)
			if i < len(kt.Preserve) {
				preserve = kt.Preserve[i].Mask
			}
			break
		}
	}

	ks := sm.sym(group, level)
	return ks, kt.ModsMask &^ preserve, ks != 0
}

// Same as XKeysymToKeycode on an xkb display: searches column by column, lowest keycode first. Zero if not found.
func (cm *ClientMap) KeysymToKeycode(ks xproto.Keysym) xproto.Keycode {
	for j := 0; ; j++ {
		gotOne := false
		for i := range cm.Syms {
			kc := cm.FirstKeySym + xproto.Keycode(i)
			if kc < cm.MinKeyCode || kc > cm.MaxKeyCode {
				continue
			}
			sm := &cm.Syms[i]
			n := int(sm.Width) * int(sm.GroupInfo&0x0f)
			if n > len(sm.Syms) {
				n = len(sm.Syms)
			}
			if j < n {
				gotOne = true
				if sm.Syms[j] == ks {
					return kc
				}
			}
		}
		if !gotOne {
			return 0
		}
	}
}
