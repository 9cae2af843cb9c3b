package xkb

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// map parts (GetMap "full"/"partial")
const (
	MapPartKeyTypes           = 1 << 0
	MapPartKeySyms            = 1 << 1
	MapPartModifierMap        = 1 << 2
	MapPartExplicitComponents = 1 << 3
	MapPartKeyActions         = 1 << 4
	MapPartKeyBehaviors       = 1 << 5
	MapPartVirtualMods        = 1 << 6
	MapPartVirtualModMap      = 1 << 7
)

// Only the parts needed to translate keycodes are decoded.
const ClientMapParts = MapPartKeyTypes | MapPartKeySyms

type KTMapEntry struct {
	Active    bool
	ModsMask  byte
	Level     byte
	ModsMods  byte
	ModsVmods uint16
}

type ModDef struct {
	Mask     byte
	RealMods byte
	Vmods    uint16
}

type KeyType struct {
	ModsMask  byte
	ModsMods  byte
	ModsVmods uint16
	NumLevels byte
	Map       []KTMapEntry
	Preserve  []ModDef // same length as Map when present
}

type KeySymMap struct {
	KtIndex   [NumKbdGroups]byte
	GroupInfo byte
	Width     byte
	Syms      []xproto.Keysym // width * number of groups
}

type GetMapCookie struct {
	*xgb.Cookie
}

type GetMapReply struct {
	Sequence          uint16
	Length            uint32
	DeviceID          byte
	MinKeyCode        xproto.Keycode
	MaxKeyCode        xproto.Keycode
	Present           uint16
	FirstType         byte
	NTypes            byte
	TotalTypes        byte
	FirstKeySym       xproto.Keycode
	TotalSyms         uint16
	NKeySyms          byte
	FirstKeyAction    xproto.Keycode
	TotalActions      uint16
	NKeyActions       byte
	FirstKeyBehavior  xproto.Keycode
	NKeyBehaviors     byte
	TotalKeyBehaviors byte
	FirstKeyExplicit  xproto.Keycode
	NKeyExplicit      byte
	TotalKeyExplicit  byte
	FirstModMapKey    xproto.Keycode
	NModMapKeys       byte
	TotalModMapKeys   byte
	FirstVModMapKey   xproto.Keycode
	NVModMapKeys      byte
	TotalVModMapKeys  byte
	VirtualMods       uint16

	Types []KeyType
	Syms  []KeySymMap
}

// Requests the "full" parts of the map. Decoding is limited to ClientMapParts.
func GetMap(c *xgb.Conn, deviceSpec DeviceSpec, full uint16) GetMapCookie {
	checkInit(c)
	cookie := c.NewCookie(true, true)
	c.NewRequest(getMapRequest(c, deviceSpec, full), cookie)
	return GetMapCookie{cookie}
}

func (cook GetMapCookie) Reply() (*GetMapReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return getMapReply(buf)
}

func getMapReply(buf []byte) (*GetMapReply, error) {
	r := newReader(buf)
	v := &GetMapReply{}
	r.skip(1)
	v.DeviceID = r.u8()
	v.Sequence = r.u16()
	v.Length = r.u32()
	r.skip(2)
	v.MinKeyCode = xproto.Keycode(r.u8())
	v.MaxKeyCode = xproto.Keycode(r.u8())
	v.Present = r.u16()
	v.FirstType = r.u8()
	v.NTypes = r.u8()
	v.TotalTypes = r.u8()
	v.FirstKeySym = xproto.Keycode(r.u8())
	v.TotalSyms = r.u16()
	v.NKeySyms = r.u8()
	v.FirstKeyAction = xproto.Keycode(r.u8())
	v.TotalActions = r.u16()
	v.NKeyActions = r.u8()
	v.FirstKeyBehavior = xproto.Keycode(r.u8())
	v.NKeyBehaviors = r.u8()
	v.TotalKeyBehaviors = r.u8()
	v.FirstKeyExplicit = xproto.Keycode(r.u8())
	v.NKeyExplicit = r.u8()
	v.TotalKeyExplicit = r.u8()
	v.FirstModMapKey = xproto.Keycode(r.u8())
	v.NModMapKeys = r.u8()
	v.TotalModMapKeys = r.u8()
	v.FirstVModMapKey = xproto.Keycode(r.u8())
	v.NVModMapKeys = r.u8()
	v.TotalVModMapKeys = r.u8()
	r.skip(1)
	v.VirtualMods = r.u16()

	if v.Present&MapPartKeyTypes != 0 {
		for i := 0; i < int(v.NTypes) && r.err == nil; i++ {
			v.Types = append(v.Types, readKeyType(r))
		}
	}
	if v.Present&MapPartKeySyms != 0 {
		for i := 0; i < int(v.NKeySyms) && r.err == nil; i++ {
			v.Syms = append(v.Syms, readKeySymMap(r))
		}
	}
	return v, r.err
}

func readKeyType(r *reader) KeyType {
	kt := KeyType{}
	kt.ModsMask = r.u8()
	kt.ModsMods = r.u8()
	kt.ModsVmods = r.u16()
	kt.NumLevels = r.u8()
	nMapEntries := int(r.u8())
	hasPreserve := r.u8() != 0
	r.skip(1)
	for i := 0; i < nMapEntries && r.err == nil; i++ {
		e := KTMapEntry{}
		e.Active = r.u8() != 0
		e.ModsMask = r.u8()
		e.Level = r.u8()
		e.ModsMods = r.u8()
		e.ModsVmods = r.u16()
		r.skip(2)
		kt.Map = append(kt.Map, e)
	}
	if hasPreserve {
		for i := 0; i < nMapEntries && r.err == nil; i++ {
			md := ModDef{}
			md.Mask = r.u8()
			md.RealMods = r.u8()
			md.Vmods = r.u16()
			kt.Preserve = append(kt.Preserve, md)
		}
	}
	return kt
}

func readKeySymMap(r *reader) KeySymMap {
	ksm := KeySymMap{}
	for i := range ksm.KtIndex {
		ksm.KtIndex[i] = r.u8()
	}
	ksm.GroupInfo = r.u8()
	ksm.Width = r.u8()
	nSyms := int(r.u16())
	for i := 0; i < nSyms && r.err == nil; i++ {
		ksm.Syms = append(ksm.Syms, xproto.Keysym(r.u32()))
	}
	return ksm
}

func getMapRequest(c *xgb.Conn, deviceSpec DeviceSpec, full uint16) []byte {
	// all "first/n" fields are zero: ignored by the server for the "full" parts
	buf := make([]byte, 28)
	b := putRequestHeader(c, buf, opGetMap)
	xgb.Put16(buf[b:], uint16(deviceSpec))
	b += 2
	xgb.Put16(buf[b:], full)
	return buf
}

//----------

func (v *GetMapReply) ClientMap() *ClientMap {
	return &ClientMap{
		MinKeyCode:  v.MinKeyCode,
		MaxKeyCode:  v.MaxKeyCode,
		FirstKeySym: v.FirstKeySym,
		Types:       v.Types,
		Syms:        v.Syms,
	}
}
