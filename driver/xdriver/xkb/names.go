package xkb

import (
	"math/bits"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// name details (GetNames "which")
const (
	NameDetailKeycodes        = 1 << 0
	NameDetailGeometry        = 1 << 1
	NameDetailSymbols         = 1 << 2
	NameDetailPhysSymbols     = 1 << 3
	NameDetailTypes           = 1 << 4
	NameDetailCompat          = 1 << 5
	NameDetailKeyTypeNames    = 1 << 6
	NameDetailKTLevelNames    = 1 << 7
	NameDetailIndicatorNames  = 1 << 8
	NameDetailKeyNames        = 1 << 9
	NameDetailKeyAliases      = 1 << 10
	NameDetailVirtualModNames = 1 << 11
	NameDetailGroupNames      = 1 << 12
	NameDetailRGNames         = 1 << 13

	NameDetailAll = 1<<14 - 1
)

const NumKbdGroups = 4

type KeyAlias struct {
	Real  [4]byte
	Alias [4]byte
}

type GetNamesCookie struct {
	*xgb.Cookie
}

type GetNamesReply struct {
	Sequence     uint16
	Length       uint32
	DeviceID     byte
	Which        uint32
	MinKeyCode   xproto.Keycode
	MaxKeyCode   xproto.Keycode
	NTypes       byte
	GroupNames   byte // groups that have a name
	VirtualMods  uint16
	FirstKey     xproto.Keycode
	NKeys        byte
	Indicators   uint32
	NRadioGroups byte
	NKeyAliases  byte
	NKTLevels    uint16

	KeycodesName    xproto.Atom
	GeometryName    xproto.Atom
	SymbolsName     xproto.Atom
	PhysSymbolsName xproto.Atom
	TypesName       xproto.Atom
	CompatName      xproto.Atom
	TypeNames       []xproto.Atom
	NLevelsPerType  []byte
	KTLevelNames    []xproto.Atom
	IndicatorNames  []xproto.Atom
	VirtualModNames []xproto.Atom
	Groups          [NumKbdGroups]xproto.Atom // indexed by group, zero if not named
	KeyNames        [][4]byte
	KeyAliases      []KeyAlias
	RadioGroupNames []xproto.Atom
}

func GetNames(c *xgb.Conn, deviceSpec DeviceSpec, which uint32) GetNamesCookie {
	checkInit(c)
	cookie := c.NewCookie(true, true)
	c.NewRequest(getNamesRequest(c, deviceSpec, which), cookie)
	return GetNamesCookie{cookie}
}

func (cook GetNamesCookie) Reply() (*GetNamesReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return getNamesReply(buf)
}

func getNamesReply(buf []byte) (*GetNamesReply, error) {
	r := newReader(buf)
	v := &GetNamesReply{}
	r.skip(1)
	v.DeviceID = r.u8()
	v.Sequence = r.u16()
	v.Length = r.u32()
	v.Which = r.u32()
	v.MinKeyCode = xproto.Keycode(r.u8())
	v.MaxKeyCode = xproto.Keycode(r.u8())
	v.NTypes = r.u8()
	v.GroupNames = r.u8()
	v.VirtualMods = r.u16()
	v.FirstKey = xproto.Keycode(r.u8())
	v.NKeys = r.u8()
	v.Indicators = r.u32()
	v.NRadioGroups = r.u8()
	v.NKeyAliases = r.u8()
	v.NKTLevels = r.u16()
	r.skip(4)

	// value list, in protocol order
	atom := func(bit uint32, dst *xproto.Atom) {
		if v.Which&bit != 0 {
			*dst = xproto.Atom(r.u32())
		}
	}
	atoms := func(n int) []xproto.Atom {
		u := make([]xproto.Atom, 0, n)
		for i := 0; i < n && r.err == nil; i++ {
			u = append(u, xproto.Atom(r.u32()))
		}
		return u
	}
	atom(NameDetailKeycodes, &v.KeycodesName)
	atom(NameDetailGeometry, &v.GeometryName)
	atom(NameDetailSymbols, &v.SymbolsName)
	atom(NameDetailPhysSymbols, &v.PhysSymbolsName)
	atom(NameDetailTypes, &v.TypesName)
	atom(NameDetailCompat, &v.CompatName)
	if v.Which&NameDetailKeyTypeNames != 0 {
		v.TypeNames = atoms(int(v.NTypes))
	}
	if v.Which&NameDetailKTLevelNames != 0 {
		v.NLevelsPerType = make([]byte, 0, v.NTypes)
		sum := 0
		for i := 0; i < int(v.NTypes) && r.err == nil; i++ {
			n := r.u8()
			v.NLevelsPerType = append(v.NLevelsPerType, n)
			sum += int(n)
		}
		r.align4()
		v.KTLevelNames = atoms(sum)
	}
	if v.Which&NameDetailIndicatorNames != 0 {
		v.IndicatorNames = atoms(bits.OnesCount32(v.Indicators))
	}
	if v.Which&NameDetailVirtualModNames != 0 {
		v.VirtualModNames = atoms(bits.OnesCount16(v.VirtualMods))
	}
	if v.Which&NameDetailGroupNames != 0 {
		for g := 0; g < NumKbdGroups; g++ {
			if v.GroupNames&(1<<uint(g)) != 0 {
				v.Groups[g] = xproto.Atom(r.u32())
			}
		}
	}
	if v.Which&NameDetailKeyNames != 0 {
		for i := 0; i < int(v.NKeys) && r.err == nil; i++ {
			var kn [4]byte
			for j := range kn {
				kn[j] = r.u8()
			}
			v.KeyNames = append(v.KeyNames, kn)
		}
	}
	if v.Which&NameDetailKeyAliases != 0 {
		for i := 0; i < int(v.NKeyAliases) && r.err == nil; i++ {
			ka := KeyAlias{}
			for j := range ka.Real {
				ka.Real[j] = r.u8()
			}
			for j := range ka.Alias {
				ka.Alias[j] = r.u8()
			}
			v.KeyAliases = append(v.KeyAliases, ka)
		}
	}
	if v.Which&NameDetailRGNames != 0 {
		v.RadioGroupNames = atoms(int(v.NRadioGroups))
	}
	return v, r.err
}

func getNamesRequest(c *xgb.Conn, deviceSpec DeviceSpec, which uint32) []byte {
	buf := make([]byte, 12)
	b := putRequestHeader(c, buf, opGetNames)
	xgb.Put16(buf[b:], uint16(deviceSpec))
	b += 2
	b += 2 // pad
	xgb.Put32(buf[b:], which)
	return buf
}

//----------

// Name atom of the group, zero if the group has no name.
func (v *GetNamesReply) GroupName(group int) xproto.Atom {
	if group < 0 || group >= NumKbdGroups {
		return 0
	}
	return v.Groups[group]
}

func (v *GetNamesReply) HasGroupNames() bool {
	return v.Which&NameDetailGroupNames != 0 && v.GroupNames != 0
}
