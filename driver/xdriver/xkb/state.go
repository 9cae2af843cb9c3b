package xkb

import "github.com/BurntSushi/xgb"

type GetStateCookie struct {
	*xgb.Cookie
}

type GetStateReply struct {
	Sequence         uint16
	Length           uint32
	DeviceID         byte
	Mods             byte
	BaseMods         byte
	LatchedMods      byte
	LockedMods       byte
	Group            byte
	LockedGroup      byte
	BaseGroup        int16
	LatchedGroup     int16
	CompatState      byte
	GrabMods         byte
	CompatGrabMods   byte
	LookupMods       byte
	CompatLookupMods byte
	PtrBtnState      uint16
}

func GetState(c *xgb.Conn, deviceSpec DeviceSpec) GetStateCookie {
	checkInit(c)
	cookie := c.NewCookie(true, true)
	c.NewRequest(getStateRequest(c, deviceSpec), cookie)
	return GetStateCookie{cookie}
}

func (cook GetStateCookie) Reply() (*GetStateReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return getStateReply(buf)
}

func getStateReply(buf []byte) (*GetStateReply, error) {
	r := newReader(buf)
	v := &GetStateReply{}
	r.skip(1)
	v.DeviceID = r.u8()
	v.Sequence = r.u16()
	v.Length = r.u32()
	v.Mods = r.u8()
	v.BaseMods = r.u8()
	v.LatchedMods = r.u8()
	v.LockedMods = r.u8()
	v.Group = r.u8()
	v.LockedGroup = r.u8()
	v.BaseGroup = int16(r.u16())
	v.LatchedGroup = int16(r.u16())
	v.CompatState = r.u8()
	v.GrabMods = r.u8()
	v.CompatGrabMods = r.u8()
	v.LookupMods = r.u8()
	v.CompatLookupMods = r.u8()
	r.skip(1)
	v.PtrBtnState = r.u16()
	return v, r.err
}

func getStateRequest(c *xgb.Conn, deviceSpec DeviceSpec) []byte {
	buf := make([]byte, 8)
	b := putRequestHeader(c, buf, opGetState)
	xgb.Put16(buf[b:], uint16(deviceSpec))
	return buf
}

//----------

type LatchLockStateCookie struct {
	*xgb.Cookie
}

type LatchLock struct {
	AffectModLocks   byte
	ModLocks         byte
	LockGroup        bool
	GroupLock        byte
	AffectModLatches byte
	ModLatches       byte
	LatchGroup       bool
	GroupLatch       int16
}

// Write request to wire for LatchLockState.
func LatchLockState(c *xgb.Conn, deviceSpec DeviceSpec, ll *LatchLock) LatchLockStateCookie {
	checkInit(c)
	cookie := c.NewCookie(false, false)
	c.NewRequest(latchLockStateRequest(c, deviceSpec, ll), cookie)
	return LatchLockStateCookie{cookie}
}

// Same as LatchLockState, but the error can be obtained with Check().
func LatchLockStateChecked(c *xgb.Conn, deviceSpec DeviceSpec, ll *LatchLock) LatchLockStateCookie {
	checkInit(c)
	cookie := c.NewCookie(true, false)
	c.NewRequest(latchLockStateRequest(c, deviceSpec, ll), cookie)
	return LatchLockStateCookie{cookie}
}

func (cook LatchLockStateCookie) Check() error {
	return cook.Cookie.Check()
}

func latchLockStateRequest(c *xgb.Conn, deviceSpec DeviceSpec, ll *LatchLock) []byte {
	buf := make([]byte, 16)
	b := putRequestHeader(c, buf, opLatchLockState)
	xgb.Put16(buf[b:], uint16(deviceSpec))
	b += 2
	buf[b] = ll.AffectModLocks
	b++
	buf[b] = ll.ModLocks
	b++
	buf[b] = boolByte(ll.LockGroup)
	b++
	buf[b] = ll.GroupLock
	b++
	buf[b] = ll.AffectModLatches
	b++
	buf[b] = ll.ModLatches
	b++
	b++ // pad
	buf[b] = boolByte(ll.LatchGroup)
	b++
	xgb.Put16(buf[b:], uint16(ll.GroupLatch))
	return buf
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
