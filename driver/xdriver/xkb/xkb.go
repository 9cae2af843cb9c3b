// XKEYBOARD extension requests, written after the layout of the xgb generated extensions (which don't include xkb).
package xkb

// https://www.x.org/releases/X11R7.7/doc/kbproto/xkbproto.html
// Byte order is always little endian, as chosen by xgb at connection setup.

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

const (
	ExtName      = "XKEYBOARD"
	MajorVersion = 1
	MinorVersion = 0
)

type DeviceSpec uint16

const (
	IDUseCoreKbd DeviceSpec = 0x100
	IDUseCorePtr DeviceSpec = 0x200
)

// request opcodes
const (
	opUseExtension   = 0
	opGetState       = 4
	opLatchLockState = 5
	opGetMap         = 8
	opGetNames       = 17
)

// Init must be called before any request of this package is used.
func Init(c *xgb.Conn) error {
	reply, err := xproto.QueryExtension(c, uint16(len(ExtName)), ExtName).Reply()
	switch {
	case err != nil:
		return err
	case !reply.Present:
		return xgb.Errorf("No extension named %v could be found on on the server.", ExtName)
	}

	c.ExtLock.Lock()
	c.Extensions[ExtName] = reply.MajorOpcode
	c.ExtLock.Unlock()
	for errNum, fun := range xgb.NewExtErrorFuncs[ExtName] {
		xgb.NewErrorFuncs[int(reply.FirstError)+errNum] = fun
	}
	return nil
}

func init() {
	xgb.NewExtErrorFuncs[ExtName] = map[int]xgb.NewErrorFun{
		BadKeyboard: KeyboardErrorNew,
	}
}

func checkInit(c *xgb.Conn) {
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	if _, ok := c.Extensions[ExtName]; !ok {
		panic("Cannot issue request '" + ExtName + "' using the uninitialized extension. xkb.Init(connObj) must be called first.")
	}
}

// writes the extension opcode, the request opcode and the size
func putRequestHeader(c *xgb.Conn, buf []byte, op byte) int {
	c.ExtLock.RLock()
	buf[0] = c.Extensions[ExtName]
	c.ExtLock.RUnlock()
	buf[1] = op
	xgb.Put16(buf[2:], uint16(len(buf)/4)) // request size in 4-byte units
	return 4
}

//----------

// BadKeyboard is the error number for a KeyboardError.
const BadKeyboard = 0

// Bad device spec, or a device without the requested feature.
type KeyboardError struct {
	Sequence    uint16
	NiceName    string
	Value       uint32
	MinorOpcode uint16
	MajorOpcode byte
}

// KeyboardErrorNew constructs a KeyboardError value that implements xgb.Error from a byte slice.
func KeyboardErrorNew(buf []byte) xgb.Error {
	v := KeyboardError{NiceName: "Keyboard"}

	b := 1 // skip error determinant
	b += 1 // don't read error number

	v.Sequence = xgb.Get16(buf[b:])
	b += 2
	v.Value = xgb.Get32(buf[b:])
	b += 4
	v.MinorOpcode = xgb.Get16(buf[b:])
	b += 2
	v.MajorOpcode = buf[b]
	return v
}

func (err KeyboardError) SequenceId() uint16 {
	return err.Sequence
}

func (err KeyboardError) BadId() uint32 {
	return err.Value
}

func (err KeyboardError) Error() string {
	return xgb.Sprintf("BadKeyboard {NiceName: %v, Sequence: %d, Value: %#x, MinorOpcode: %d, MajorOpcode: %d}",
		err.NiceName, err.Sequence, err.Value, err.MinorOpcode, err.MajorOpcode)
}

//----------

type UseExtensionCookie struct {
	*xgb.Cookie
}

type UseExtensionReply struct {
	Sequence    uint16
	Length      uint32
	Supported   bool
	ServerMajor uint16
	ServerMinor uint16
}

func UseExtension(c *xgb.Conn, wantedMajor, wantedMinor uint16) UseExtensionCookie {
	checkInit(c)
	cookie := c.NewCookie(true, true)
	c.NewRequest(useExtensionRequest(c, wantedMajor, wantedMinor), cookie)
	return UseExtensionCookie{cookie}
}

func (cook UseExtensionCookie) Reply() (*UseExtensionReply, error) {
	buf, err := cook.Cookie.Reply()
	if err != nil {
		return nil, err
	}
	if buf == nil {
		return nil, nil
	}
	return useExtensionReply(buf)
}

func useExtensionReply(buf []byte) (*UseExtensionReply, error) {
	r := newReader(buf)
	v := &UseExtensionReply{}
	r.skip(1)
	v.Supported = r.u8() != 0
	v.Sequence = r.u16()
	v.Length = r.u32()
	v.ServerMajor = r.u16()
	v.ServerMinor = r.u16()
	return v, r.err
}

func useExtensionRequest(c *xgb.Conn, wantedMajor, wantedMinor uint16) []byte {
	buf := make([]byte, 8)
	b := putRequestHeader(c, buf, opUseExtension)
	xgb.Put16(buf[b:], wantedMajor)
	b += 2
	xgb.Put16(buf[b:], wantedMinor)
	return buf
}
