package xinput

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/pkg/errors"
)

// Core keyboard mapping, spare keycode remapping and fake key events.
type XInput struct {
	conn *xgb.Conn
	root xproto.Window

	km    *KMap
	remap *Remapper

	// sends a fake event, replaced in tests
	fake func(typ byte, kc xproto.Keycode) error
}

func NewXInput(conn *xgb.Conn, remapSlots int) (*XInput, error) {
	if err := xtest.Init(conn); err != nil {
		return nil, errors.Wrap(err, "xtest init")
	}
	km, err := NewKMap(conn)
	if err != nil {
		return nil, errors.Wrap(err, "keyboard mapping")
	}
	xi := &XInput{conn: conn, km: km}
	xi.root = xproto.Setup(conn).DefaultScreen(conn).Root
	xi.remap = NewRemapper(km, remapSlots)
	xi.fake = xi.fakeInput
	return xi, nil
}

//----------

func (xi *XInput) KMap() *KMap          { return xi.km }
func (xi *XInput) Remapper() *Remapper { return xi.remap }

func (xi *XInput) ReadMapTable() error {
	if err := xi.km.ReadMapping(); err != nil {
		return err
	}
	xi.remap.Sync()
	return nil
}

//----------

func (xi *XInput) KeyPress(kc xproto.Keycode) error {
	return xi.fake(xproto.KeyPress, kc)
}
func (xi *XInput) KeyRelease(kc xproto.Keycode) error {
	return xi.fake(xproto.KeyRelease, kc)
}

// Presses the modifier keys of the rows, then the key, and releases all in reverse order.
func (xi *XInput) Tap(kc xproto.Keycode, modRows []int) error {
	mkcs := []xproto.Keycode{}
	for _, row := range modRows {
		if mkc := xi.km.ModifierKeycode(row); mkc != 0 {
			mkcs = append(mkcs, mkc)
		}
	}
	pressed := 0
	var err error
	for _, mkc := range mkcs {
		if err = xi.KeyPress(mkc); err != nil {
			break
		}
		pressed++
	}
	if err == nil {
		if err = xi.KeyPress(kc); err == nil {
			err = xi.KeyRelease(kc)
		}
	}
	for i := pressed - 1; i >= 0; i-- {
		if err2 := xi.KeyRelease(mkcs[i]); err2 != nil && err == nil {
			err = err2
		}
	}
	return err
}

func (xi *XInput) fakeInput(typ byte, kc xproto.Keycode) error {
	c := xtest.FakeInputChecked(xi.conn, typ, byte(kc), xproto.TimeCurrentTime, xi.root, 0, 0, 0)
	return c.Check()
}
