package xdriver

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/driver/xdriver/xinput"
	"github.com/jmigpin/virtkey/driver/xdriver/xkb"
	"github.com/jmigpin/virtkey/driver/xdriver/xutil"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func init() {
	virtkey.Register("x", func(opt *virtkey.Options) (virtkey.Virtkey, error) {
		vk, err := NewVirtkey(opt)
		if err != nil {
			return nil, err
		}
		return vk, nil
	})
}

//----------

const device = xkb.IDUseCoreKbd

// names read from the keyboard description
const namesWhich = 0 |
	xkb.NameDetailKeycodes |
	xkb.NameDetailGeometry |
	xkb.NameDetailSymbols |
	xkb.NameDetailPhysSymbols |
	xkb.NameDetailTypes |
	xkb.NameDetailCompat |
	xkb.NameDetailIndicatorNames |
	xkb.NameDetailVirtualModNames |
	xkb.NameDetailGroupNames |
	0

type Virtkey struct {
	Conn *xgb.Conn
	Root xproto.Window

	opt *virtkey.Options
	log *logrus.Logger

	atoms struct {
		RulesNames xproto.Atom `loadAtoms:"_XKB_RULES_NAMES"`
	}
	names *xutil.AtomNames

	mu     sync.Mutex
	closed bool
	desc   *description
	xi     *xinput.XInput
	remap  *xinput.Remapper

	stale     atomic.Bool // set by the event loop on mapping changes
	closeOnce sync.Once
}

func NewVirtkey(opt *virtkey.Options) (*Virtkey, error) {
	if opt == nil {
		opt = &virtkey.Options{}
	}
	opt.Normalize()

	display := opt.Display
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		// wayland session without xwayland, or no session at all
		return nil, virtkey.ErrNotX
	}

	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		err2 := errors.Wrap(err, "x conn")
		return nil, err2
	}

	vk := &Virtkey{
		Conn: conn,
		opt:  opt,
		log:  opt.Logger,
	}
	if err := vk.initialize(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "virtkey init")
	}

	go vk.eventLoop()

	return vk, nil
}

func (vk *Virtkey) initialize() error {
	si := xproto.Setup(vk.Conn)
	vk.Root = si.DefaultScreen(vk.Conn).Root

	if err := xkb.Init(vk.Conn); err != nil {
		return errors.Wrap(virtkey.ErrNoXkb, err.Error())
	}
	ue, err := xkb.UseExtension(vk.Conn, xkb.MajorVersion, xkb.MinorVersion).Reply()
	if err != nil {
		return errors.Wrap(err, "xkb use extension")
	}
	if ue == nil {
		return virtkey.ErrNoXkb
	}
	if !ue.Supported {
		return errors.Wrapf(virtkey.ErrNoXkb, "server version %v.%v", ue.ServerMajor, ue.ServerMinor)
	}

	if err := xutil.LoadAtoms(vk.Conn, &vk.atoms, false); err != nil {
		return err
	}
	vk.names = xutil.NewAtomNames(vk.Conn)

	xi, err := xinput.NewXInput(vk.Conn, vk.opt.RemapSlots)
	if err != nil {
		return err
	}
	vk.xi = xi
	vk.remap = xi.Remapper()

	desc, err := readDescription(vk.Conn)
	if err != nil {
		return err
	}
	vk.desc = desc

	vk.log.WithFields(logrus.Fields{
		"xkb":        []uint16{ue.ServerMajor, ue.ServerMinor},
		"keycodes":   []xproto.Keycode{desc.cmap.MinKeyCode, desc.cmap.MaxKeyCode},
		"remapSlots": len(vk.remap.Slots()),
	}).Debug("virtkey: x backend ready")
	return nil
}

//----------

func (vk *Virtkey) Close() error {
	var err error
	vk.closeOnce.Do(func() {
		vk.mu.Lock()
		vk.closed = true
		err = vk.remap.Restore()
		vk.mu.Unlock()
		if err != nil {
			vk.log.WithError(err).Warn("virtkey: restore remapped keycodes")
		}
		vk.Conn.Close()
	})
	return err
}

func (vk *Virtkey) eventLoop() {
	for {
		ev, xerr := vk.Conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return // connection closed
		}
		if xerr != nil {
			vk.log.WithError(xerr).Debug("virtkey: x error")
		}
		if ev != nil {
			vk.handleEvent(ev)
		}
	}
}

func (vk *Virtkey) handleEvent(ev xgb.Event) {
	switch t := ev.(type) {
	case xproto.MappingNotifyEvent: // keyboard mapping
		if t.Request == xproto.MappingKeyboard || t.Request == xproto.MappingModifier {
			vk.stale.Store(true)
		}
	}
}

//----------

func (vk *Virtkey) Reload() error {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if vk.closed {
		return virtkey.ErrClosed
	}
	return vk.reload()
}

func (vk *Virtkey) reload() error {
	if err := vk.xi.ReadMapTable(); err != nil {
		return errors.Wrap(err, "read core mapping")
	}
	desc, err := readDescription(vk.Conn)
	if err != nil {
		return err
	}
	vk.desc = desc
	vk.log.Debug("virtkey: keyboard description reloaded")
	return nil
}

// Must be called with the lock held.
func (vk *Virtkey) ready() error {
	if vk.closed {
		return virtkey.ErrClosed
	}
	if vk.stale.Swap(false) {
		if err := vk.reload(); err != nil {
			vk.stale.Store(true)
			return err
		}
	}
	return nil
}

//----------

func (vk *Virtkey) CurrentGroup() (int, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return 0, err
	}
	return vk.currentGroup()
}

func (vk *Virtkey) currentGroup() (int, error) {
	st, err := xkb.GetState(vk.Conn, device).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "xkb get state")
	}
	return int(st.LockedGroup), nil
}

func (vk *Virtkey) CurrentGroupName() (string, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return "", err
	}
	if !vk.desc.names.HasGroupNames() {
		return "", virtkey.ErrNoGroupNames
	}
	g, err := vk.currentGroup()
	if err != nil {
		return "", err
	}
	return vk.desc.groupName(vk.names, g)
}

func (vk *Virtkey) KeysymFromKeycode(kc virtkey.Keycode, mods virtkey.ModMask, group int) (keysym.Keysym, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return 0, err
	}
	return vk.desc.translate(kc, mods, group)
}

func (vk *Virtkey) LabelFromKeycode(kc virtkey.Keycode, mods virtkey.ModMask, group int) (string, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return "", err
	}
	ks, err := vk.desc.translate(kc, mods, group)
	if err != nil {
		return "", err
	}
	return label(ks, vk.opt.Labels), nil
}

func (vk *Virtkey) KeycodeFromKeysym(ks keysym.Keysym) (virtkey.Keycode, virtkey.ModMask, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return 0, 0, err
	}
	group, err := vk.currentGroup()
	if err != nil {
		return 0, 0, err
	}
	return vk.keycodeFromKeysym(ks, group)
}

// Must be called with the lock held.
func (vk *Virtkey) keycodeFromKeysym(ks keysym.Keysym, group int) (virtkey.Keycode, virtkey.ModMask, error) {
	if ks == keysym.NoSymbol {
		return 0, 0, errors.New("no symbol")
	}
	if kc := vk.desc.cmap.KeysymToKeycode(xproto.Keysym(ks)); kc != 0 {
		if mods, ok := vk.desc.levelMods(kc, group, ks); ok {
			return virtkey.Keycode(kc), mods, nil
		}
	}

	if len(vk.remap.Slots()) == 0 {
		return 0, 0, errors.Wrapf(virtkey.ErrNoFreeSlot, "keysym %v", ks)
	}
	kc, err := vk.remap.Remap(xproto.Keysym(ks))
	if err != nil {
		return 0, 0, errors.Wrap(err, "remap")
	}
	vk.log.WithFields(logrus.Fields{"keysym": ks, "keycode": kc}).Debug("virtkey: remapped")

	// the server mapping changed, the xkb map is re-read before the next lookup
	vk.stale.Store(true)
	return virtkey.Keycode(kc), 0, nil
}

func (vk *Virtkey) RulesNames() (*virtkey.RulesNames, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if vk.closed {
		return nil, virtkey.ErrClosed
	}
	u, err := xutil.ReadRulesNames(vk.Conn, vk.Root, vk.atoms.RulesNames)
	if err != nil {
		if err == xutil.ErrPropertyNotFound {
			return nil, virtkey.ErrNoRulesNames
		}
		return nil, errors.Wrap(err, "rules names")
	}
	rn := &virtkey.RulesNames{
		Rules:   u[0],
		Model:   u[1],
		Layout:  u[2],
		Variant: u[3],
		Options: u[4],
	}
	return rn, nil
}

func (vk *Virtkey) LayoutSymbols() (string, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return "", err
	}
	atom := vk.desc.names.SymbolsName
	if atom == xproto.AtomNone {
		return "", virtkey.ErrNoSymbolsNames
	}
	return vk.names.Name(atom)
}

func (vk *Virtkey) SetModifiers(mods virtkey.ModMask, lock, press bool) error {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if vk.closed {
		return virtkey.ErrClosed
	}
	ll := modifiersRequest(mods, lock, press)
	if err := xkb.LatchLockStateChecked(vk.Conn, device, ll).Check(); err != nil {
		return errors.Wrap(err, "xkb latch lock state")
	}
	return nil
}

func (vk *Virtkey) SendKeycode(kc virtkey.Keycode, press bool) error {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if vk.closed {
		return virtkey.ErrClosed
	}
	if press {
		return vk.xi.KeyPress(xproto.Keycode(kc))
	}
	return vk.xi.KeyRelease(xproto.Keycode(kc))
}

// Holds the modifier keys of the mask around the key tap.
func (vk *Virtkey) TapKeycode(kc virtkey.Keycode, mods virtkey.ModMask) error {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if vk.closed {
		return virtkey.ErrClosed
	}
	rows := []int{}
	for i := 0; i < xinput.NumModIndices; i++ {
		if mods&(1<<uint(i)) != 0 {
			rows = append(rows, i)
		}
	}
	return vk.xi.Tap(xproto.Keycode(kc), rows)
}

// Modifier rows detected from the core modifier mapping.
func (vk *Virtkey) ModifierIndices() (*virtkey.ModifierIndices, error) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	if err := vk.ready(); err != nil {
		return nil, err
	}
	return vk.xi.KMap().ModifierIndices(), nil
}

//----------

// Core keysym table, for debugging.
func (vk *Virtkey) KeysymTable() string {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	return vk.xi.KMap().TableString()
}

// Keyboard description, for debugging.
func (vk *Virtkey) Description() (*xkb.ClientMap, *xkb.GetNamesReply) {
	vk.mu.Lock()
	defer vk.mu.Unlock()
	return vk.desc.cmap, vk.desc.names
}

//----------

func modifiersRequest(mods virtkey.ModMask, lock, press bool) *xkb.LatchLock {
	value := byte(0)
	if press {
		value = byte(mods)
	}
	ll := &xkb.LatchLock{}
	if lock {
		ll.AffectModLocks = byte(mods)
		ll.ModLocks = value
	} else {
		ll.AffectModLatches = byte(mods)
		ll.ModLatches = value
	}
	return ll
}

func label(ks keysym.Keysym, overrides map[keysym.Keysym]string) string {
	if ks == keysym.NoSymbol {
		return ""
	}
	if s, ok := overrides[ks]; ok {
		return s
	}
	return keysym.Label(ks)
}
