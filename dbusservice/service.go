// Exports a virtkey backend on the D-Bus session bus.
package dbusservice

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	BusName   = "org.jmigpin.Virtkey"
	Path      = dbus.ObjectPath("/org/jmigpin/Virtkey")
	Interface = "org.jmigpin.Virtkey"
)

type Service struct {
	log  *logrus.Logger
	obj  *object
	conn *dbus.Conn

	closeOnce sync.Once
}

func New(vk virtkey.Virtkey, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{log: log, obj: &object{vk: vk, log: log}}
}

// Connects to the session bus, takes the bus name and exports the object.
func (s *Service) Start() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return errors.Wrap(err, "session bus")
	}
	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "request name")
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return errors.Errorf("bus name already taken: %v", BusName)
	}
	if err := s.Export(conn); err != nil {
		conn.Close()
		return err
	}
	s.conn = conn
	s.log.WithField("name", BusName).Info("dbus service started")
	return nil
}

func (s *Service) Export(conn *dbus.Conn) error {
	if err := conn.Export(s.obj, Path, Interface); err != nil {
		return errors.Wrap(err, "export")
	}
	node := &introspect.Node{
		Name: string(Path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: Interface, Methods: introspect.Methods(s.obj)},
		},
	}
	err := conn.Export(introspect.NewIntrospectable(node), Path, "org.freedesktop.DBus.Introspectable")
	return errors.Wrap(err, "export introspectable")
}

func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}

//----------

// Methods exported on the bus.
type object struct {
	vk  virtkey.Virtkey
	log *logrus.Logger
}

func (o *object) CurrentGroup() (int32, *dbus.Error) {
	g, err := o.vk.CurrentGroup()
	return int32(g), o.dbusError("CurrentGroup", err)
}

func (o *object) CurrentGroupName() (string, *dbus.Error) {
	s, err := o.vk.CurrentGroupName()
	return s, o.dbusError("CurrentGroupName", err)
}

func (o *object) LayoutSymbols() (string, *dbus.Error) {
	s, err := o.vk.LayoutSymbols()
	return s, o.dbusError("LayoutSymbols", err)
}

func (o *object) RulesNames() ([]string, *dbus.Error) {
	rn, err := o.vk.RulesNames()
	if err != nil {
		return nil, o.dbusError("RulesNames", err)
	}
	return rn.Strings(), nil
}

func (o *object) KeysymFromKeycode(kc, mods byte, group int32) (uint32, *dbus.Error) {
	ks, err := o.vk.KeysymFromKeycode(virtkey.Keycode(kc), virtkey.ModMask(mods), int(group))
	return uint32(ks), o.dbusError("KeysymFromKeycode", err)
}

func (o *object) LabelFromKeycode(kc, mods byte, group int32) (string, *dbus.Error) {
	s, err := o.vk.LabelFromKeycode(virtkey.Keycode(kc), virtkey.ModMask(mods), int(group))
	return s, o.dbusError("LabelFromKeycode", err)
}

// Returns the keycode and the modifiers to hold.
func (o *object) KeycodeFromKeysym(ks uint32) (byte, byte, *dbus.Error) {
	kc, mods, err := o.vk.KeycodeFromKeysym(keysym.Keysym(ks))
	return byte(kc), byte(mods), o.dbusError("KeycodeFromKeysym", err)
}

func (o *object) SetModifiers(mods byte, lock, press bool) *dbus.Error {
	err := o.vk.SetModifiers(virtkey.ModMask(mods), lock, press)
	return o.dbusError("SetModifiers", err)
}

// Same as SetModifiers, with names like "shift|altgr" resolved on the current layout.
func (o *object) SetModifiersByName(names string, lock, press bool) *dbus.Error {
	mods, err := virtkey.ParseModMaskFor(o.vk, names)
	if err == nil {
		err = o.vk.SetModifiers(mods, lock, press)
	}
	return o.dbusError("SetModifiersByName", err)
}

// Mask of the modifier names on the current layout.
func (o *object) ModifierMask(names string) (byte, *dbus.Error) {
	mods, err := virtkey.ParseModMaskFor(o.vk, names)
	return byte(mods), o.dbusError("ModifierMask", err)
}

func (o *object) SendKeysym(ks uint32) *dbus.Error {
	err := virtkey.SendKeysym(o.vk, keysym.Keysym(ks))
	return o.dbusError("SendKeysym", err)
}

func (o *object) SendString(s string) *dbus.Error {
	err := virtkey.SendString(o.vk, s)
	return o.dbusError("SendString", err)
}

func (o *object) Reload() *dbus.Error {
	err := o.vk.Reload()
	return o.dbusError("Reload", err)
}

func (o *object) dbusError(method string, err error) *dbus.Error {
	if err == nil {
		return nil
	}
	o.log.WithError(err).WithField("method", method).Debug("dbus call failed")
	return dbus.NewError(ErrorName(err), []interface{}{err.Error()})
}

//----------

var errorNames = []struct {
	err  error
	name string
}{
	{virtkey.ErrNotX, "NotX"},
	{virtkey.ErrNoXkb, "NoXkb"},
	{virtkey.ErrNoGroupNames, "NoGroupNames"},
	{virtkey.ErrNoSymbolsNames, "NoSymbolsNames"},
	{virtkey.ErrNoRulesNames, "NoRulesNames"},
	{virtkey.ErrKeycodeRange, "KeycodeRange"},
	{virtkey.ErrNoFreeSlot, "NoFreeSlot"},
	{virtkey.ErrClosed, "Closed"},
}

// D-Bus error name for the error: Interface + ".Error." + sentinel name, or "Failed".
func ErrorName(err error) string {
	for _, en := range errorNames {
		if virtkey.Is(err, en.err) {
			return Interface + ".Error." + en.name
		}
	}
	return Interface + ".Error.Failed"
}
