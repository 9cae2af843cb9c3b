package xutil

import (
	"reflect"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Tags can be used with: `loadAtoms:"atomname"`.
// "st" should be a pointer to a struct with xproto.Atom fields.
// "onlyIfExists" asks the x server to assign a value only if the atom exists.
func LoadAtoms(conn *xgb.Conn, st any, onlyIfExists bool) error {
	// request atoms
	// use reflection to get atoms names
	typ := reflect.Indirect(reflect.ValueOf(st)).Type()
	var cookies []xproto.InternAtomCookie
	for i := 0; i < typ.NumField(); i++ {
		name := AtomFieldName(typ.Field(i))
		// request value
		cookie := xproto.InternAtom(conn, onlyIfExists, uint16(len(name)), name)
		cookies = append(cookies, cookie)
	}
	// get atoms
	val := reflect.Indirect(reflect.ValueOf(st))
	for i := 0; i < val.NumField(); i++ {
		reply, err := cookies[i].Reply() // get value
		if err != nil {
			return err
		}
		v := val.Field(i)
		v.Set(reflect.ValueOf(reply.Atom))
	}
	return nil
}

func AtomFieldName(sf reflect.StructField) string {
	if tagStr := sf.Tag.Get("loadAtoms"); tagStr != "" {
		return tagStr
	}
	return sf.Name
}

//----------

func GetAtomName(conn *xgb.Conn, atom xproto.Atom) (string, error) {
	cookie := xproto.GetAtomName(conn, atom)
	r, err := cookie.Reply()
	if err != nil {
		return "", err
	}
	return r.Name, nil
}

//----------

// Atom names don't change during a server lifetime, the cache is only cleared on demand.
type AtomNames struct {
	conn *xgb.Conn
	get  func(*xgb.Conn, xproto.Atom) (string, error)

	mu sync.Mutex
	m  map[xproto.Atom]string
}

func NewAtomNames(conn *xgb.Conn) *AtomNames {
	return &AtomNames{conn: conn, get: GetAtomName, m: map[xproto.Atom]string{}}
}

// Returns "" for atom None.
func (an *AtomNames) Name(atom xproto.Atom) (string, error) {
	if atom == xproto.AtomNone {
		return "", nil
	}
	an.mu.Lock()
	defer an.mu.Unlock()
	if name, ok := an.m[atom]; ok {
		return name, nil
	}
	name, err := an.get(an.conn, atom)
	if err != nil {
		return "", err
	}
	an.m[atom] = name
	return name, nil
}

func (an *AtomNames) Clear() {
	an.mu.Lock()
	defer an.mu.Unlock()
	an.m = map[xproto.Atom]string{}
}
