package main

import "github.com/jmigpin/virtkey"

// implements pflag.Value interface
// Names like altgr or super depend on the layout, so parsing waits for the backend.
type modMaskValue struct {
	s string
}

func (v *modMaskValue) Set(s string) error {
	v.s = s
	return nil
}

func (v *modMaskValue) String() string {
	if v.s == "" {
		return virtkey.ModMask(0).String()
	}
	return v.s
}

func (v *modMaskValue) Type() string {
	return "modmask"
}

func (v *modMaskValue) resolve(vk virtkey.Virtkey) (virtkey.ModMask, error) {
	return virtkey.ParseModMaskFor(vk, v.String())
}
