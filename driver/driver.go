package driver

import (
	"github.com/jmigpin/virtkey"
	_ "github.com/jmigpin/virtkey/driver/xdriver"
)

// registered by driver/xdriver
const DefaultBackend = "x"

func NewVirtkey(opt *virtkey.Options) (virtkey.Virtkey, error) {
	return virtkey.Open(DefaultBackend, opt)
}
