package xkb

import (
	"fmt"

	"github.com/BurntSushi/xgb"
)

// Sequential reader of reply bytes. The first out of bounds read sets err and all following reads return zero.
type reader struct {
	buf []byte
	off int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.buf) {
		r.err = fmt.Errorf("xkb: short reply: need %v bytes at offset %v, have %v", n, r.off, len(r.buf))
		return false
	}
	return true
}

func (r *reader) u8() byte {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := xgb.Get16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := xgb.Get32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

func (r *reader) align4() {
	if n := r.off % 4; n != 0 {
		r.skip(4 - n)
	}
}

func (r *reader) seek(off int) {
	if r.err != nil {
		return
	}
	if off > len(r.buf) {
		r.err = fmt.Errorf("xkb: short reply: seek to %v, have %v", off, len(r.buf))
		return
	}
	r.off = off
}
