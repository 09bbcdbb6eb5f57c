// Package hostio adapts Linux userspace I²C and GPIO to the interfaces the
// lmp91000 driver consumes.
package hostio

import (
	"errors"

	"github.com/go-daq/smbus"
	"tinygo.org/x/drivers"
)

var (
	ErrAddress     = errors.New("hostio: address out of 7-bit range")
	ErrUnsupported = errors.New("hostio: transfer shape not supported over SMBus")
)

// regConn is the subset of *smbus.Conn used by SMBus.
type regConn interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
	Close() error
}

var _ drivers.I2C = (*SMBus)(nil)

// SMBus maps byte-register transfers onto SMBus read/write-byte-data.
//
// A lone one-byte write only latches the register pointer locally; the
// following one-byte read is issued as ReadReg on that pointer.
type SMBus struct {
	conn regConn
	ptr  uint8
}

// OpenSMBus opens /dev/i2c-<bus> and binds it to addr.
func OpenSMBus(bus int, addr uint8) (*SMBus, error) {
	c, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, err
	}
	return &SMBus{conn: c}, nil
}

func (s *SMBus) Close() error { return s.conn.Close() }

func (s *SMBus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return ErrAddress
	}
	a := uint8(addr)

	switch {
	case len(w) == 1 && len(r) == 0:
		s.ptr = w[0]
		return nil
	case len(w) == 2 && len(r) == 0:
		s.ptr = w[0]
		return s.conn.WriteReg(a, w[0], w[1])
	case len(w) <= 1 && len(r) == 1:
		if len(w) == 1 {
			s.ptr = w[0]
		}
		v, err := s.conn.ReadReg(a, s.ptr)
		if err != nil {
			return err
		}
		r[0] = v
		return nil
	default:
		return ErrUnsupported
	}
}
