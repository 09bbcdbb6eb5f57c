package hostio

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sensorcode-go/drivers/lmp91000"
)

var _ lmp91000.Pin = (*Line)(nil)

type call struct {
	Op       string
	Addr     uint8
	Reg, Val uint8
}

type fakeConn struct {
	regs   map[uint8]uint8
	calls  []call
	err    error
	closed bool
}

func (f *fakeConn) ReadReg(addr, reg uint8) (uint8, error) {
	f.calls = append(f.calls, call{Op: "read", Addr: addr, Reg: reg})
	return f.regs[reg], f.err
}

func (f *fakeConn) WriteReg(addr, reg, v uint8) error {
	f.calls = append(f.calls, call{Op: "write", Addr: addr, Reg: reg, Val: v})
	if f.err == nil {
		f.regs[reg] = v
	}
	return f.err
}

func (f *fakeConn) Close() error { f.closed = true; return nil }

func TestSMBusDriverTransactions(t *testing.T) {
	f := &fakeConn{regs: map[uint8]uint8{0x00: 0x01, 0x01: 0x01, 0x10: 0x03}}
	s := &SMBus{conn: f}
	d := lmp91000.New(s, nil)

	v, err := d.ReadRegister(lmp91000.RegTIACN)
	if err != nil || v != 0x03 {
		t.Fatalf("read: 0x%02X %v", v, err)
	}
	if err := d.WriteRegister(lmp91000.RegMODECN, 0x03); err != nil {
		t.Fatal(err)
	}

	want := []call{
		{Op: "read", Addr: 0x48, Reg: 0x10},
		{Op: "write", Addr: 0x48, Reg: 0x12, Val: 0x03},
	}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSMBusCombinedRead(t *testing.T) {
	f := &fakeConn{regs: map[uint8]uint8{0x11: 0x20}}
	s := &SMBus{conn: f}
	r := make([]byte, 1)
	if err := s.Tx(0x48, []byte{0x11}, r); err != nil || r[0] != 0x20 {
		t.Fatalf("got 0x%02X %v", r[0], err)
	}
}

func TestSMBusRejects(t *testing.T) {
	s := &SMBus{conn: &fakeConn{regs: map[uint8]uint8{}}}
	if err := s.Tx(0x90, []byte{0x00}, nil); !errors.Is(err, ErrAddress) {
		t.Fatalf("8-bit address: %v", err)
	}
	if err := s.Tx(0x48, []byte{1, 2, 3}, nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("block write: %v", err)
	}
	if err := s.Tx(0x48, nil, make([]byte, 2)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("block read: %v", err)
	}
}

func TestSMBusErrorSurfacesAsBusError(t *testing.T) {
	f := &fakeConn{regs: map[uint8]uint8{}, err: errors.New("remote I/O error")}
	d := lmp91000.New(&SMBus{conn: f}, nil)
	if _, err := d.ReadRegister(lmp91000.RegStatus); !errors.Is(err, lmp91000.ErrBus) {
		t.Fatalf("want ErrBus, got %v", err)
	}
}

type fakeLine struct {
	values []int
	closed bool
}

func (f *fakeLine) SetValue(v int) error { f.values = append(f.values, v); return nil }
func (f *fakeLine) Close() error         { f.closed = true; return nil }

func TestLine(t *testing.T) {
	f := &fakeLine{}
	p := &Line{l: f}
	_ = p.ConfigureOutput(true)
	_ = p.Set(false)
	_ = p.Set(true)
	if diff := cmp.Diff([]int{1, 0, 1}, f.values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	_ = p.Close()
	if !f.closed {
		t.Fatal("not closed")
	}
}
