package lmp91000

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time checks.
var (
	_ drivers.I2C = (*fakeAFE)(nil)
	_ TimedI2C    = (*timedAFE)(nil)
)

var errFake = errors.New("nack")

// txn is one recorded bus transaction.
type txn struct {
	Addr uint16
	W    []byte
	R    int
}

func w(b ...byte) txn { return txn{Addr: Address, W: b} }
func rd() txn         { return txn{Addr: Address, R: 1} }

// fakeAFE simulates the LMP91000 register file with a register pointer set by
// the first written byte.
type fakeAFE struct {
	regs   [256]byte
	ptr    byte
	log    []txn
	failAt int // 1-based transaction index that returns errFake; 0 = never
}

func newFakeAFE() *fakeAFE {
	f := &fakeAFE{}
	f.regs[RegStatus] = 0x01
	f.regs[RegLock] = lockLocked
	f.regs[RegTIACN] = 0x03
	f.regs[RegREFCN] = 0x20
	f.regs[RegMODECN] = 0x00
	return f
}

func (f *fakeAFE) Tx(addr uint16, w, r []byte) error {
	t := txn{Addr: addr, R: len(r)}
	if len(w) > 0 {
		t.W = append([]byte(nil), w...)
	}
	f.log = append(f.log, t)
	if f.failAt == len(f.log) {
		return errFake
	}
	if len(w) > 0 {
		f.ptr = w[0]
	}
	if len(w) > 1 {
		f.regs[w[0]] = w[1]
	}
	if len(r) > 0 {
		r[0] = f.regs[f.ptr]
	}
	return nil
}

type timedAFE struct {
	*fakeAFE
	timeouts []int
}

func (t *timedAFE) TxTimeout(addr uint16, w, r []byte, timeoutMS int) error {
	t.timeouts = append(t.timeouts, timeoutMS)
	return t.fakeAFE.Tx(addr, w, r)
}

type fakePin struct {
	configured bool
	initial    bool
	levels     []bool
	err        error
	cfgErr     error
}

func (p *fakePin) ConfigureOutput(initial bool) error {
	if p.cfgErr != nil {
		return p.cfgErr
	}
	p.configured = true
	p.initial = initial
	return nil
}

func (p *fakePin) Set(high bool) error {
	if p.err != nil {
		return p.err
	}
	p.levels = append(p.levels, high)
	return nil
}

type sleepLog []time.Duration

func (s *sleepLog) sleep(d time.Duration) { *s = append(*s, d) }

func newTestDevice() (*Device, *fakeAFE, *fakePin, *sleepLog) {
	f := newFakeAFE()
	p := &fakePin{}
	s := &sleepLog{}
	return New(f, p, Config{Sleep: s.sleep}), f, p, s
}
