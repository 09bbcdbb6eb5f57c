// Package lmp91000 provides a driver for the TI LMP91000 configurable analog
// front-end for low-power electrochemical sensing.
//
// The chip is configured through five 8-bit registers over I2C. TIACN and
// REFCN are write-protected by the LOCK register; every setter here brackets
// its write with its own unlock/lock so setters can be called in any order:
//
//	d, err := lmp91000.Initialize(machine.I2C0, menb)
//	err = d.SetTIAConfig(lmp91000.Gain35K, lmp91000.Load10)
//	err = d.SetReferenceConfig(lmp91000.RefInternal, lmp91000.Zero50)
//	err = d.SetBiasConfig(lmp91000.BiasPositive, lmp91000.Bias0)
//	err = d.SetMode(lmp91000.ModeThreeLead)
//
// If a bracketed sequence fails part-way, it stops at the failing step; the
// chip may be left unlocked and the caller may call Lock to restore it.
//
// The driver does no locking of its own. A Device must be owned by a single
// goroutine or guarded by the caller.
package lmp91000

import (
	"time"

	"tinygo.org/x/drivers"
)

// Pin drives the active-low MENB input. High disables the chip.
type Pin interface {
	ConfigureOutput(initial bool) error
	Set(high bool) error
}

// TimedI2C is implemented by transports that take a per-transaction timeout.
// When the bus implements it the driver passes TxTimeoutMS on every call.
type TimedI2C interface {
	TxTimeout(addr uint16, w, r []byte, timeoutMS int) error
}

// Config holds optional settings. The zero value selects the defaults.
type Config struct {
	// Address defaults to 0x48.
	Address uint16
	// TimeoutMS defaults to TxTimeoutMS. Only used with TimedI2C transports.
	TimeoutMS int
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Device is a handle to one LMP91000.
type Device struct {
	bus       drivers.I2C
	pin       Pin
	addr      uint16
	timeoutMS int
	sleep     func(time.Duration)

	// Scratch buffers; no register contents are cached between calls.
	w [2]byte
	r [1]byte
}

// New creates a Device without touching the hardware.
func New(bus drivers.I2C, pin Pin, cfgs ...Config) *Device {
	d := &Device{
		bus:       bus,
		pin:       pin,
		addr:      Address,
		timeoutMS: TxTimeoutMS,
		sleep:     time.Sleep,
	}
	if len(cfgs) > 0 {
		c := cfgs[0]
		if c.Address != 0 {
			d.addr = c.Address
		}
		if c.TimeoutMS > 0 {
			d.timeoutMS = c.TimeoutMS
		}
		if c.Sleep != nil {
			d.sleep = c.Sleep
		}
	}
	return d
}

// Initialize creates a Device and runs the power-up sequence (see Configure).
// On ErrNotReady or a bus error the Device is still returned so the caller
// may poll Ready or retry Configure.
func Initialize(bus drivers.I2C, pin Pin, cfgs ...Config) (*Device, error) {
	if bus == nil || pin == nil {
		return nil, ErrArgument
	}
	d := New(bus, pin, cfgs...)
	return d, d.Configure()
}

// Configure sets MENB as an output, power-cycles the chip (disable, 10 ms,
// enable, 10 ms) and checks the STATUS ready bit.
func (d *Device) Configure() error {
	if d == nil || d.bus == nil || d.pin == nil {
		return ErrArgument
	}
	if err := d.pin.ConfigureOutput(true); err != nil {
		return &PinError{Op: "configure", Err: err}
	}
	if err := d.setMENB(true); err != nil {
		return err
	}
	d.sleep(powerUpDelay)
	if err := d.setMENB(false); err != nil {
		return err
	}
	d.sleep(powerUpDelay)

	ok, err := d.Ready()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotReady
	}
	return nil
}

// Enable drives MENB low and waits 1 ms. Readiness is not re-checked.
func (d *Device) Enable() error {
	if d == nil || d.pin == nil {
		return ErrArgument
	}
	if err := d.setMENB(false); err != nil {
		return err
	}
	d.sleep(enableDelay)
	return nil
}

// Disable drives MENB high.
func (d *Device) Disable() error {
	if d == nil || d.pin == nil {
		return ErrArgument
	}
	return d.setMENB(true)
}

// Status returns the raw STATUS register.
func (d *Device) Status() (byte, error) { return d.ReadRegister(RegStatus) }

// Ready reports whether the STATUS ready bit is set.
func (d *Device) Ready() (bool, error) {
	st, err := d.Status()
	if err != nil {
		return false, err
	}
	return st&statusReady != 0, nil
}

// Addr returns the 7-bit I2C address in use.
func (d *Device) Addr() uint16 { return d.addr }

func (d *Device) setMENB(high bool) error {
	if err := d.pin.Set(high); err != nil {
		return &PinError{Op: "set", Err: err}
	}
	return nil
}
