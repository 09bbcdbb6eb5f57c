//go:build rp2040 || rp2350

// Package platform supplies board resources (I2C buses, GPIO pins) to the
// AFE service on Raspberry Pi Pico / Pico 2.
package platform

import (
	"machine"

	"tinygo.org/x/drivers"

	"sensorcode-go/drivers/lmp91000"
)

// RP2 resolves "i2c0"/"i2c1" and GP0..GP28.
type RP2 struct {
	buses map[string]drivers.I2C
}

// NewRP2 configures i2c0 and i2c1 on their default pins. The LMP91000 is
// rated for 400 kHz.
func NewRP2() *RP2 {
	r := &RP2{buses: make(map[string]drivers.I2C)}

	b0 := machine.I2C0
	_ = b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	r.buses["i2c0"] = b0

	b1 := machine.I2C1
	_ = b1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	})
	r.buses["i2c1"] = b1

	return r
}

func (r *RP2) I2CByID(id string) (drivers.I2C, bool) {
	b, ok := r.buses[id]
	return b, ok
}

func (r *RP2) PinByNumber(n int) (lmp91000.Pin, bool) {
	if n < 0 || n > 28 {
		return nil, false
	}
	return rp2Pin{p: machine.Pin(n)}, true
}

type rp2Pin struct{ p machine.Pin }

func (r rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r rp2Pin) Set(high bool) error {
	r.p.Set(high)
	return nil
}
