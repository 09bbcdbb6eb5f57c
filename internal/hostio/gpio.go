package hostio

import (
	"github.com/warthog618/go-gpiocdev"
)

// lineSetter is the subset of *gpiocdev.Line used by Line.
type lineSetter interface {
	SetValue(v int) error
	Close() error
}

// Line drives a GPIO character-device line as the MENB pin.
type Line struct {
	l lineSetter
}

// RequestLine claims offset on chip (e.g. "gpiochip0") as an output, driven
// high so the front-end starts disabled.
func RequestLine(chip string, offset int) (*Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(1),
		gpiocdev.WithConsumer("afectl"))
	if err != nil {
		return nil, err
	}
	return &Line{l: l}, nil
}

// ConfigureOutput drives the already-requested output to initial.
func (p *Line) ConfigureOutput(initial bool) error { return p.Set(initial) }

func (p *Line) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	return p.l.SetValue(v)
}

func (p *Line) Close() error { return p.l.Close() }
