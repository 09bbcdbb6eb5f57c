//go:build linux

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/l0nax/go-spew/spew"
	"go.uber.org/zap"

	"sensorcode-go/drivers/lmp91000"
)

type app struct {
	dev     *lmp91000.Device
	log     *zap.SugaredLogger
	out     io.Writer
	verbose bool
}

type command struct {
	nargs []int // accepted argument counts
	fn    func(a *app, args []string) error
}

var commands = map[string]command{
	"init":    {[]int{0}, (*app).initialize},
	"enable":  {[]int{0}, func(a *app, _ []string) error { return a.dev.Enable() }},
	"disable": {[]int{0}, func(a *app, _ []string) error { return a.dev.Disable() }},
	"read":    {[]int{1}, (*app).read},
	"write":   {[]int{2}, (*app).write},
	"tia":     {[]int{2}, (*app).tia},
	"ref":     {[]int{2}, (*app).ref},
	"bias":    {[]int{2}, (*app).bias},
	"mode":    {[]int{1, 2}, (*app).mode},
	"lock":    {[]int{0}, func(a *app, _ []string) error { return a.dev.Lock() }},
	"dump":    {[]int{0}, (*app).dump},
}

func (a *app) run(args []string) error {
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	okArgs := false
	for _, n := range cmd.nargs {
		okArgs = okArgs || n == len(args)
	}
	if !okArgs {
		return fmt.Errorf("%s: wrong number of arguments (%d)", name, len(args))
	}
	if err := cmd.fn(a, args); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	a.log.Infow("ok", "cmd", name, "args", args)
	return nil
}

func (a *app) initialize(_ []string) error {
	if err := a.dev.Configure(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ready")
	return nil
}

func (a *app) read(args []string) error {
	reg, err := lmp91000.ParseRegister(args[0])
	if err != nil {
		return err
	}
	v, err := a.dev.ReadRegister(reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%-6s 0x%02X\n", reg, v)
	return nil
}

func (a *app) write(args []string) error {
	reg, err := lmp91000.ParseRegister(args[0])
	if err != nil {
		return err
	}
	v, err := parseByte(args[1])
	if err != nil {
		return err
	}
	if reg.LockGated() {
		a.log.Warnw("raw write to a lock-gated register; unlock first or use tia/ref/bias", "reg", reg.String())
	}
	return a.dev.WriteRegister(reg, v)
}

func (a *app) tia(args []string) error {
	g, err := lmp91000.ParseTIAGain(args[0])
	if err != nil {
		return err
	}
	l, err := lmp91000.ParseLoad(args[1])
	if err != nil {
		return err
	}
	return a.dev.SetTIAConfig(g, l)
}

func (a *app) ref(args []string) error {
	src, err := lmp91000.ParseRefSource(args[0])
	if err != nil {
		return err
	}
	z, err := lmp91000.ParseInternalZero(args[1])
	if err != nil {
		return err
	}
	return a.dev.SetReferenceConfig(src, z)
}

func (a *app) bias(args []string) error {
	sign, err := lmp91000.ParseBiasSign(args[0])
	if err != nil {
		return err
	}
	lvl, err := lmp91000.ParseBiasLevel(args[1])
	if err != nil {
		return err
	}
	return a.dev.SetBiasConfig(sign, lvl)
}

func (a *app) mode(args []string) error {
	m, err := lmp91000.ParseMode(args[0])
	if err != nil {
		return err
	}
	short := false
	if len(args) == 2 {
		if args[1] != "fet" {
			return fmt.Errorf("unexpected argument %q", args[1])
		}
		short = true
	}
	return a.dev.SetModeFETShort(m, short)
}

func (a *app) dump(_ []string) error {
	for _, reg := range []lmp91000.Register{
		lmp91000.RegStatus, lmp91000.RegLock,
		lmp91000.RegTIACN, lmp91000.RegREFCN, lmp91000.RegMODECN,
	} {
		v, err := a.dev.ReadRegister(reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%-6s 0x%02X\n", reg, v)
	}
	s, err := a.dev.ReadSettings()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "tia:  gain=%s load=%s\n", s.TIA.Gain, s.TIA.Load)
	fmt.Fprintf(a.out, "ref:  source=%s zero=%s bias=%s %s\n", s.Ref.Source, s.Ref.Zero, s.Ref.Sign, s.Ref.Level)
	fmt.Fprintf(a.out, "mode: %s fet_short=%t\n", s.Mode.Mode, s.Mode.FETShort)
	if a.verbose {
		spew.Fdump(a.out, s)
	}
	return nil
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte value %q", s)
	}
	return byte(v), nil
}
