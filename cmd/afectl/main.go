//go:build linux

// Command afectl configures an LMP91000 analog front-end from a Linux host
// over /dev/i2c-N and a GPIO character device.
//
// Usage:
//
//	afectl [flags] <command> [args...]
//
// Commands:
//
//	init                 power-cycle through MENB and check STATUS
//	enable | disable     drive MENB low | high
//	read  <reg>          read one register (name or address)
//	write <reg> <val>    write one register (no lock bracket)
//	tia   <gain> <load>  e.g. "tia 35k 10"
//	ref   <src> <zero>   e.g. "ref internal 50%"
//	bias  <sign> <lvl>   e.g. "bias positive 2%"
//	mode  <mode> [fet]   e.g. "mode 3lead"
//	lock                 write LOCK=1
//	dump                 print all registers decoded
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"sensorcode-go/drivers/lmp91000"
	"sensorcode-go/internal/hostio"
)

var (
	busNum  = flag.Int("bus", 1, "I2C bus number (/dev/i2c-N)")
	addr    = flag.Uint("addr", lmp91000.Address, "7-bit I2C address")
	chip    = flag.String("chip", "gpiochip0", "GPIO chip carrying MENB")
	menb    = flag.Int("menb", -1, "MENB line offset (-1: MENB not wired)")
	verbose = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: afectl [flags] <command> [args...]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "afectl: could not create logger: %+v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	err = xmain(flag.Args(), log)
	if err != nil {
		log.Fatalw("command failed", "cmd", flag.Arg(0), "err", err)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func xmain(args []string, log *zap.SugaredLogger) error {
	if *addr > 0x7F {
		return fmt.Errorf("address 0x%X is not a 7-bit address", *addr)
	}
	i2c, err := hostio.OpenSMBus(*busNum, uint8(*addr))
	if err != nil {
		return fmt.Errorf("could not open i2c bus %d: %w", *busNum, err)
	}
	defer i2c.Close()

	var pin lmp91000.Pin
	if *menb >= 0 {
		line, err := hostio.RequestLine(*chip, *menb)
		if err != nil {
			return fmt.Errorf("could not request %s line %d: %w", *chip, *menb, err)
		}
		defer line.Close()
		pin = line
	}

	log.Debugw("opened", "bus", *busNum, "addr", fmt.Sprintf("0x%02X", *addr), "chip", *chip, "menb", *menb)

	a := &app{
		dev:     lmp91000.New(i2c, pin, lmp91000.Config{Address: uint16(*addr)}),
		log:     log,
		out:     os.Stdout,
		verbose: *verbose,
	}
	return a.run(args)
}
