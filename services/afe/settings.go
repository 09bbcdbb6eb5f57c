package afe

import (
	"sensorcode-go/drivers/lmp91000"
	"sensorcode-go/types"
)

// Power-on register images: TIACN=0x03, REFCN=0x20, MODECN=0x00.
var powerOnDefaults = lmp91000.Settings{
	TIA:  lmp91000.DecodeTIA(0x03),
	Ref:  lmp91000.DecodeRef(0x20),
	Mode: lmp91000.DecodeMode(0x00),
}

// settingsFrom converts a config entry into driver settings. Empty fields keep
// the power-on default.
func settingsFrom(c types.AFEConfig) (lmp91000.Settings, error) {
	s := powerOnDefaults
	var err error
	if c.Gain != "" {
		if s.TIA.Gain, err = lmp91000.ParseTIAGain(c.Gain); err != nil {
			return s, err
		}
	}
	if c.Load != "" {
		if s.TIA.Load, err = lmp91000.ParseLoad(c.Load); err != nil {
			return s, err
		}
	}
	if c.Ref != "" {
		if s.Ref.Source, err = lmp91000.ParseRefSource(c.Ref); err != nil {
			return s, err
		}
	}
	if c.Zero != "" {
		if s.Ref.Zero, err = lmp91000.ParseInternalZero(c.Zero); err != nil {
			return s, err
		}
	}
	if c.BiasSign != "" {
		if s.Ref.Sign, err = lmp91000.ParseBiasSign(c.BiasSign); err != nil {
			return s, err
		}
	}
	if c.BiasLevel != "" {
		if s.Ref.Level, err = lmp91000.ParseBiasLevel(c.BiasLevel); err != nil {
			return s, err
		}
	}
	if c.Mode != "" {
		if s.Mode.Mode, err = lmp91000.ParseMode(c.Mode); err != nil {
			return s, err
		}
	}
	s.Mode.FETShort = c.FETShort
	return s, nil
}

// stateFrom publishes the raw bytes as read and their decoded names.
func stateFrom(im lmp91000.Image, enabled bool, ts int64) types.AFEState {
	s := im.Settings()
	return types.AFEState{
		Enabled:   enabled,
		TIACN:     im.TIACN,
		REFCN:     im.REFCN,
		MODECN:    im.MODECN,
		Gain:      s.TIA.Gain.String(),
		GainOhms:  s.TIA.Gain.Ohms(),
		Load:      s.TIA.Load.String(),
		Ref:       s.Ref.Source.String(),
		Zero:      s.Ref.Zero.String(),
		BiasSign:  s.Ref.Sign.String(),
		BiasLevel: s.Ref.Level.String(),
		Mode:      s.Mode.Mode.String(),
		FETShort:  s.Mode.FETShort,
		TS:        ts,
	}
}
