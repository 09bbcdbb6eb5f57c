package lmp91000

import (
	"strconv"
	"strings"
)

// TIAGain selects the transimpedance feedback resistor (TIACN[4:2]).
type TIAGain uint8

const (
	GainExternal TIAGain = iota // external resistor between C1 and C2
	Gain2K75
	Gain3K5
	Gain7K
	Gain14K
	Gain35K
	Gain120K
	Gain350K
)

var gainNames = [...]string{"ext", "2.75k", "3.5k", "7k", "14k", "35k", "120k", "350k"}
var gainOhms = [...]uint32{0, 2_750, 3_500, 7_000, 14_000, 35_000, 120_000, 350_000}

func (g TIAGain) Valid() bool { return g <= Gain350K }

func (g TIAGain) String() string {
	if !g.Valid() {
		return "gain(invalid)"
	}
	return gainNames[g]
}

// Ohms returns the internal feedback resistance; 0 for GainExternal.
func (g TIAGain) Ohms() uint32 {
	if !g.Valid() {
		return 0
	}
	return gainOhms[g]
}

// LoadResistor selects the sensor load resistance (TIACN[1:0]).
type LoadResistor uint8

const (
	Load10 LoadResistor = iota
	Load33
	Load50
	Load100
)

var loadNames = [...]string{"10", "33", "50", "100"}
var loadOhms = [...]uint32{10, 33, 50, 100}

func (l LoadResistor) Valid() bool { return l <= Load100 }

func (l LoadResistor) String() string {
	if !l.Valid() {
		return "load(invalid)"
	}
	return loadNames[l]
}

func (l LoadResistor) Ohms() uint32 {
	if !l.Valid() {
		return 0
	}
	return loadOhms[l]
}

// RefSource selects the reference voltage source (REFCN[7]).
type RefSource uint8

const (
	RefInternal RefSource = iota // VDD
	RefExternal                  // VREF pin
)

func (s RefSource) Valid() bool { return s <= RefExternal }

func (s RefSource) String() string {
	switch s {
	case RefInternal:
		return "internal"
	case RefExternal:
		return "external"
	default:
		return "ref(invalid)"
	}
}

// InternalZero selects the internal zero as a fraction of the reference (REFCN[6:5]).
type InternalZero uint8

const (
	Zero20 InternalZero = iota
	Zero50
	Zero67
	ZeroBypass
)

var zeroNames = [...]string{"20%", "50%", "67%", "bypass"}

func (z InternalZero) Valid() bool { return z <= ZeroBypass }

func (z InternalZero) String() string {
	if !z.Valid() {
		return "zero(invalid)"
	}
	return zeroNames[z]
}

// Percent returns the internal zero in percent of the reference; 0 when bypassed.
func (z InternalZero) Percent() uint8 {
	switch z {
	case Zero20:
		return 20
	case Zero50:
		return 50
	case Zero67:
		return 67
	default:
		return 0
	}
}

// BiasSign selects the bias polarity (REFCN[4]).
type BiasSign uint8

const (
	BiasNegative BiasSign = iota
	BiasPositive
)

func (s BiasSign) Valid() bool { return s <= BiasPositive }

func (s BiasSign) String() string {
	switch s {
	case BiasNegative:
		return "negative"
	case BiasPositive:
		return "positive"
	default:
		return "sign(invalid)"
	}
}

// BiasLevel selects the bias as a percentage of the reference (REFCN[3:0]).
// Codes 14 and 15 are reserved.
type BiasLevel uint8

const (
	Bias0 BiasLevel = iota
	Bias1
	Bias2
	Bias4
	Bias6
	Bias8
	Bias10
	Bias12
	Bias14
	Bias16
	Bias18
	Bias20
	Bias22
	Bias24
)

var biasPercent = [...]uint8{0, 1, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24}

func (b BiasLevel) Valid() bool { return b <= Bias24 }

func (b BiasLevel) Percent() uint8 {
	if !b.Valid() {
		return 0
	}
	return biasPercent[b]
}

func (b BiasLevel) String() string {
	if !b.Valid() {
		return "bias(invalid)"
	}
	return strconv.Itoa(int(biasPercent[b])) + "%"
}

// Mode is the operating mode (MODECN[2:0]). Codes 4 and 5 are reserved.
type Mode uint8

const (
	ModeDeepSleep  Mode = 0
	ModeTwoLeadGnd Mode = 1 // 2-lead ground-referred galvanic cell
	ModeStandby    Mode = 2
	ModeThreeLead  Mode = 3 // 3-lead amperometric cell
	ModeTempTIAOff Mode = 6
	ModeTempTIAOn  Mode = 7
)

func (m Mode) Valid() bool {
	switch m {
	case ModeDeepSleep, ModeTwoLeadGnd, ModeStandby, ModeThreeLead, ModeTempTIAOff, ModeTempTIAOn:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	switch m {
	case ModeDeepSleep:
		return "deep_sleep"
	case ModeTwoLeadGnd:
		return "2lead_ground"
	case ModeStandby:
		return "standby"
	case ModeThreeLead:
		return "3lead"
	case ModeTempTIAOff:
		return "temp_tia_off"
	case ModeTempTIAOn:
		return "temp_tia_on"
	default:
		return "mode(invalid)"
	}
}

// ---- Register images ----

// TIAConfig is the decoded TIACN register.
type TIAConfig struct {
	Gain TIAGain
	Load LoadResistor
}

func (c TIAConfig) Valid() bool { return c.Gain.Valid() && c.Load.Valid() }

// Byte encodes c as gain<<2 | load.
func (c TIAConfig) Byte() byte {
	return byte(c.Gain)<<tiaGainShift&tiaGainMask | byte(c.Load)&tiaLoadMask
}

func DecodeTIA(b byte) TIAConfig {
	return TIAConfig{
		Gain: TIAGain((b & tiaGainMask) >> tiaGainShift),
		Load: LoadResistor(b & tiaLoadMask),
	}
}

// RefConfig is the decoded REFCN register.
type RefConfig struct {
	Source RefSource
	Zero   InternalZero
	Sign   BiasSign
	Level  BiasLevel
}

func (c RefConfig) Valid() bool {
	return c.Source.Valid() && c.Zero.Valid() && c.Sign.Valid() && c.Level.Valid()
}

func (c RefConfig) Byte() byte {
	return sourceZeroBits(c.Source, c.Zero) | biasBits(c.Sign, c.Level)
}

func DecodeRef(b byte) RefConfig {
	return RefConfig{
		Source: RefSource((b & refSourceMask) >> refSourceShift),
		Zero:   InternalZero((b & refZeroMask) >> refZeroShift),
		Sign:   BiasSign((b & refSignMask) >> refSignShift),
		Level:  BiasLevel(b & refLevelMask),
	}
}

func sourceZeroBits(src RefSource, zero InternalZero) byte {
	return byte(src)<<refSourceShift&refSourceMask | byte(zero)<<refZeroShift&refZeroMask
}

func biasBits(sign BiasSign, level BiasLevel) byte {
	return byte(sign)<<refSignShift&refSignMask | byte(level)&refLevelMask
}

// ModeConfig is the decoded MODECN register.
type ModeConfig struct {
	Mode     Mode
	FETShort bool
}

func (c ModeConfig) Byte() byte {
	b := byte(c.Mode) & modeOpMask
	if c.FETShort {
		b |= modeFETShort
	}
	return b
}

func DecodeMode(b byte) ModeConfig {
	return ModeConfig{Mode: Mode(b & modeOpMask), FETShort: b&modeFETShort != 0}
}

// Settings is a complete AFE configuration, applied by Device.Apply.
type Settings struct {
	TIA  TIAConfig
	Ref  RefConfig
	Mode ModeConfig
}

func (s Settings) Valid() bool { return s.TIA.Valid() && s.Ref.Valid() && s.Mode.Mode.Valid() }

// ---- Parsing (config files, CLI) ----

func ParseTIAGain(s string) (TIAGain, error) {
	for i, n := range gainNames {
		if strings.EqualFold(s, n) {
			return TIAGain(i), nil
		}
	}
	return 0, parseErr("gain", s)
}

func ParseLoad(s string) (LoadResistor, error) {
	s = strings.TrimSuffix(strings.ToLower(s), "ohm")
	for i, n := range loadNames {
		if s == n {
			return LoadResistor(i), nil
		}
	}
	return 0, parseErr("load", s)
}

func ParseRefSource(s string) (RefSource, error) {
	for _, v := range []RefSource{RefInternal, RefExternal} {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, parseErr("ref", s)
}

func ParseInternalZero(s string) (InternalZero, error) {
	for i, n := range zeroNames {
		if strings.EqualFold(s, n) || strings.EqualFold(s+"%", n) {
			return InternalZero(i), nil
		}
	}
	return 0, parseErr("zero", s)
}

func ParseBiasSign(s string) (BiasSign, error) {
	switch strings.ToLower(s) {
	case "negative", "neg", "-":
		return BiasNegative, nil
	case "positive", "pos", "+":
		return BiasPositive, nil
	}
	return 0, parseErr("bias sign", s)
}

func ParseBiasLevel(s string) (BiasLevel, error) {
	t := strings.TrimSuffix(s, "%")
	for i, p := range biasPercent {
		if t == strconv.Itoa(int(p)) {
			return BiasLevel(i), nil
		}
	}
	return 0, parseErr("bias level", s)
}

func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeDeepSleep, ModeTwoLeadGnd, ModeStandby, ModeThreeLead, ModeTempTIAOff, ModeTempTIAOn} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, parseErr("mode", s)
}

func parseErr(what, s string) error {
	return &argError{msg: "unknown " + what + " \"" + s + "\""}
}
