package lmp91000

import (
	"strconv"
	"strings"
	"time"
)

// Address is the fixed 7-bit I2C address of the LMP91000.
const Address = 0x48

// Register is one of the five addressable LMP91000 registers.
type Register uint8

const (
	RegStatus Register = 0x00 // read-only; bit 0 = ready
	RegLock   Register = 0x01 // write 0x00 to unlock TIACN/REFCN, 0x01 to lock
	RegTIACN  Register = 0x10 // TIA gain [4:2], load [1:0]; lock-gated
	RegREFCN  Register = 0x11 // source [7], zero [6:5], sign [4], bias [3:0]; lock-gated
	RegMODECN Register = 0x12 // FET short [7], op mode [2:0]
)

// Valid reports whether r is one of the known register addresses.
func (r Register) Valid() bool {
	switch r {
	case RegStatus, RegLock, RegTIACN, RegREFCN, RegMODECN:
		return true
	default:
		return false
	}
}

// Writable reports whether the driver may write r.
func (r Register) Writable() bool { return r.Valid() && r != RegStatus }

// LockGated reports whether writes to r must be bracketed by unlock/lock.
func (r Register) LockGated() bool { return r == RegTIACN || r == RegREFCN }

func (r Register) String() string {
	switch r {
	case RegStatus:
		return "STATUS"
	case RegLock:
		return "LOCK"
	case RegTIACN:
		return "TIACN"
	case RegREFCN:
		return "REFCN"
	case RegMODECN:
		return "MODECN"
	default:
		h := strings.ToUpper(strconv.FormatUint(uint64(r), 16))
		if len(h) < 2 {
			h = "0" + h
		}
		return "REG(0x" + h + ")"
	}
}

// ParseRegister accepts a register name ("tiacn") or a numeric address
// ("0x10", "16").
func ParseRegister(s string) (Register, error) {
	for _, r := range []Register{RegStatus, RegLock, RegTIACN, RegREFCN, RegMODECN} {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || !Register(v).Valid() {
		return 0, parseErr("register", s)
	}
	return Register(v), nil
}

// Lock register values.
const (
	lockUnlocked = 0x00
	lockLocked   = 0x01
)

// Bit layout.
const (
	statusReady = 0x01

	tiaGainShift = 2
	tiaGainMask  = 0x1C
	tiaLoadMask  = 0x03

	refSourceShift   = 7
	refSourceMask    = 0x80
	refZeroShift     = 5
	refZeroMask      = 0x60
	refSignShift     = 4
	refSignMask      = 0x10
	refLevelMask     = 0x0F
	refSourceZeroMsk = refSourceMask | refZeroMask
	refBiasMask      = refSignMask | refLevelMask

	modeOpMask   = 0x07
	modeFETShort = 0x80
)

// Timing.
const (
	// TxTimeoutMS bounds every bus transaction on transports that implement TimedI2C.
	TxTimeoutMS = 1000

	powerUpDelay = 10 * time.Millisecond
	enableDelay  = 1 * time.Millisecond
)
