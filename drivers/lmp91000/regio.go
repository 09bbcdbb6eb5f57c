package lmp91000

// ReadRegister selects reg with a one-byte write, then reads one byte back in
// a second transaction. There is no retry.
func (d *Device) ReadRegister(reg Register) (byte, error) {
	if d == nil || d.bus == nil || !reg.Valid() {
		return 0, ErrArgument
	}
	d.w[0] = byte(reg)
	if err := d.tx(d.w[:1], nil); err != nil {
		return 0, &RegError{Op: "select", Reg: reg, Err: err}
	}
	if err := d.tx(nil, d.r[:1]); err != nil {
		return 0, &RegError{Op: "read", Reg: reg, Err: err}
	}
	return d.r[0], nil
}

// WriteRegister writes [reg, v] in one transaction. Lock-gated registers are
// written as-is; use the setters for the unlock/lock bracket.
func (d *Device) WriteRegister(reg Register, v byte) error {
	if d == nil || d.bus == nil || !reg.Writable() {
		return ErrArgument
	}
	d.w[0] = byte(reg)
	d.w[1] = v
	if err := d.tx(d.w[:2], nil); err != nil {
		return &RegError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// Unlock allows writes to TIACN and REFCN.
func (d *Device) Unlock() error { return d.WriteRegister(RegLock, lockUnlocked) }

// Lock write-protects TIACN and REFCN.
func (d *Device) Lock() error { return d.WriteRegister(RegLock, lockLocked) }

// Locked reports the LOCK register state.
func (d *Device) Locked() (bool, error) {
	v, err := d.ReadRegister(RegLock)
	if err != nil {
		return false, err
	}
	return v&lockLocked != 0, nil
}

// withUnlocked runs write between an unlock and a lock. The first failure
// aborts the sequence; a failed write leaves the chip unlocked.
func (d *Device) withUnlocked(write func() error) error {
	if err := d.Unlock(); err != nil {
		return err
	}
	if err := write(); err != nil {
		return err
	}
	return d.Lock()
}

func (d *Device) tx(w, r []byte) error {
	if t, ok := d.bus.(TimedI2C); ok {
		return t.TxTimeout(d.addr, w, r, d.timeoutMS)
	}
	return d.bus.Tx(d.addr, w, r)
}
