package lmp91000

// SetTIAConfig writes TIACN = gain<<2 | load inside an unlock/lock bracket.
// Both fields are owned by this call, so TIACN is not read first.
func (d *Device) SetTIAConfig(gain TIAGain, load LoadResistor) error {
	if d == nil {
		return ErrArgument
	}
	c := TIAConfig{Gain: gain, Load: load}
	if !c.Valid() {
		return ErrArgument
	}
	return d.withUnlocked(func() error {
		return d.WriteRegister(RegTIACN, c.Byte())
	})
}

// SetReferenceConfig sets REFCN source and internal zero, keeping the bias bits.
func (d *Device) SetReferenceConfig(src RefSource, zero InternalZero) error {
	if d == nil {
		return ErrArgument
	}
	if !src.Valid() || !zero.Valid() {
		return ErrArgument
	}
	return d.modifyREFCN(refBiasMask, sourceZeroBits(src, zero))
}

// SetBiasConfig sets REFCN bias sign and level, keeping source and zero bits.
func (d *Device) SetBiasConfig(sign BiasSign, level BiasLevel) error {
	if d == nil {
		return ErrArgument
	}
	if !sign.Valid() || !level.Valid() {
		return ErrArgument
	}
	return d.modifyREFCN(refSourceZeroMsk, biasBits(sign, level))
}

// modifyREFCN re-reads REFCN after unlocking and writes (cur & keep) | set.
func (d *Device) modifyREFCN(keep, set byte) error {
	return d.withUnlocked(func() error {
		cur, err := d.ReadRegister(RegREFCN)
		if err != nil {
			return err
		}
		return d.WriteRegister(RegREFCN, cur&keep|set)
	})
}

// SetMode writes the operating mode to MODECN with FET short disabled.
// MODECN is not lock-gated.
func (d *Device) SetMode(mode Mode) error {
	return d.SetModeFETShort(mode, false)
}

// SetModeFETShort writes the operating mode and the FET short bit.
func (d *Device) SetModeFETShort(mode Mode, short bool) error {
	if d == nil || !mode.Valid() {
		return ErrArgument
	}
	return d.WriteRegister(RegMODECN, ModeConfig{Mode: mode, FETShort: short}.Byte())
}

// Apply writes TIA, reference, bias and mode in that order, each with its own
// bracket where needed. It stops at the first error.
func (d *Device) Apply(s Settings) error {
	if d == nil || !s.Valid() {
		return ErrArgument
	}
	if err := d.SetTIAConfig(s.TIA.Gain, s.TIA.Load); err != nil {
		return err
	}
	if err := d.SetReferenceConfig(s.Ref.Source, s.Ref.Zero); err != nil {
		return err
	}
	if err := d.SetBiasConfig(s.Ref.Sign, s.Ref.Level); err != nil {
		return err
	}
	return d.SetModeFETShort(s.Mode.Mode, s.Mode.FETShort)
}

// ---- Read-back ----

func (d *Device) ReadTIAConfig() (TIAConfig, error) {
	b, err := d.ReadRegister(RegTIACN)
	return DecodeTIA(b), err
}

func (d *Device) ReadReferenceConfig() (RefConfig, error) {
	b, err := d.ReadRegister(RegREFCN)
	return DecodeRef(b), err
}

func (d *Device) ReadMode() (ModeConfig, error) {
	b, err := d.ReadRegister(RegMODECN)
	return DecodeMode(b), err
}

// Image holds the raw TIACN, REFCN and MODECN bytes, reserved bits included.
type Image struct {
	TIACN, REFCN, MODECN byte
}

// Settings decodes the image.
func (im Image) Settings() Settings {
	return Settings{
		TIA:  DecodeTIA(im.TIACN),
		Ref:  DecodeRef(im.REFCN),
		Mode: DecodeMode(im.MODECN),
	}
}

// ReadImage reads TIACN, REFCN and MODECN as stored on the chip.
func (d *Device) ReadImage() (Image, error) {
	var im Image
	var err error
	if im.TIACN, err = d.ReadRegister(RegTIACN); err != nil {
		return Image{}, err
	}
	if im.REFCN, err = d.ReadRegister(RegREFCN); err != nil {
		return Image{}, err
	}
	if im.MODECN, err = d.ReadRegister(RegMODECN); err != nil {
		return Image{}, err
	}
	return im, nil
}

// ReadSettings reads TIACN, REFCN and MODECN and decodes them.
func (d *Device) ReadSettings() (Settings, error) {
	im, err := d.ReadImage()
	if err != nil {
		return Settings{}, err
	}
	return im.Settings(), nil
}
