package types

// ---- AFE configuration (topic "config/afe") ----

// AFEConfig describes one LMP91000 instance. Setting fields use the driver's
// textual names ("35k", "10", "internal", "50%", "positive", "2%", "3lead");
// empty fields fall back to the chip's power-on defaults.
type AFEConfig struct {
	Name    string `json:"name"`
	Bus     string `json:"bus"`            // e.g. "i2c0"
	Addr    uint16 `json:"addr,omitempty"` // 0 => 0x48
	MENBPin int    `json:"menb_pin"`

	Gain      string `json:"gain,omitempty"`
	Load      string `json:"load,omitempty"`
	Ref       string `json:"ref,omitempty"`
	Zero      string `json:"zero,omitempty"`
	BiasSign  string `json:"bias_sign,omitempty"`
	BiasLevel string `json:"bias_level,omitempty"`
	Mode      string `json:"mode,omitempty"`
	FETShort  bool   `json:"fet_short,omitempty"`
}

type AFEInfo struct {
	Bus     string `json:"bus"`
	Addr    uint16 `json:"addr"`
	MENBPin int    `json:"menb_pin"`
}

// ---- AFE state (retained, topic "afe/<name>/state") ----

type AFEState struct {
	Enabled bool  `json:"enabled"`
	TIACN   uint8 `json:"tiacn"`
	REFCN   uint8 `json:"refcn"`
	MODECN  uint8 `json:"modecn"`

	Gain      string `json:"gain"`
	GainOhms  uint32 `json:"gain_ohms"`
	Load      string `json:"load"`
	Ref       string `json:"ref"`
	Zero      string `json:"zero"`
	BiasSign  string `json:"bias_sign"`
	BiasLevel string `json:"bias_level"`
	Mode      string `json:"mode"`
	FETShort  bool   `json:"fet_short"`

	TS int64 `json:"ts_ms"`
}

// ---- AFE controls (topic "afe/<name>/ctl/<verb>") ----

type AFESetTIA struct {
	Gain string `json:"gain"`
	Load string `json:"load"`
}

type AFESetRef struct {
	Ref  string `json:"ref"`
	Zero string `json:"zero"`
}

type AFESetBias struct {
	Sign  string `json:"sign"`
	Level string `json:"level"`
}

type AFESetMode struct {
	Mode     string `json:"mode"`
	FETShort bool   `json:"fet_short,omitempty"`
}

type AFERegister struct {
	Reg   uint8 `json:"reg"`
	Value uint8 `json:"value"`
}
