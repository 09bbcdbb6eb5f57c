package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "afe": [
    {
      "name": "co",
      "bus": "i2c0",
      "menb_pin": 15,
      "gain": "35k",
      "load": "10",
      "ref": "internal",
      "zero": "50%",
      "bias_sign": "negative",
      "bias_level": "0%",
      "mode": "3lead"
    }
  ],
  "heartbeat": {
      "interval": 2
  }
}`

// Two-lead galvanic O2 cell: no bias, 20% zero.
const cfgPicoO2 = `{
  "afe": [
    {
      "name": "o2",
      "bus": "i2c0",
      "menb_pin": 14,
      "gain": "7k",
      "load": "100",
      "ref": "internal",
      "zero": "20%",
      "bias_sign": "negative",
      "bias_level": "0%",
      "mode": "2lead_ground"
    }
  ]
}`

var embeddedConfigs = map[string][]byte{
	"pico":    []byte(cfgPico),
	"pico-o2": []byte(cfgPicoO2),
}
