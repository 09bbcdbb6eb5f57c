package config

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sensorcode-go/bus"
	"sensorcode-go/errcode"
	"sensorcode-go/types"
)

// -----------------------------------------------------------------------------
// String constants
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	ctxDeviceKey = "device" // context key used for device ID

	// SectionAFE holds a list of types.AFEConfig.
	SectionAFE = "afe"
)

// CtxDeviceKey is the context key carrying the device ID for Start.
const CtxDeviceKey = ctxDeviceKey

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Known sections are decoded into typed payloads; anything else is published
// as the generic JSON value.
var sectionDecoders = map[string]func(json.RawMessage) (any, error){
	SectionAFE: func(raw json.RawMessage) (any, error) {
		var out []types.AFEConfig
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	},
}

// Topic returns the retained topic of a config section.
func Topic(section string) bus.Topic { return bus.T(configPrefix, section) }

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes
// each top-level key as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(ctxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return errors.New("embedded config is not a JSON object: " + err.Error())
	}

	for k, v := range sections {
		var payload any
		var err error
		if dec, ok := sectionDecoders[k]; ok {
			payload, err = dec(v)
		} else {
			err = json.Unmarshal(v, &payload)
		}
		if err != nil {
			return errors.New("config section " + k + ": " + err.Error())
		}
		conn.Publish(conn.NewMessage(Topic(k), payload, true))
	}
	return nil
}

// Start launches the config publisher in a goroutine. The outcome is
// published retained on config/_status.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		st := types.Status{Link: types.LinkUp, TS: time.Now().UnixMilli()}
		if err := s.publishConfig(ctx, conn); err != nil {
			st.Link = types.LinkDegraded
			st.Error = string(errcode.InvalidPayload) + ": " + err.Error()
		}
		conn.Publish(conn.NewMessage(Topic("_status"), st, true))
	}()
}

// ParseAFE converts a config/afe payload into typed configs.
func ParseAFE(v any) ([]types.AFEConfig, error) {
	switch x := v.(type) {
	case []types.AFEConfig:
		return x, nil
	case types.AFEConfig:
		return []types.AFEConfig{x}, nil
	case *types.AFEConfig:
		if x == nil {
			return nil, errcode.InvalidPayload
		}
		return []types.AFEConfig{*x}, nil
	default:
		return nil, errcode.InvalidPayload
	}
}
