package afe

import (
	"context"
	"errors"
	"time"

	"sensorcode-go/bus"
	"sensorcode-go/drivers/lmp91000"
	"sensorcode-go/errcode"
	"sensorcode-go/types"
)

// Verbs accepted on afe/<name>/ctl/<verb>.
const (
	VerbRead     = "read"
	VerbSetTIA   = "set_tia"
	VerbSetRef   = "set_ref"
	VerbSetBias  = "set_bias"
	VerbSetMode  = "set_mode"
	VerbEnable   = "enable"
	VerbDisable  = "disable"
	VerbLock     = "lock"
	VerbReadReg  = "read_reg"
	VerbWriteReg = "write_reg"
	VerbReinit   = "reinit"
)

// device is a single-goroutine owner of one LMP91000. All driver calls happen
// on the worker goroutine; control messages arrive on its subscription.
type device struct {
	cfg  types.AFEConfig
	drv  *lmp91000.Device
	conn *bus.Connection
	now  func() time.Time

	enabled bool

	ctl    *bus.Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

func newDevice(cfg types.AFEConfig, drv *lmp91000.Device, conn *bus.Connection, now func() time.Time) *device {
	return &device{
		cfg:  cfg,
		drv:  drv,
		conn: conn,
		now:  now,
		done: make(chan struct{}),
	}
}

func (d *device) topic(leaf ...any) bus.Topic {
	return bus.T("afe", d.cfg.Name).Append(leaf...)
}

func (d *device) start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.ctl = d.conn.Subscribe(d.topic("ctl", "+"))
	d.conn.Publish(d.conn.NewMessage(d.topic("info"), types.Info{
		SchemaVersion: 1,
		Driver:        "lmp91000",
		Detail: types.AFEInfo{
			Bus:     d.cfg.Bus,
			Addr:    d.drv.Addr(),
			MENBPin: d.cfg.MENBPin,
		},
	}, true))
	go d.worker(ctx)
}

// stop cancels the worker and waits for it to disable the chip.
func (d *device) stop() {
	if d.cancel != nil {
		d.cancel()
	}
	<-d.done
}

func (d *device) worker(ctx context.Context) {
	defer close(d.done)

	_ = d.bringUp()

	for {
		select {
		case <-ctx.Done():
			d.cleanup()
			return
		case msg, ok := <-d.ctl.Channel():
			if !ok {
				d.cleanup()
				return
			}
			d.handle(msg)
		}
	}
}

// bringUp runs the power-up sequence and applies the configured settings.
func (d *device) bringUp() error {
	s, err := settingsFrom(d.cfg)
	if err != nil {
		d.publishStatus(types.LinkDegraded, errcode.InvalidParams)
		return err
	}
	if err := d.drv.Configure(); err != nil {
		// MENB is already low once the STATUS read is attempted.
		d.enabled = errors.Is(err, lmp91000.ErrNotReady) || errors.Is(err, lmp91000.ErrBus)
		d.publishStatus(types.LinkDegraded, codeOf(err))
		return err
	}
	d.enabled = true
	if err := d.drv.Apply(s); err != nil {
		d.publishStatus(types.LinkDegraded, codeOf(err))
		return err
	}
	// State goes out first so "up" always follows a fresh read-back.
	if err := d.publishState(); err != nil {
		return err
	}
	d.publishStatus(types.LinkUp, "")
	return nil
}

func (d *device) cleanup() {
	if d.enabled {
		_ = d.drv.Disable()
		d.enabled = false
	}
	d.conn.Unsubscribe(d.ctl)
	d.publishStatus(types.LinkDown, "")
}

func (d *device) publishStatus(link types.Link, code errcode.Code) {
	st := types.Status{Link: link, TS: d.now().UnixMilli()}
	if code != "" && code != errcode.OK {
		st.Error = string(code)
	}
	d.conn.Publish(d.conn.NewMessage(d.topic("status"), st, true))
}

// publishState reads TIACN/REFCN/MODECN back from the chip and publishes the
// decoded image.
func (d *device) publishState() error {
	im, err := d.drv.ReadImage()
	if err != nil {
		d.publishStatus(types.LinkDegraded, codeOf(err))
		return err
	}
	st := stateFrom(im, d.enabled, d.now().UnixMilli())
	d.conn.Publish(d.conn.NewMessage(d.topic("state"), st, true))
	return nil
}

func (d *device) reply(msg *bus.Message, value any, err error) {
	r := types.Reply{OK: err == nil, Value: value}
	if err != nil {
		r.Error = string(codeOf(err))
	}
	_ = d.conn.Reply(msg, r, false)
}

func (d *device) handle(msg *bus.Message) {
	verb, _ := msg.Topic[len(msg.Topic)-1].(string)
	value, err := d.dispatch(verb, msg.Payload)
	if err == nil && verb != VerbRead && verb != VerbReadReg {
		err = d.publishState()
	}
	d.reply(msg, value, err)
}

func (d *device) dispatch(verb string, payload any) (any, error) {
	switch verb {
	case VerbRead:
		im, err := d.drv.ReadImage()
		if err != nil {
			return nil, err
		}
		return stateFrom(im, d.enabled, d.now().UnixMilli()), nil

	case VerbSetTIA:
		p, ok := payloadAs[types.AFESetTIA](payload)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		g, err := lmp91000.ParseTIAGain(p.Gain)
		if err != nil {
			return nil, err
		}
		l, err := lmp91000.ParseLoad(p.Load)
		if err != nil {
			return nil, err
		}
		return nil, d.drv.SetTIAConfig(g, l)

	case VerbSetRef:
		p, ok := payloadAs[types.AFESetRef](payload)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		src, err := lmp91000.ParseRefSource(p.Ref)
		if err != nil {
			return nil, err
		}
		z, err := lmp91000.ParseInternalZero(p.Zero)
		if err != nil {
			return nil, err
		}
		return nil, d.drv.SetReferenceConfig(src, z)

	case VerbSetBias:
		p, ok := payloadAs[types.AFESetBias](payload)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		sign, err := lmp91000.ParseBiasSign(p.Sign)
		if err != nil {
			return nil, err
		}
		lvl, err := lmp91000.ParseBiasLevel(p.Level)
		if err != nil {
			return nil, err
		}
		return nil, d.drv.SetBiasConfig(sign, lvl)

	case VerbSetMode:
		p, ok := payloadAs[types.AFESetMode](payload)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		m, err := lmp91000.ParseMode(p.Mode)
		if err != nil {
			return nil, err
		}
		return nil, d.drv.SetModeFETShort(m, p.FETShort)

	case VerbEnable:
		if err := d.drv.Enable(); err != nil {
			return nil, err
		}
		d.enabled = true
		return nil, nil

	case VerbDisable:
		if err := d.drv.Disable(); err != nil {
			return nil, err
		}
		d.enabled = false
		return nil, nil

	case VerbLock:
		return nil, d.drv.Lock()

	case VerbReadReg:
		p, ok := payloadAs[types.AFERegister](payload)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return d.drv.ReadRegister(lmp91000.Register(p.Reg))

	case VerbWriteReg:
		p, ok := payloadAs[types.AFERegister](payload)
		if !ok {
			return nil, errcode.InvalidPayload
		}
		return nil, d.drv.WriteRegister(lmp91000.Register(p.Reg), p.Value)

	case VerbReinit:
		return nil, d.bringUp()

	default:
		return nil, errcode.UnknownVerb
	}
}

// payloadAs accepts either T or a non-nil *T.
func payloadAs[T any](payload any) (T, bool) {
	switch x := payload.(type) {
	case T:
		return x, true
	case *T:
		if x != nil {
			return *x, true
		}
	}
	var zero T
	return zero, false
}
