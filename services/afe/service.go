// Package afe runs LMP91000 analog front-ends as bus services.
//
// Each configured AFE gets one worker goroutine that owns its driver. The
// worker publishes retained afe/<name>/{info,status,state} and answers
// requests on afe/<name>/ctl/<verb> with a types.Reply.
package afe

import (
	"context"
	"time"

	"sensorcode-go/bus"
	"sensorcode-go/drivers/lmp91000"
	"sensorcode-go/errcode"
	"sensorcode-go/services/config"
	"sensorcode-go/types"

	"tinygo.org/x/drivers"
)

// Resources resolves the bus and MENB pin named by an AFE config entry.
type Resources interface {
	I2CByID(id string) (drivers.I2C, bool)
	PinByNumber(n int) (lmp91000.Pin, bool)
}

type Service struct {
	res  Resources
	conn *bus.Connection
	devs map[string]*device

	// Now and Sleep are overridable for tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

func New(conn *bus.Connection, res Resources) *Service {
	return &Service{
		res:   res,
		conn:  conn,
		devs:  map[string]*device{},
		Now:   time.Now,
		Sleep: time.Sleep,
	}
}

// Run follows config/afe until ctx is cancelled. A changed entry restarts its
// worker; a removed entry stops it.
func (s *Service) Run(ctx context.Context) {
	sub := s.conn.Subscribe(config.Topic(config.SectionAFE))
	defer s.conn.Unsubscribe(sub)
	defer s.stopAll()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			cfgs, err := config.ParseAFE(msg.Payload)
			if err != nil {
				s.publishServiceStatus(types.LinkDegraded, errcode.InvalidPayload)
				continue
			}
			s.apply(ctx, cfgs)
		}
	}
}

func (s *Service) apply(ctx context.Context, cfgs []types.AFEConfig) {
	want := make(map[string]types.AFEConfig, len(cfgs))
	degraded := errcode.OK
	for _, c := range cfgs {
		if c.Name == "" || c.Bus == "" || c.MENBPin < 0 {
			degraded = errcode.InvalidParams
			continue
		}
		want[c.Name] = c
	}

	for name, d := range s.devs {
		if c, ok := want[name]; !ok || c != d.cfg {
			d.stop()
			delete(s.devs, name)
		}
	}

	for name, c := range want {
		if _, running := s.devs[name]; running {
			continue
		}
		d, err := s.build(c)
		if err != nil {
			degraded = codeOf(err)
			continue
		}
		s.devs[name] = d
		d.start(ctx)
	}

	if degraded != errcode.OK {
		s.publishServiceStatus(types.LinkDegraded, degraded)
		return
	}
	s.publishServiceStatus(types.LinkUp, "")
}

func (s *Service) build(c types.AFEConfig) (*device, error) {
	i2c, ok := s.res.I2CByID(c.Bus)
	if !ok {
		return nil, errcode.NotConfigured
	}
	pin, ok := s.res.PinByNumber(c.MENBPin)
	if !ok {
		return nil, errcode.NotConfigured
	}
	drv := lmp91000.New(i2c, pin, lmp91000.Config{Address: c.Addr, Sleep: s.Sleep})
	return newDevice(c, drv, s.conn, s.Now), nil
}

func (s *Service) stopAll() {
	for name, d := range s.devs {
		d.stop()
		delete(s.devs, name)
	}
}

func (s *Service) publishServiceStatus(link types.Link, code errcode.Code) {
	st := types.Status{Link: link, TS: s.Now().UnixMilli()}
	if code != "" && code != errcode.OK {
		st.Error = string(code)
	}
	s.conn.Publish(s.conn.NewMessage(bus.T("afe", "_status"), st, true))
}

// Topic helpers for clients.

func StatusTopic(name string) bus.Topic { return bus.T("afe", name, "status") }
func StateTopic(name string) bus.Topic  { return bus.T("afe", name, "state") }
func CtlTopic(name, verb string) bus.Topic {
	return bus.T("afe", name, "ctl", verb)
}
