// Package heartbeat publishes a periodic liveness beat on sys/heartbeat.
package heartbeat

import (
	"context"
	"time"

	"sensorcode-go/bus"
	"sensorcode-go/services/config"
)

const defaultInterval = time.Second

// Beat is the retained payload of sys/heartbeat.
type Beat struct {
	Seq      uint32 `json:"seq"`
	UptimeMS int64  `json:"uptime_ms"`
}

var topicHeartbeat = bus.T("sys", "heartbeat")

func Topic() bus.Topic { return topicHeartbeat }

type Service struct {
	// NewTicker is overridable for tests.
	NewTicker func(time.Duration) (<-chan time.Time, func(time.Duration), func())
}

func realTicker(d time.Duration) (<-chan time.Time, func(time.Duration), func()) {
	t := time.NewTicker(d)
	return t.C, t.Reset, t.Stop
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(config.Topic("heartbeat"))
	defer conn.Unsubscribe(cfgSub)

	newTicker := s.NewTicker
	if newTicker == nil {
		newTicker = realTicker
	}
	tick, reset, stop := newTicker(defaultInterval)
	defer stop()

	start := time.Now()
	var seq uint32

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-tick:
			seq++
			conn.Publish(conn.NewMessage(topicHeartbeat, Beat{
				Seq:      seq,
				UptimeMS: t.Sub(start).Milliseconds(),
			}, true))
		case msg := <-cfgSub.Channel():
			if iv, ok := interval(msg.Payload); ok {
				reset(iv)
			}
		}
	}
}

// interval reads {"interval": seconds} from a decoded JSON config section.
func interval(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	secs, ok := m["interval"].(float64)
	if !ok || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
