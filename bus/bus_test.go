package bus

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

func recv(t *testing.T, s *Subscription) *Message {
	t.Helper()
	select {
	case m, ok := <-s.Channel():
		if !ok {
			t.Fatal("subscription closed")
		}
		return m
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("nothing on %v", s.Topic())
		return nil
	}
}

func quiet(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case m := <-s.Channel():
		t.Fatalf("unexpected %v on %v", m.Topic, s.Topic())
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLateSubscriberGetsLatestConfig(t *testing.T) {
	b := NewBus(4)
	cfg := b.NewConnection("config")
	afe := b.NewConnection("afe")

	cfg.Publish(cfg.NewMessage(T("config", "afe"), []string{"co"}, true))
	cfg.Publish(cfg.NewMessage(T("config", "afe"), []string{"co", "o2"}, true))

	sub := afe.Subscribe(T("config", "afe"))
	got := recv(t, sub).Payload.([]string)
	if len(got) != 2 || got[1] != "o2" {
		t.Fatalf("retained config %v", got)
	}
	quiet(t, sub)
}

func TestClearedStatusIsNotReplayed(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("afe")

	c.Publish(c.NewMessage(T("afe", "_status"), "degraded", true))
	c.Publish(c.NewMessage(T("afe", "_status"), nil, true))

	quiet(t, c.Subscribe(T("afe", "_status")))
	quiet(t, c.Subscribe(T("afe", "#")))
}

func TestNonRetainedIsNotReplayed(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("ui")
	c.Publish(c.NewMessage(T("afe", "co", "ctl", "read"), nil, false))
	quiet(t, c.Subscribe(T("afe", "co", "ctl", "read")))
}

func TestFilters(t *testing.T) {
	cases := []struct {
		filter Topic
		topic  Topic
		match  bool
	}{
		{T("afe", "+", "ctl", "+"), T("afe", "co", "ctl", "set_tia"), true},
		{T("afe", "+", "ctl", "+"), T("afe", "co", "ctl"), false},
		{T("afe", "+", "ctl", "+"), T("afe", "co", "ctl", "set_tia", "x"), false},
		{T("afe", "+", "ctl", "+"), T("afe", "co", "status"), false},
		{T("afe", "co", "+"), T("afe", "o2", "state"), false},
		{T("afe", "#"), T("afe"), true},
		{T("afe", "#"), T("afe", "co", "state"), true},
		{T("afe", "#"), T("config", "afe"), false},
		{T("+", "afe"), T("config", "afe"), true},
		{T("_inbox", "ui", 3), T("_inbox", "ui", 3), true},
		{T("_inbox", "ui", 3), T("_inbox", "ui", "3"), false},
	}
	for _, tc := range cases {
		b := NewBus(2)
		c := b.NewConnection("test")
		sub := c.Subscribe(tc.filter)
		c.Publish(c.NewMessage(tc.topic, 1, false))

		select {
		case <-sub.Channel():
			if !tc.match {
				t.Errorf("%v delivered to %v", tc.topic, tc.filter)
			}
		case <-time.After(10 * time.Millisecond):
			if tc.match {
				t.Errorf("%v not delivered to %v", tc.topic, tc.filter)
			}
		}
	}
}

func TestWildcardReplaysEveryDeviceState(t *testing.T) {
	b := NewBus(8)
	c := b.NewConnection("afe")
	for _, name := range []string{"o2", "co", "no2"} {
		c.Publish(c.NewMessage(T("afe", name, "state"), name, true))
	}
	c.Publish(c.NewMessage(T("afe", "co", "status"), "up", true))

	sub := c.Subscribe(T("afe", "+", "state"))
	var names []string
	for i := 0; i < 3; i++ {
		names = append(names, recv(t, sub).Payload.(string))
	}
	sort.Strings(names)
	if names[0] != "co" || names[1] != "no2" || names[2] != "o2" {
		t.Fatalf("replayed %v", names)
	}
	quiet(t, sub)
}

// worker answers afe/co/ctl/+ with the verb it was asked for.
func worker(c *Connection) *Subscription {
	ctl := c.Subscribe(T("afe", "co", "ctl", "+"))
	go func() {
		for m := range ctl.Channel() {
			_ = c.Reply(m, m.Topic.At(3), false)
		}
	}()
	return ctl
}

func TestRequestWaitUsesPrivateInbox(t *testing.T) {
	b := NewBus(4)
	ctl := worker(b.NewConnection("afe"))
	defer ctl.Unsubscribe()
	ui := b.NewConnection("ui")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var inboxes []Topic
	for _, verb := range []string{"read", "lock"} {
		req := ui.NewMessage(T("afe", "co", "ctl", verb), nil, false)
		rep, err := ui.RequestWait(ctx, req)
		if err != nil {
			t.Fatalf("%s: %v", verb, err)
		}
		if rep.Payload != verb {
			t.Fatalf("%s: reply %v", verb, rep.Payload)
		}
		if rep.Topic.Len() != 3 || rep.Topic.At(0) != "_inbox" || rep.Topic.At(1) != "ui" {
			t.Fatalf("%s: reply topic %v", verb, rep.Topic)
		}
		inboxes = append(inboxes, rep.Topic)
	}
	if inboxes[0].At(2) == inboxes[1].At(2) {
		t.Fatalf("inbox reused: %v", inboxes)
	}
}

func TestRequestWithPresetReplyTo(t *testing.T) {
	b := NewBus(4)
	ctl := worker(b.NewConnection("afe"))
	defer ctl.Unsubscribe()
	ui := b.NewConnection("ui")

	req := ui.NewMessage(T("afe", "co", "ctl", "reinit"), nil, false)
	req.ReplyTo = T("ui", "replies")
	sub := ui.Request(req)
	defer ui.Unsubscribe(sub)

	if m := recv(t, sub); m.Payload != "reinit" {
		t.Fatalf("reply %v", m.Payload)
	}
}

func TestRequestWaitWithoutResponder(t *testing.T) {
	b := NewBus(4)
	ui := b.NewConnection("ui")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ui.RequestWait(ctx, ui.NewMessage(T("afe", "co", "ctl", "read"), nil, false))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v", err)
	}
}

func TestReplyNeedsReplyTo(t *testing.T) {
	c := NewBus(1).NewConnection("afe")
	if err := c.Reply(c.NewMessage(T("afe", "co", "ctl", "read"), nil, false), "x", false); !errors.Is(err, ErrNoReplyTo) {
		t.Fatalf("got %v", err)
	}
	if err := c.Reply(nil, "x", false); !errors.Is(err, ErrNoReplyTo) {
		t.Fatalf("nil request: %v", err)
	}
}

func TestSlowSubscriberLosesOldestState(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("afe")
	sub := c.Subscribe(T("afe", "co", "state"))

	for seq := 1; seq <= 4; seq++ {
		c.Publish(c.NewMessage(T("afe", "co", "state"), seq, false))
	}
	if a, b := recv(t, sub).Payload, recv(t, sub).Payload; a != 3 || b != 4 {
		t.Fatalf("kept %v, %v", a, b)
	}
}

func TestUnsubscribeAndDisconnect(t *testing.T) {
	b := NewBus(2)
	c := b.NewConnection("afe")
	ctl := c.Subscribe(T("afe", "co", "ctl", "+"))
	status := c.Subscribe(T("afe", "co", "status"))

	ctl.Unsubscribe()
	ctl.Unsubscribe()
	if _, ok := <-ctl.Channel(); ok {
		t.Fatal("channel open after unsubscribe")
	}

	c.Disconnect()
	if _, ok := <-status.Channel(); ok {
		t.Fatal("channel open after disconnect")
	}

	// The pruned trie still routes for new subscribers.
	ui := b.NewConnection("ui")
	again := ui.Subscribe(T("afe", "co", "ctl", "+"))
	ui.Publish(ui.NewMessage(T("afe", "co", "ctl", "lock"), nil, false))
	recv(t, again)
}

func TestTopicHelpers(t *testing.T) {
	base := T("afe", "co")
	state := base.Append("state")
	ctl := base.Append("ctl", "read")
	if state.Len() != 3 || ctl.Len() != 4 || state.At(2) != "state" || base.Len() != 2 {
		t.Fatalf("append aliased: %v %v %v", base, state, ctl)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("slice token accepted")
		}
	}()
	T("afe", []byte("co"))
}
