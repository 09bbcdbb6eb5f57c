// Package bus is a small in-process pub/sub bus with retained messages,
// MQTT-style wildcards ("+" one level, "#" remaining levels) and
// request/reply over per-request inbox topics.
package bus

import (
	"context"
	"errors"
	"sync"
)

const (
	wildOne  = "+"
	wildRest = "#"
	inbox    = "_inbox"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of comparable tokens (strings or integers).
type Topic []any

// T builds a Topic. It panics on tokens that cannot be used as map keys.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		switch tok.(type) {
		case string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, bool:
		default:
			panic("bus: topic token must be a string, integer or bool")
		}
	}
	return Topic(tokens)
}

func (t Topic) Len() int     { return len(t) }
func (t Topic) At(i int) any { return t[i] }

// Append returns a new topic with extra tokens appended.
func (t Topic) Append(tokens ...any) Topic {
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	return append(out, T(tokens...)...)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie
// -----------------------------------------------------------------------------

// Subscriptions live at their filter path (wildcards included); retained
// messages live at their concrete topic path.
type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c, ok := n.children[tok]; ok {
		return c
	}
	if !create {
		return nil
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

func (n *node) empty() bool {
	return len(n.subs) == 0 && len(n.children) == 0 && n.retained == nil
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
	seq  int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// NewMessage builds a message; it does not publish it.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscriber and updates the retained
// store. A retained message with a nil payload clears the retained value.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			n = n.child(tok, true)
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
	b.route(b.root, msg, 0)
}

func (b *Bus) route(n *node, msg *Message, i int) {
	if rest := n.child(wildRest, false); rest != nil {
		deliverAll(rest.subs, msg)
	}
	if i == len(msg.Topic) {
		deliverAll(n.subs, msg)
		return
	}
	if c := n.child(msg.Topic[i], false); c != nil {
		b.route(c, msg, i+1)
	}
	if c := n.child(wildOne, false); c != nil {
		b.route(c, msg, i+1)
	}
}

func deliverAll(subs []*Subscription, msg *Message) {
	for _, s := range subs {
		deliver(s, msg)
	}
}

// deliver never blocks; a full queue drops its oldest message.
func deliver(s *Subscription, msg *Message) {
	for {
		select {
		case s.ch <- msg:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (b *Bus) subscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	b.replay(b.root, sub, 0)
}

// replay delivers retained messages matching sub's filter.
func (b *Bus) replay(n *node, sub *Subscription, i int) {
	if i == len(sub.topic) {
		if n.retained != nil {
			deliver(sub, n.retained)
		}
		return
	}
	switch tok := sub.topic[i]; tok {
	case wildRest:
		replayTree(n, sub)
	case wildOne:
		for k, c := range n.children {
			if k == wildOne || k == wildRest {
				continue
			}
			b.replay(c, sub, i+1)
		}
	default:
		if c := n.child(tok, false); c != nil {
			b.replay(c, sub, i+1)
		}
	}
}

func replayTree(n *node, sub *Subscription) {
	if n.retained != nil {
		deliver(sub, n.retained)
	}
	for _, c := range n.children {
		replayTree(c, sub)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	stack := make([]*node, 0, len(sub.topic))
	for _, tok := range sub.topic {
		c := n.child(tok, false)
		if c == nil {
			return
		}
		stack = append(stack, n)
		n = c
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		if c := parent.children[key]; c != nil && c.empty() {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

func (b *Bus) nextInbox(id string) Topic {
	b.mu.Lock()
	b.seq++
	n := b.seq
	b.mu.Unlock()
	return T(inbox, id, n)
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. Matching
// retained messages are queued immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.subscribe(sub)
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions of this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request / reply
// -----------------------------------------------------------------------------

// ErrNoReplyTo is returned by Reply for messages without a reply topic.
var ErrNoReplyTo = errors.New("bus: message has no reply topic")

// Request assigns msg a fresh inbox (unless ReplyTo is set), subscribes to it
// and publishes msg. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	if len(msg.ReplyTo) == 0 {
		msg.ReplyTo = c.bus.nextInbox(c.id)
	}
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes msg and waits for the first reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)
	select {
	case r, ok := <-sub.Channel():
		if !ok {
			return nil, context.Canceled
		}
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reply publishes payload on req.ReplyTo.
func (c *Connection) Reply(req *Message, payload any, retained bool) error {
	if req == nil || len(req.ReplyTo) == 0 {
		return ErrNoReplyTo
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
	return nil
}
