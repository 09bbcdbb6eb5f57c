package afe

import (
	"context"
	"time"

	"sensorcode-go/bus"
	"sensorcode-go/errcode"
	"sensorcode-go/types"
)

// Call sends verb to the named AFE and waits at most timeout for its reply.
// A reply with OK=false is returned as its errcode.Code.
func Call(ctx context.Context, conn *bus.Connection, name, verb string, payload any, timeout time.Duration) (types.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := conn.RequestWait(ctx, conn.NewMessage(CtlTopic(name, verb), payload, false))
	if err != nil {
		return types.Reply{}, err
	}
	r, ok := msg.Payload.(types.Reply)
	if !ok {
		return types.Reply{}, errcode.InvalidPayload
	}
	if !r.OK {
		return r, errcode.Code(r.Error)
	}
	return r, nil
}

// ReadState asks the named AFE for a fresh register read-back.
func ReadState(ctx context.Context, conn *bus.Connection, name string, timeout time.Duration) (types.AFEState, error) {
	r, err := Call(ctx, conn, name, VerbRead, nil, timeout)
	if err != nil {
		return types.AFEState{}, err
	}
	st, ok := r.Value.(types.AFEState)
	if !ok {
		return types.AFEState{}, errcode.InvalidPayload
	}
	return st, nil
}
