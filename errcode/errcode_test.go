package errcode

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"ok":              OK,
		"busy":            Busy,
		"unavailable":     Unavailable,
		"unsupported":     Unsupported,
		"invalid_params":  InvalidParams,
		"invalid_payload": InvalidPayload,
		"unknown_verb":    UnknownVerb,
		"not_configured":  NotConfigured,
		"bus_error":       BusError,
		"pin_error":       PinError,
		"not_ready":       NotReady,
		"timeout":         Timeout,
		"error":           Error,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c)
		}
	}
}

func TestOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{Busy, Busy},
		{fmt.Errorf("read_reg: %w", NotConfigured), NotConfigured},
		{&E{C: BusError, Err: errors.New("nack")}, BusError},
		{fmt.Errorf("tx: %w", &E{C: PinError}), PinError},
		{fmt.Errorf("tx: %w", context.DeadlineExceeded), Timeout},
		{errors.New("other"), Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("Of(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("nack")
	err := Wrap("set_tia", BusError, cause)
	if Of(err) != BusError {
		t.Fatalf("Of(wrapped) = %q", Of(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if err.Error() != "set_tia: bus_error: nack" {
		t.Fatalf("message %q", err.Error())
	}
	if Wrap("x", Error, nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
}
