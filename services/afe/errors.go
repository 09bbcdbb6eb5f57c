package afe

import (
	"context"
	"errors"

	"sensorcode-go/drivers/lmp91000"
	"sensorcode-go/errcode"
)

// codeOf maps lmp91000 errors to bus codes. A timeout wins over the bus
// error class it is wrapped in.
func codeOf(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.OK
	case errors.Is(err, context.DeadlineExceeded):
		return errcode.Timeout
	case errors.Is(err, lmp91000.ErrArgument):
		return errcode.InvalidParams
	case errors.Is(err, lmp91000.ErrNotReady):
		return errcode.NotReady
	case errors.Is(err, lmp91000.ErrBus):
		return errcode.BusError
	case errors.Is(err, lmp91000.ErrPin):
		return errcode.PinError
	default:
		return errcode.Of(err)
	}
}
