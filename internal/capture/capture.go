// Package capture acquires microphone input and cuts it into fixed-size
// frames for the realtime session transport.
package capture

import (
	"context"
	"errors"
)

// ErrPermissionDenied reports that the input device is unavailable or
// access to it was refused.
var ErrPermissionDenied = errors.New("microphone unavailable or permission denied")

// ErrAlreadyActive reports a second Start on an active pipeline. The
// microphone is an exclusive resource; one capture runs per assistant.
var ErrAlreadyActive = errors.New("capture pipeline already active")

// FrameFunc receives one fixed-size frame of float samples in capture
// order. The slice is owned by the callee once delivered.
type FrameFunc func(samples []float32)

// Pipeline delivers microphone frames to a callback until stopped.
type Pipeline interface {
	// Start acquires the input device and begins invoking onFrame for
	// every captured frame until Stop.
	Start(ctx context.Context, onFrame FrameFunc) error

	// Stop releases the device and halts frame delivery. Idempotent and
	// safe to call even if Start never succeeded.
	Stop()
}
