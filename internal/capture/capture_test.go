package capture

import (
	"context"
	"errors"
	"testing"
)

func TestFakeDeliversFramesInOrder(t *testing.T) {
	f := NewFake()
	var got [][]float32
	if err := f.Start(context.Background(), func(s []float32) { got = append(got, s) }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.Emit([]float32{1})
	f.Emit([]float32{2})
	if len(got) != 2 {
		t.Fatalf("frames delivered = %d, want 2", len(got))
	}
	if got[0][0] != 1 || got[1][0] != 2 {
		t.Fatalf("frame order = [%v %v], want [1 2]", got[0][0], got[1][0])
	}
}

func TestFakeSecondStartRejected(t *testing.T) {
	f := NewFake()
	if err := f.Start(context.Background(), func([]float32) {}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.Start(context.Background(), func([]float32) {}); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyActive", err)
	}
}

func TestFakeStopIsIdempotentAndHaltsDelivery(t *testing.T) {
	f := NewFake()
	delivered := 0
	if err := f.Start(context.Background(), func([]float32) { delivered++ }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.Stop()
	f.Stop()
	f.Emit([]float32{1})
	if delivered != 0 {
		t.Fatalf("frames after Stop = %d, want 0", delivered)
	}
	if f.Stops() != 2 {
		t.Fatalf("Stops() = %d, want 2", f.Stops())
	}
	// Stop on a never-started pipeline must also be safe.
	fresh := NewFake()
	fresh.Stop()
}
