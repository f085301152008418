package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mut-digital/mutbot/pkg/usecase"
)

func TestAccumulatorCoalescing(t *testing.T) {
	acc := usecase.NewAccumulator(usecase.WithQuietWindow(50 * time.Millisecond))

	pending, opened := acc.Accumulate("u1", "a")
	gt.Bool(t, opened).True()
	gt.Value(t, pending).NotNil()

	// Appends do not hand out a second deferred value
	second, opened := acc.Accumulate("u1", "b")
	gt.Bool(t, opened).False()
	gt.Value(t, second).Nil()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	combined, err := pending.Wait(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, combined).Equal("a b")
	gt.Number(t, acc.OpenSessions()).Equal(0)
}

func TestAccumulatorSlidingWindow(t *testing.T) {
	window := 60 * time.Millisecond
	acc := usecase.NewAccumulator(usecase.WithQuietWindow(window))

	start := time.Now()
	pending, opened := acc.Accumulate("u1", "uno")
	gt.Bool(t, opened).True()

	// A message near the end of the window re-arms the timer, keeping the
	// session open past one full window from the original start
	time.Sleep(window - 10*time.Millisecond)
	_, opened = acc.Accumulate("u1", "dos")
	gt.Bool(t, opened).False()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	combined, err := pending.Wait(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, combined).Equal("uno dos")
	gt.Bool(t, time.Since(start) >= window+40*time.Millisecond).True()
}

func TestAccumulatorIndependentSenders(t *testing.T) {
	acc := usecase.NewAccumulator(usecase.WithQuietWindow(30 * time.Millisecond))

	p1, opened := acc.Accumulate("u1", "hola")
	gt.Bool(t, opened).True()
	p2, opened := acc.Accumulate("u2", "buenas")
	gt.Bool(t, opened).True()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got1, err := p1.Wait(ctx)
	gt.NoError(t, err)
	gt.Value(t, got1).Equal("hola")

	got2, err := p2.Wait(ctx)
	gt.NoError(t, err)
	gt.Value(t, got2).Equal("buenas")
}

func TestAccumulatorFlush(t *testing.T) {
	acc := usecase.NewAccumulator(usecase.WithQuietWindow(time.Hour))

	pending, opened := acc.Accumulate("u1", "urgente")
	gt.Bool(t, opened).True()

	combined, ok := acc.Flush("u1")
	gt.Bool(t, ok).True()
	gt.Value(t, combined).Equal("urgente")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := pending.Wait(ctx)
	gt.NoError(t, err)
	gt.Value(t, got).Equal("urgente")

	// Nothing left to flush
	_, ok = acc.Flush("u1")
	gt.Bool(t, ok).False()
}

func TestAccumulatorCooldownBlocksReFinalization(t *testing.T) {
	acc := usecase.NewAccumulator(
		usecase.WithQuietWindow(time.Hour),
		usecase.WithCooldown(100*time.Millisecond))

	_, opened := acc.Accumulate("u1", "primero")
	gt.Bool(t, opened).True()
	_, ok := acc.Flush("u1")
	gt.Bool(t, ok).True()

	// Within the cooldown a new session for the same sender cannot be
	// finalized, which is what neutralizes a stray late timer firing
	pending, opened := acc.Accumulate("u1", "segundo")
	gt.Bool(t, opened).True()
	_, ok = acc.Flush("u1")
	gt.Bool(t, ok).False()

	// After the cooldown clears, finalization works again
	time.Sleep(150 * time.Millisecond)
	combined, ok := acc.Flush("u1")
	gt.Bool(t, ok).True()
	gt.Value(t, combined).Equal("segundo")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := pending.Wait(ctx)
	gt.NoError(t, err)
	gt.Value(t, got).Equal("segundo")
}

func TestAccumulatorWaitCancellation(t *testing.T) {
	acc := usecase.NewAccumulator(usecase.WithQuietWindow(time.Hour))

	pending, opened := acc.Accumulate("u1", "hola")
	gt.Bool(t, opened).True()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := pending.Wait(ctx)
	gt.Error(t, err)
}
