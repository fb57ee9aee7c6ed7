package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowCounter struct {
	delay time.Duration
}

func (s slowCounter) Increment(ctx context.Context, _ string) (int64, error) {
	select {
	case <-time.After(s.delay):
		return 1, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s slowCounter) Count(context.Context, string) (int64, error) { return 0, nil }

type brokenCounter struct{}

func (brokenCounter) Increment(context.Context, string) (int64, error) {
	return 0, errors.New("offline")
}
func (brokenCounter) Count(context.Context, string) (int64, error) { return 0, nil }

func TestRecorder_Increment(t *testing.T) {
	counter := memory.NewCounter()
	r := telemetry.New(counter)

	r.Increment(context.Background(), "MISSION/m/step-1/done")
	r.Increment(context.Background(), "MISSION/m/step-1/done")
	r.Flush()

	n, err := counter.Count(context.Background(), "MISSION/m/step-1/done")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRecorder_DoesNotBlock(t *testing.T) {
	r := telemetry.New(slowCounter{delay: time.Second}, telemetry.WithTimeout(50*time.Millisecond))

	start := time.Now()
	r.Increment(context.Background(), "k")
	assert.Less(t, time.Since(start), 20*time.Millisecond)

	r.Close()
	assert.Less(t, time.Since(start), 500*time.Millisecond, "the timeout bounds Close")
}

func TestRecorder_SurvivesCanceledContext(t *testing.T) {
	counter := memory.NewCounter()
	r := telemetry.New(counter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Increment(ctx, "k")
	r.Close()

	n, _ := counter.Count(context.Background(), "k")
	assert.Equal(t, int64(1), n)
}

func TestRecorder_FailuresAndNil(t *testing.T) {
	r := telemetry.New(brokenCounter{})
	r.Increment(context.Background(), "k")
	r.Close()
	r.Increment(context.Background(), "dropped after close")

	var nilRecorder *telemetry.Recorder
	nilRecorder.Increment(context.Background(), "k")
	nilRecorder.Close()

	telemetry.New(nil).Increment(context.Background(), "k")
}
