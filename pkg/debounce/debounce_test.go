package debounce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/JailtonJunior94/aeon-kit/pkg/debounce"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	waitFor = time.Second
	tick    = time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) record(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestValue_ReturnsInitialImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("initial", debounce.WithClock(clock))

	assert.Equal(t, "initial", value.Observe("initial", 500*time.Millisecond))
	assert.Equal(t, "initial", value.Get())
}

func TestValue_SettlesAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("initial", debounce.WithClock(clock))

	assert.Equal(t, "initial", value.Observe("changed", 500*time.Millisecond))

	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, "initial", value.Get(), "must not settle before the delay elapsed")

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return value.Get() == "changed" }, waitFor, tick)
	assert.False(t, value.Pending())
}

func TestValue_ChangeRestartsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("initial", debounce.WithClock(clock))
	settled := &recorder{}
	value.OnSettle(settled.record)

	value.Observe("first", 500*time.Millisecond)
	clock.Advance(300 * time.Millisecond)

	value.Observe("second", 500*time.Millisecond)
	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, "initial", value.Get(), "t=600: only 300ms of the second timer elapsed")

	clock.Advance(200 * time.Millisecond)
	require.Eventually(t, func() bool { return value.Get() == "second" }, waitFor, tick)
	assert.Equal(t, []string{"second"}, settled.snapshot(), "the superseded value is never observed")
}

func TestValue_RepeatedObserveKeepsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New(0, debounce.WithClock(clock))

	value.Observe(1, 500*time.Millisecond)
	clock.Advance(300 * time.Millisecond)
	value.Observe(1, 500*time.Millisecond)
	clock.Advance(200 * time.Millisecond)

	require.Eventually(t, func() bool { return value.Get() == 1 }, waitFor, tick)
}

func TestValue_DelayChangeRestartsWithNewDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("initial", debounce.WithClock(clock))

	value.Observe("query", 500*time.Millisecond)
	clock.Advance(400 * time.Millisecond)

	value.Observe("query", time.Second)
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, "initial", value.Get(), "the in-flight timer is not shortened nor kept")

	clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return value.Get() == "query" }, waitFor, tick)
}

func TestValue_ZeroDelayIsAsynchronous(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("initial", debounce.WithClock(clock))

	settled := make(chan string, 1)
	value.OnSettle(func(v string) { settled <- v })

	assert.Equal(t, "initial", value.Observe("now", 0), "zero delay never updates synchronously")

	select {
	case v := <-settled:
		assert.Equal(t, "now", v)
	case <-time.After(waitFor):
		t.Fatal("zero delay value never settled")
	}
	assert.Equal(t, "now", value.Get())
}

func TestValue_ZeroDelayWithRealClock(t *testing.T) {
	value := debounce.New("initial")

	assert.Equal(t, "initial", value.Observe("now", 0))
	require.Eventually(t, func() bool { return value.Get() == "now" }, waitFor, tick)
}

func TestValue_CloseCancelsPendingTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("initial", debounce.WithClock(clock))
	settled := &recorder{}
	value.OnSettle(settled.record)

	value.Observe("late", 500*time.Millisecond)
	value.Close()
	assert.False(t, value.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, "initial", value.Observe("after close", 0))
	assert.Never(t, func() bool { return value.Get() != "initial" }, 50*time.Millisecond, tick)
	assert.Empty(t, settled.snapshot())
}

func TestValue_SettlesToLastInput(t *testing.T) {
	clock := clockwork.NewFakeClock()
	value := debounce.New("", debounce.WithClock(clock))
	inputs := []string{"a", "ae", "aeo", "aeon"}

	for _, input := range inputs {
		value.Observe(input, 200*time.Millisecond)
		clock.Advance(100 * time.Millisecond)
		assert.Equal(t, "", value.Get())
	}

	clock.Advance(100 * time.Millisecond)
	require.Eventually(t, func() bool { return value.Get() == "aeon" }, waitFor, tick)
}
