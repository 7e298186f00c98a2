package inspect

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestProbe_ResolvesOnce(t *testing.T) {
	daemon := &fakeDaemon{}
	probe := NewProbe(daemon, zerolog.Nop())

	const callers = 50
	results := make([]bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = probe.Enabled(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, daemon.pingCount(), "concurrent first callers must trigger exactly one ping")
	for _, r := range results {
		assert.True(t, r)
	}
	assert.Equal(t, StateEnabled, probe.CurrentState())
}

func TestProbe_DisabledOnPingFailure(t *testing.T) {
	daemon := &fakeDaemon{pingErr: errConnRefused}
	probe := NewProbe(daemon, zerolog.Nop())

	assert.False(t, probe.Enabled(context.Background()))
	assert.Equal(t, StateDisabled, probe.CurrentState())

	// Resolution is cached: no second ping, same answer.
	assert.False(t, probe.Enabled(context.Background()))
	assert.Equal(t, 1, daemon.pingCount())
}

func TestProbe_EnabledDespiteVersionFailure(t *testing.T) {
	daemon := &fakeDaemon{versionErr: errConnRefused}
	probe := NewProbe(daemon, zerolog.Nop())

	assert.True(t, probe.Enabled(context.Background()))
}

func TestProbe_UnresolvedUntilFirstCall(t *testing.T) {
	probe := NewProbe(&fakeDaemon{}, zerolog.Nop())
	assert.Equal(t, StateUnknown, probe.CurrentState())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unknown", StateUnknown.String())
	assert.Equal(t, "enabled", StateEnabled.String())
	assert.Equal(t, "disabled", StateDisabled.String())
}
