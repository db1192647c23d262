package fasim_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/fasim"
	"github.com/aretw0/fasim/pkg/domain"
	"github.com/aretw0/fasim/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RegisterAndRun(t *testing.T) {
	ctx := context.Background()
	eng := fasim.New()

	a, err := format.Load(strings.NewReader(endsWithAB))
	require.NoError(t, err)
	require.NoError(t, eng.Register(ctx, "ends-ab", a))

	_, run, err := eng.Run(ctx, "ends-ab", "bab", true)
	require.NoError(t, err)
	assert.True(t, run.Accepted())
	assert.Len(t, run.Trace, 3)

	_, run, err = eng.Run(ctx, "ends-ab", "ba", false)
	require.NoError(t, err)
	assert.False(t, run.Accepted())
	assert.Nil(t, run.Trace)

	_, _, err = eng.Run(ctx, "unknown", "a", false)
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)

	err = eng.Register(ctx, "bad/name", a)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestEngine_Hooks(t *testing.T) {
	var steps, verdicts int
	var last *domain.VerdictEvent
	eng := fasim.New(fasim.WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) { steps++ },
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			verdicts++
			last = e
		},
	}))

	a, err := format.Load(strings.NewReader(endsWithAB))
	require.NoError(t, err)

	_, err = eng.Simulate(context.Background(), a, fasim.Symbols("aab"))
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
	assert.Equal(t, 1, verdicts)
	require.NotNil(t, last)
	assert.Equal(t, domain.VerdictAccepted, last.Verdict)
	assert.Equal(t, 3, last.Length)
}

func TestEngine_StepAgreesWithSimulate(t *testing.T) {
	ctx := context.Background()
	eng := fasim.New()
	a, err := format.Load(strings.NewReader(endsWithAB))
	require.NoError(t, err)

	for _, word := range []string{"", "a", "ab", "abab", "bbbab", "abc"} {
		cfg, err := eng.InitialConfiguration(a)
		require.NoError(t, err)
		stuck := false
		for _, sym := range fasim.Symbols(word) {
			res := eng.Step(ctx, a, cfg, sym)
			cfg = res.Next
			if res.Stuck {
				stuck = true
				break
			}
		}
		manual := !stuck && eng.IsAccepting(a, cfg)

		run, err := eng.Simulate(ctx, a, fasim.Symbols(word))
		require.NoError(t, err)
		assert.Equal(t, manual, run.Accepted(), word)
	}
}

func TestEngine_Export(t *testing.T) {
	a, err := format.Load(strings.NewReader(endsWithAB))
	require.NoError(t, err)

	desc := fasim.New().Export(a)
	assert.Len(t, desc.Nodes, 3)
	assert.Len(t, desc.Edges, 4)
	require.NotNil(t, desc.Entry)
	assert.Equal(t, "q0", desc.Entry.To)
}
