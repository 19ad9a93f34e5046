package decision_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/splitkit/pkg/decision"
	"github.com/dmitrymomot/splitkit/pkg/project"
)

func TestSetForcedVariation(t *testing.T) {
	t.Parallel()

	exp := runningExperiment("exp-1", "checkout")
	cfg := newStubConfig([]project.Experiment{exp})

	t.Run("SetAndGet", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))

		require.True(t, svc.SetForcedVariation(cfg, "checkout", "user-1", "treatment"))
		v := svc.GetForcedVariation(cfg, "checkout", "user-1")
		require.NotNil(t, v)
		assert.Equal(t, "treatment", v.Key)
	})

	t.Run("OverwritesPreviousEntry", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))

		require.True(t, svc.SetForcedVariation(cfg, "checkout", "user-1", "control"))
		require.True(t, svc.SetForcedVariation(cfg, "checkout", "user-1", "treatment"))

		v := svc.GetForcedVariation(cfg, "checkout", "user-1")
		require.NotNil(t, v)
		assert.Equal(t, "treatment", v.Key)
	})

	t.Run("EmptyVariationKey", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))
		assert.False(t, svc.SetForcedVariation(cfg, "checkout", "user-1", ""))
		assert.Nil(t, svc.GetForcedVariation(cfg, "checkout", "user-1"))
	})

	t.Run("UnknownExperimentKey", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))
		assert.False(t, svc.SetForcedVariation(cfg, "ghost", "user-1", "treatment"))
	})

	t.Run("UnknownVariationKey", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))
		assert.False(t, svc.SetForcedVariation(cfg, "checkout", "user-1", "ghost"))
		assert.Nil(t, svc.GetForcedVariation(cfg, "checkout", "user-1"))
	})
}

func TestGetForcedVariation(t *testing.T) {
	t.Parallel()

	exp := runningExperiment("exp-1", "checkout")
	cfg := newStubConfig([]project.Experiment{exp})

	t.Run("AbsenceIsNotAnError", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))
		assert.Nil(t, svc.GetForcedVariation(cfg, "checkout", "never-seen-user"))
		assert.Nil(t, svc.GetForcedVariation(cfg, "ghost", "user-1"))
	})
}

func TestRemoveForcedVariation(t *testing.T) {
	t.Parallel()

	exp := runningExperiment("exp-1", "checkout")
	cfg := newStubConfig([]project.Experiment{exp})

	t.Run("ClearAfterSet", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))

		require.True(t, svc.SetForcedVariation(cfg, "checkout", "user-1", "treatment"))
		require.True(t, svc.RemoveForcedVariation(cfg, "checkout", "user-1"))
		assert.Nil(t, svc.GetForcedVariation(cfg, "checkout", "user-1"))
	})

	t.Run("ClearWithoutEntrySucceeds", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))
		assert.True(t, svc.RemoveForcedVariation(cfg, "checkout", "user-1"))
	})

	t.Run("UnknownExperimentKey", func(t *testing.T) {
		t.Parallel()
		svc := decision.NewService(decision.WithLogger(quietLogger()))
		assert.False(t, svc.RemoveForcedVariation(cfg, "ghost", "user-1"))
	})
}

func TestForcedVariationConcurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	exp := runningExperiment("exp-1", "checkout")
	cfg := newStubConfig([]project.Experiment{exp})
	svc := decision.NewService(decision.WithLogger(quietLogger()))

	// Hammer the forced-variation store from many goroutines. The test
	// passes when nothing races or corrupts; run with -race.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n%4)
			for j := 0; j < 100; j++ {
				svc.SetForcedVariation(cfg, "checkout", userID, "treatment")
				svc.GetForcedVariation(cfg, "checkout", userID)
				svc.GetVariation(ctx, cfg, exp, decision.UserContext{ID: userID})
				svc.RemoveForcedVariation(cfg, "checkout", userID)
			}
		}(i)
	}
	wg.Wait()
}
