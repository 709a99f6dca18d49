package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAutoCloseJob(t *testing.T) {
	env := newTestEnv(t)

	started := env.createMatch(t, func(m *Match) {
		m.StartTime = env.now.Add(-1 * time.Hour)
	})
	upcoming := env.createMatch(t, func(m *Match) {
		m.StartTime = env.now.Add(2 * time.Hour)
	})
	canceled := env.createMatch(t, func(m *Match) {
		m.StartTime = env.now.Add(-1 * time.Hour)
		m.Status = MatchCanceled
	})

	job := NewAutoCloseJob(env.repo)
	job.now = func() time.Time { return env.now }
	job.Run()

	got, err := env.repo.GetMatch(started.ID)
	require.NoError(t, err)
	require.Equal(t, MatchClosed, got.Status)

	got, err = env.repo.GetMatch(upcoming.ID)
	require.NoError(t, err)
	require.Equal(t, MatchOpen, got.Status)

	// Canceled matches are left alone.
	got, err = env.repo.GetMatch(canceled.ID)
	require.NoError(t, err)
	require.Equal(t, MatchCanceled, got.Status)

	// Running again is a no-op.
	job.Run()
	got, err = env.repo.GetMatch(started.ID)
	require.NoError(t, err)
	require.Equal(t, MatchClosed, got.Status)
}
