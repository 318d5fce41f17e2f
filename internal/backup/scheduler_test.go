// SPDX-License-Identifier: MIT
package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(NewBackupManager(t.TempDir(), 1), setupFileDB(t), "every tuesday")
	assert.Error(t, s.Start())
}

func TestSchedulerRunNowPrunes(t *testing.T) {
	m := NewBackupManager(t.TempDir(), 1)
	m.now = fixedClock(time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC))
	s := NewScheduler(m, setupFileDB(t), "@daily")

	_, err := s.RunNow(context.Background())
	require.NoError(t, err)
	last, err := s.RunNow(context.Background())
	require.NoError(t, err)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, last, list[0].Path)
	assert.Equal(t, 2, s.Runs())
}

func TestSchedulerFires(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron clock")
	}
	s := NewScheduler(NewBackupManager(t.TempDir(), 5), setupFileDB(t), "@every 1s")
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return s.Runs() >= 1 }, 5*time.Second, 50*time.Millisecond)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(NewBackupManager(t.TempDir(), 1), nil, "@daily")

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop within timeout")
	}
}
