package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type immediateDriver struct {
	started int
	stopped int
}

func (d *immediateDriver) Start(_ context.Context, job func(time.Time)) error {
	d.started++
	job(fixedNow)
	return nil
}

func (d *immediateDriver) Stop(context.Context) error {
	d.stopped++
	return nil
}

func TestSchedulerRefreshesConfiguredUsers(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	r := newTestRecommender(newKeywordEmbedder(), singlePageFeed(), newMemoryStore(), pub)
	driver := &immediateDriver{}

	s := NewScheduler(driver, r, []string{"alice", "bob"})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, 1, driver.started)
	assert.Equal(t, 1, driver.stopped)
	sets := pub.published()
	require.Len(t, sets, 2)
	assert.Equal(t, "alice", sets[0].UserID)
	assert.Equal(t, "bob", sets[1].UserID)
}

func TestSchedulerRequiresUsers(t *testing.T) {
	t.Parallel()

	r := newTestRecommender(newKeywordEmbedder(), singlePageFeed(), newMemoryStore())
	assert.Error(t, NewScheduler(&immediateDriver{}, r, nil).Start(context.Background()))
	assert.NoError(t, NewScheduler(nil, r, nil).Start(context.Background()))
}
