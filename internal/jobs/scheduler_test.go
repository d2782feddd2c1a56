package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name, schedule string
	runs           int
	err            error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestRegisterAndRunByName(t *testing.T) {
	s := NewScheduler()

	hourly := &countingJob{name: "hourly", schedule: "@every 1h"}
	manual := &countingJob{name: "manual"}
	require.NoError(t, s.Register(hourly))
	require.NoError(t, s.Register(manual))
	assert.Error(t, s.Register(&countingJob{name: "broken", schedule: "whenever"}))

	assert.Equal(t, []string{"hourly", "manual"}, s.Registered())

	require.NoError(t, s.RunByName(context.Background(), "manual"))
	assert.Equal(t, 1, manual.runs)
	assert.Zero(t, hourly.runs)

	assert.Error(t, s.RunByName(context.Background(), "broken"))
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Register(&countingJob{name: "tick", schedule: "@every 1h"}))
	s.Start()
	s.Stop(context.Background())
}
