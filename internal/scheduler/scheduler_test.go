package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loancore/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	ran      chan struct{}
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(context.Context) error {
	close(j.ran)
	return nil
}

func TestAddJobRejectsDuplicatesAndBadSchedules(t *testing.T) {
	s := New(logger.NewNop())

	job := &stubJob{name: "weekly_purchase_run", schedule: "0 0 6 * * 1", ran: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	err := s.AddJob(&stubJob{name: "weekly_purchase_run", schedule: "0 0 6 * * 1"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&stubJob{name: "broken", schedule: "not a cron spec"})
	assert.Error(t, err)

	assert.Equal(t, []string{"weekly_purchase_run"}, s.GetAllJobs())
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())

	job := &stubJob{name: "weekly_purchase_run", schedule: "0 0 6 * * 1", ran: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("weekly_purchase_run"))
	select {
	case <-job.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}

	// history write happens after Run returns
	assert.Eventually(t, func() bool {
		history, err := s.GetJobHistory("weekly_purchase_run")
		return err == nil && history.Latest() != nil && history.Latest().Success
	}, 5*time.Second, 10*time.Millisecond)

	_, err := s.GetJobHistory("unknown")
	assert.Error(t, err)
	assert.Error(t, s.RunJob("unknown"))
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())
	assert.Nil(t, h.Latest())

	h.AddResult(JobResult{JobName: "j", Success: true})
	h.AddResult(JobResult{JobName: "j", Success: false})
	assert.Equal(t, 0.5, h.GetSuccessRate())
	assert.False(t, h.Latest().Success)

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "j", Success: true})
	}
	assert.Len(t, h.Results, 100)
}
