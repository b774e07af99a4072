package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elementsenergies/flexrank/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newTestScheduler() *Scheduler {
	s := New(logger.NewNop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := newTestScheduler()

	if err := s.AddJob(&stubJob{name: "a", schedule: "@daily"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.AddJob(&stubJob{name: "a", schedule: "@daily"}); err == nil {
		t.Fatal("expected error for duplicate job name")
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := newTestScheduler()

	if err := s.AddJob(&stubJob{name: "a", schedule: "not a cron"}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestRunNowRecordsSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "a", schedule: "@daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.RunNow("a"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	if job.runs != 1 {
		t.Errorf("job ran %d times, want 1", job.runs)
	}

	history, err := s.History("a")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	last := history.Last()
	if last == nil || !last.Success {
		t.Errorf("last result = %+v, want success", last)
	}
}

func TestRunNowRetriesAndRecordsFailure(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "a", schedule: "@daily", err: errors.New("boom")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.RunNow("a"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	// initial attempt plus maxRetries
	if job.runs != s.maxRetries+1 {
		t.Errorf("job ran %d times, want %d", job.runs, s.maxRetries+1)
	}

	history, _ := s.History("a")
	last := history.Last()
	if last == nil || last.Success {
		t.Errorf("last result = %+v, want failure", last)
	}
	if last != nil && last.Error == "" {
		t.Error("failure recorded without an error message")
	}
}

func TestRunNowUnknownJob(t *testing.T) {
	s := newTestScheduler()
	if err := s.RunNow("missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestJobHistoryCapsResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistoryResults+20; i++ {
		h.Add(JobResult{JobName: "a", Success: true})
	}
	if len(h.Results) != maxHistoryResults {
		t.Errorf("history holds %d results, want %d", len(h.Results), maxHistoryResults)
	}
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}
	h.Add(JobResult{Success: true})
	h.Add(JobResult{Success: true})
	h.Add(JobResult{Success: false})

	want := 2.0 / 3.0
	if got := h.SuccessRate(); got != want {
		t.Errorf("success rate = %f, want %f", got, want)
	}
}
