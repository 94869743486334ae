package jobs

import (
	"testing"
	"time"
)

func TestGroupJobs(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	jobs := []Job{
		{Pipeline: PipelineMarketPriceImport, Status: StatusCompleted, CreatedAt: base},
		{Pipeline: PipelineCollectionImport, Status: StatusFailed, CreatedAt: base.Add(time.Minute)},
		{Pipeline: PipelineCollectionImport, Status: StatusRunning, CreatedAt: base.Add(3 * time.Minute)},
		{Pipeline: PipelineCollectionImport, Status: StatusCompleted, CreatedAt: base.Add(2 * time.Minute)},
	}

	groups := GroupJobs(jobs)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Pipeline != PipelineCollectionImport || groups[1].Pipeline != PipelineMarketPriceImport {
		t.Errorf("pipelines = %q, %q, want sorted by name", groups[0].Pipeline, groups[1].Pipeline)
	}

	col := groups[0]
	if !col.Active {
		t.Error("collection group should be active")
	}
	for i := 1; i < len(col.Jobs); i++ {
		if col.Jobs[i].CreatedAt.After(col.Jobs[i-1].CreatedAt) {
			t.Errorf("jobs not newest first at %d", i)
		}
	}
	if col.Counts[StatusRunning] != 1 || col.Counts[StatusFailed] != 1 || col.Counts[StatusCompleted] != 1 {
		t.Errorf("Counts = %v", col.Counts)
	}
	if groups[1].Active {
		t.Error("market price group should not be active")
	}
}

func TestGroupJobsEmpty(t *testing.T) {
	if got := GroupJobs(nil); len(got) != 0 {
		t.Errorf("GroupJobs(nil) = %v, want empty", got)
	}
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name   string
		groups []Group
		want   time.Duration
	}{
		{"no groups", nil, IdlePollInterval},
		{"all finished", []Group{{Active: false}, {Active: false}}, IdlePollInterval},
		{"one active", []Group{{Active: false}, {Active: true}}, ActivePollInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PollInterval(tt.groups); got != tt.want {
				t.Errorf("PollInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusActive(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusQueued:    true,
		StatusRunning:   true,
		StatusCompleted: false,
		StatusFailed:    false,
	} {
		if got := s.Active(); got != want {
			t.Errorf("%s.Active() = %v, want %v", s, got, want)
		}
	}
}
