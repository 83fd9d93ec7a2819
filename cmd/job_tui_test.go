package cmd

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"arma3-server-manager/arma"
)

type fakePoller struct {
	statuses map[string][]arma.JobStatus
}

func (f fakePoller) PollJob(_ context.Context, jobID string, _ time.Duration, _ int, onStatus func(arma.JobStatus)) arma.JobStatus {
	seq := f.statuses[jobID]
	for _, s := range seq {
		onStatus(s)
	}
	return seq[len(seq)-1]
}

func TestPollJobsReportsEveryJob(t *testing.T) {
	poller := fakePoller{statuses: map[string][]arma.JobStatus{
		"a": {{Status: "PENDING"}, {Status: "SUCCESS"}},
		"b": {{Status: "FAILURE", Message: "disk full"}},
	}}
	progress := make(chan JobProgressMsg, 10)
	pollJobs(context.Background(), poller, []jobRef{{Label: "Alpha", ID: "a"}, {Label: "Bravo", ID: "b"}}, progress)
	close(progress)

	var finished []string
	updates := 0
	for msg := range progress {
		switch msg.Type {
		case "finished":
			finished = append(finished, msg.Label+":"+msg.Status)
		case "status":
			updates++
		}
	}
	sort.Strings(finished)
	if diff := cmp.Diff([]string{"Alpha:SUCCESS", "Bravo:FAILURE"}, finished); diff != "" {
		t.Errorf("finished mismatch (-want +got):\n%s", diff)
	}
	if updates != 3 {
		t.Errorf("status updates = %d, want 3", updates)
	}
}

func TestJobModelApply(t *testing.T) {
	m := initialJobModel(context.Background(), fakePoller{}, []jobRef{{Label: "Alpha", ID: "a"}, {Label: "Bravo", ID: "b"}})

	m = m.apply(JobProgressMsg{Type: "status", Label: "Alpha", Status: "STARTED"})
	if m.status["Alpha"] != "STARTED" {
		t.Fatalf("status not tracked: %v", m.status)
	}
	m = m.apply(JobProgressMsg{Type: "finished", Label: "Alpha", Status: "SUCCESS"})
	m = m.apply(JobProgressMsg{Type: "finished", Label: "Bravo", Status: "FAILURE", Message: "timeout"})
	m = m.apply(JobProgressMsg{Type: "done"})

	if !m.done {
		t.Error("model not done")
	}
	if diff := cmp.Diff([]string{"Alpha"}, m.succeeded); diff != "" {
		t.Errorf("succeeded mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Bravo: timeout"}, m.failed); diff != "" {
		t.Errorf("failed mismatch (-want +got):\n%s", diff)
	}
}
