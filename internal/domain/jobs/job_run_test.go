package jobs

import "testing"

func TestPublicStatus(t *testing.T) {
	cases := []struct {
		name string
		job  JobRun
		want string
	}{
		{"queued", JobRun{Status: StatusQueued}, StatusPending},
		{"queued stage", JobRun{Status: StatusQueued, Stage: StageQueued}, StatusPending},
		{"yielded", JobRun{Status: StatusQueued, Stage: "waiting_strands"}, StatusRunning},
		{"running", JobRun{Status: StatusRunning}, StatusRunning},
		{"succeeded", JobRun{Status: StatusSucceeded}, StatusSucceeded},
		{"permanent failure", JobRun{Status: StatusFailed, Attempts: 1}, StatusFailed},
		{"retry pending", JobRun{Status: StatusFailed, Retryable: true, Attempts: 1}, StatusRunning},
		{"retries exhausted", JobRun{Status: StatusFailed, Retryable: true, Attempts: 3}, StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PublicStatus(&tc.job, 3); got != tc.want {
				t.Fatalf("PublicStatus=%q want %q", got, tc.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if (&JobRun{Status: StatusRunning}).Terminal(3) {
		t.Fatalf("running job reported terminal")
	}
	if !(&JobRun{Status: StatusFailed, Retryable: true, Attempts: 3}).Terminal(3) {
		t.Fatalf("exhausted retryable job should be terminal")
	}
	if (&JobRun{Status: StatusFailed, Retryable: true, Attempts: 1}).Terminal(3) {
		t.Fatalf("retryable job with attempts left should not be terminal")
	}
}
