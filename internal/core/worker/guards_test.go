package worker

import "testing"

func TestCanRegisterWorker(t *testing.T) {
	tests := []struct {
		name        string
		ctx         RegisterWorkerContext
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "new worker",
			ctx:         RegisterWorkerContext{WorkerID: 100, DisplayName: "Giulia R"},
			wantAllowed: true,
		},
		{
			name:        "already registered",
			ctx:         RegisterWorkerContext{WorkerID: 100, DisplayName: "Giulia R", AlreadyExists: true},
			wantAllowed: false,
			wantReason:  "worker 100 is already registered",
		},
		{
			name:        "name too short",
			ctx:         RegisterWorkerContext{WorkerID: 100, DisplayName: "G"},
			wantAllowed: false,
			wantReason:  "display name too short (1 characters, minimum 2)",
		},
		{
			name:        "missing id",
			ctx:         RegisterWorkerContext{DisplayName: "Giulia"},
			wantAllowed: false,
			wantReason:  "invalid worker id 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanRegisterWorker(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("  <Marco>  "); got != "Marco" {
		t.Errorf("SanitizeName = %q, want %q", got, "Marco")
	}
}
