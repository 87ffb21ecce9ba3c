package version

import "testing"

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "short commit kept",
			info: Info{Commit: "abc", BuildTime: "now"},
			want: "shiftdesk dev (commit: abc, built: now)",
		},
		{
			name: "long commit truncated",
			info: Info{Commit: "0123456789abcdef", BuildTime: "2024-03-15"},
			want: "shiftdesk dev (commit: 0123456, built: 2024-03-15)",
		},
		{
			name: "dirty tree marked",
			info: Info{Commit: "0123456789", BuildTime: "unknown", Modified: true},
			want: "shiftdesk dev (commit: 0123456-dirty, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGet_PrefersInjectedValues(t *testing.T) {
	oldCommit, oldTime := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldTime })

	Commit, BuildTime = "feedface", "2024-03-15T10:00:00Z"
	info := Get()
	if info.Commit != "feedface" {
		t.Errorf("Commit = %q, want feedface", info.Commit)
	}
	if info.BuildTime != "2024-03-15T10:00:00Z" {
		t.Errorf("BuildTime = %q, want injected value", info.BuildTime)
	}
}
