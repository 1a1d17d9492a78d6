package main

import (
	"context"
	"strings"
	"testing"
)

func TestRun_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no command", nil, ExitUsage, "", "Usage: mdslides"},
		{"unknown command", []string{"present"}, ExitUsage, "", "unknown command: present"},
		{"version", []string{"version"}, ExitSuccess, "mdslides " + Version, ""},
		{"version flag", []string{"--version"}, ExitSuccess, "mdslides " + Version, ""},
		{"help", []string{"help"}, ExitSuccess, "Commands:", ""},
		{"help export", []string{"help", "export"}, ExitSuccess, "mdslides export", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			code := run(context.Background(), tt.args, env.Environment)
			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(env.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", env.stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", env.stderr.String(), tt.wantStderr)
			}
		})
	}
}
