package env_test

import (
	"testing"

	"github.com/manzanit0/whereabouts/pkg/env"
)

func TestMaxUploadBytes(t *testing.T) {
	testCases := []struct {
		desc    string
		value   string
		want    int64
		wantErr bool
	}{
		{desc: "unset falls back to 10 MiB", value: "", want: 10 << 20},
		{desc: "explicit value is honoured", value: "1048576", want: 1 << 20},
		{desc: "non-numeric value errors", value: "ten megabytes", wantErr: true},
		{desc: "zero errors", value: "0", wantErr: true},
		{desc: "negative errors", value: "-1", wantErr: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			t.Setenv("MAX_UPLOAD_BYTES", tC.value)

			got, err := env.MaxUploadBytes()
			if tC.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if got != tC.want {
				t.Errorf("got %d, expected %d", got, tC.want)
			}
		})
	}
}

func TestClaudeConfig(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "")

	cfg := env.ClaudeConfig()
	if cfg.Configured() {
		t.Error("an empty key should not count as configured")
	}

	t.Setenv("CLAUDE_API_KEY", "sk-test")

	cfg = env.ClaudeConfig()
	if !cfg.Configured() {
		t.Error("a real key should count as configured")
	}
}
