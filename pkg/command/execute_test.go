package command

import (
	"os/exec"
	"testing"
)

func TestHasEchoReply(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{
			name:   "windows reply",
			output: "Reply from 192.168.1.1: bytes=32 time=3ms TTL=64\r\n",
			want:   true,
		},
		{
			name:   "posix reply",
			output: "64 bytes from 192.168.1.1: icmp_seq=1 ttl=64 time=0.42 ms\n",
			want:   true,
		},
		{
			name:   "windows local stack unreachable",
			output: "Reply from 192.168.1.100: Destination host unreachable.\r\n",
			want:   false,
		},
		{
			name:   "windows request timed out",
			output: "Request timed out.\r\n",
			want:   false,
		},
		{
			name:   "empty",
			output: "",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasEchoReply(tt.output); got != tt.want {
				t.Errorf("hasEchoReply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecutorCachesBinaries(t *testing.T) {
	want, err := exec.LookPath("ping")
	if err != nil {
		t.Skip("ping not available")
	}

	executor := New()
	got, err := executor.lookPath("ping")
	if err != nil {
		t.Fatalf("lookPath() error = %v", err)
	}
	if got != want {
		t.Errorf("lookPath() = %s, want %s", got, want)
	}
	if cached, err := executor.binaries.Get("ping"); err != nil || cached != want {
		t.Errorf("binaries.Get() = %s, %v, want %s", cached, err, want)
	}
	if _, err := New().binaries.Get("ping"); err == nil {
		t.Error("a new executor shares resolved paths with another executor")
	}
}
