package arp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/projectdiscovery/netmon-agent/pkg/command"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
)

const (
	linuxARP = `? (192.168.1.1) at aa:bb:cc:dd:ee:ff [ether] on eth0
? (192.168.1.77) at <incomplete> on eth0
router.lan (192.168.1.254) at 00:00:00:00:00:00 [ether] on eth0
`
	darwinARP = `? (10.0.0.1) at 0:1a:2b:3c:4d:5e on en0 ifscope [ethernet]
? (10.0.0.255) at ff:ff:ff:ff:ff:ff on en0 ifscope [ethernet]
`
	iprouteNeigh = `192.168.1.50 dev eth0 lladdr 11:22:33:44:55:66 REACHABLE
192.168.1.60 dev eth0  FAILED
fe80::1 dev eth0 lladdr aa:bb:cc:dd:ee:01 router STALE
`
	windowsARP = `
Interface: 192.168.1.100 --- 0xa
  Internet Address      Physical Address      Type
  192.168.1.1           AA-BB-CC-DD-EE-FF     dynamic
  192.168.1.255         ff-ff-ff-ff-ff-ff     static
  224.0.0.22            01-00-5e-00-00-16     static
`
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []types.NeighborEntry
	}{
		{
			name:   "linux arp",
			output: linuxARP,
			want:   []types.NeighborEntry{{IP: "192.168.1.1", MAC: "aa:bb:cc:dd:ee:ff"}},
		},
		{
			name:   "macos arp pads short octets",
			output: darwinARP,
			want:   []types.NeighborEntry{{IP: "10.0.0.1", MAC: "00:1a:2b:3c:4d:5e"}},
		},
		{
			name:   "iproute2 neigh",
			output: iprouteNeigh,
			want:   []types.NeighborEntry{{IP: "192.168.1.50", MAC: "11:22:33:44:55:66"}},
		},
		{
			name:   "windows arp",
			output: windowsARP,
			want: []types.NeighborEntry{
				{IP: "192.168.1.1", MAC: "aa:bb:cc:dd:ee:ff"},
				{IP: "224.0.0.22", MAC: "01:00:5e:00:00:16"},
			},
		},
		{
			name:   "duplicates are kept",
			output: "? (10.0.0.2) at aa:aa:aa:aa:aa:aa\n? (10.0.0.2) at aa:aa:aa:aa:aa:aa\n",
			want: []types.NeighborEntry{
				{IP: "10.0.0.2", MAC: "aa:aa:aa:aa:aa:aa"},
				{IP: "10.0.0.2", MAC: "aa:aa:aa:aa:aa:aa"},
			},
		},
		{
			name:   "empty output",
			output: "",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTable(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseTable() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseTable()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

type fakeExecutor struct {
	result   *command.Result
	err      error
	deadline bool
}

func (f *fakeExecutor) Ping(ctx context.Context, host string, timeout time.Duration) (*command.Result, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeExecutor) Neighbors(ctx context.Context) (*command.Result, error) {
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

func TestReaderRead(t *testing.T) {
	executor := &fakeExecutor{result: &command.Result{Stdout: linuxARP, Stderr: iprouteNeigh, ExitCode: 1}}
	reader := NewReader(executor)

	got, err := reader.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Read() = %v, want 2 entries from stdout and stderr", got)
	}
	if !executor.deadline {
		t.Error("Read() did not bound the neighbor query with a deadline")
	}
}

func TestReaderReadFailure(t *testing.T) {
	reader := NewReader(&fakeExecutor{err: context.DeadlineExceeded})

	_, err := reader.Read(context.Background())
	if !errors.Is(err, ErrNeighborRead) {
		t.Errorf("Read() error = %v, want %v", err, ErrNeighborRead)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Read() error = %v, want wrapped deadline", err)
	}
}
