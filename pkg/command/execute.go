package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
)

// Result holds the captured output of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited with status zero
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Combined returns stdout followed by stderr
func (r *Result) Combined() string {
	if r == nil {
		return ""
	}
	return r.Stdout + r.Stderr
}

// Executor hides the platform specific invocation of the reachability probe
// and the neighbor cache query behind one interface.
type Executor interface {
	// Ping sends a single echo request to host and waits at most timeout for the reply
	Ping(ctx context.Context, host string, timeout time.Duration) (*Result, error)
	// Neighbors dumps the OS neighbor (ARP) cache
	Neighbors(ctx context.Context) (*Result, error)
}

// OSExecutor runs the tools shipped with the operating system
type OSExecutor struct {
	// binaries caches resolved executable paths so PATH is searched once per tool
	binaries gcache.Cache[string, string]
}

// New returns an executor for the current platform
func New() *OSExecutor {
	return &OSExecutor{binaries: gcache.New[string, string](32).LRU().Build()}
}

// Ping runs the platform ping tool for a single echo request. An exit
// status of zero without an echo reply in the output is reported as exit
// status one.
func (e *OSExecutor) Ping(ctx context.Context, host string, timeout time.Duration) (*Result, error) {
	name, args := pingCommand(host, timeout)
	result, err := e.Run(ctx, name, args...)
	if err != nil {
		return result, err
	}
	if result.Success() && !pingReplied(result.Stdout) {
		result.ExitCode = 1
	}
	return result, nil
}

// Neighbors runs the platform neighbor cache query tool
func (e *OSExecutor) Neighbors(ctx context.Context) (*Result, error) {
	name, args := neighborCommand(e.lookPath)
	return e.Run(ctx, name, args...)
}

func (e *OSExecutor) lookPath(name string) (string, error) {
	if e.binaries != nil {
		if path, err := e.binaries.Get(name); err == nil {
			return path, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	if e.binaries != nil {
		_ = e.binaries.Set(name, path)
	}
	return path, nil
}

// Run executes name with args and captures stdout and stderr.
// Failing to start the process or running past the context deadline is an
// error; a non-zero exit status is reported in Result.ExitCode instead.
func (e *OSExecutor) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	path, err := e.lookPath(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find tool '%s': %w", name, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start tool '%s': %w", name, err)
	}

	err = cmd.Wait()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("tool '%s' did not finish: %w", name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to execute tool '%s': %w", name, err)
	}
	return result, nil
}

// hasEchoReply reports whether ping output contains an echo reply line.
// Replies carry the TTL of the answering host ("TTL=64" or "ttl=64"), while
// "Destination host unreachable" from the local stack does not.
func hasEchoReply(output string) bool {
	return strings.Contains(strings.ToLower(output), "ttl=")
}

// timeoutSeconds rounds timeout to whole seconds, never below one
func timeoutSeconds(timeout time.Duration) int {
	seconds := int(math.Round(timeout.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

// InvocationTimeout bounds a single probe process: the probe's own wait
// rounded up to seconds plus one second for process startup.
func InvocationTimeout(timeout time.Duration) time.Duration {
	return time.Duration(timeoutSeconds(timeout)+1) * time.Second
}
