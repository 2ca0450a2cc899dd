package arp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/command"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
)

// DefaultTimeout bounds a single neighbor cache query
const DefaultTimeout = 3 * time.Second

// ErrNeighborRead is returned when the neighbor cache tool could not be run
var ErrNeighborRead = errors.New("failed to read neighbor table")

var (
	ipv4Pattern = regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}`)
	// macOS prints octets without leading zeros (0:1a:2b:...)
	macPattern = regexp.MustCompile(`[0-9a-fA-F]{1,2}(?:[:-][0-9a-fA-F]{1,2}){5}`)
)

// Reader reads the OS neighbor cache through an executor
type Reader struct {
	Executor command.Executor
	Timeout  time.Duration
}

// NewReader returns a reader using executor with the default timeout
func NewReader(executor command.Executor) *Reader {
	return &Reader{Executor: executor, Timeout: DefaultTimeout}
}

// Read dumps the neighbor cache and parses every (ip, mac) row.
// A non-zero exit of the tool is not an error, its output is still parsed.
func (r *Reader) Read(ctx context.Context) ([]types.NeighborEntry, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := r.Executor.Neighbors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNeighborRead, err)
	}
	if !result.Success() {
		gologger.Debug().Msgf("neighbor query exited with status %d", result.ExitCode)
	}

	entries := ParseTable(result.Combined())
	gologger.Verbose().Msgf("read %d neighbor entries", len(entries))
	return entries, nil
}

// ParseTable extracts one IPv4 address and one hardware address per line.
// It understands the Linux and macOS arp, iproute2 and Windows formats:
//
//	? (192.168.1.1) at aa:bb:cc:dd:ee:ff [ether] on eth0
//	192.168.1.1 dev eth0 lladdr aa:bb:cc:dd:ee:ff REACHABLE
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
//
// Lines missing either token, or carrying an all-zero or broadcast hardware
// address, are skipped. Duplicates are kept in output order.
func ParseTable(output string) []types.NeighborEntry {
	var entries []types.NeighborEntry

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		ip := ipv4Pattern.FindString(line)
		rawMAC := macPattern.FindString(line)
		if ip == "" || rawMAC == "" {
			continue
		}

		mac, err := types.ParseHardwareAddr(padOctets(rawMAC))
		if err != nil {
			continue
		}
		entries = append(entries, types.NeighborEntry{IP: ip, MAC: mac})
	}

	return entries
}

// padOctets widens single digit octets so 0:1a:2b:3c:4d:5e becomes 00:1a:...
func padOctets(mac string) string {
	octets := strings.FieldsFunc(mac, func(r rune) bool { return r == ':' || r == '-' })
	for i, octet := range octets {
		if len(octet) == 1 {
			octets[i] = "0" + octet
		}
	}
	return strings.Join(octets, ":")
}
