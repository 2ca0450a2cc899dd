// Package discovery finds the devices of a local IPv4 network by reading
// the neighbor cache, optionally after a ping sweep has refreshed it.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
	mapsutil "github.com/projectdiscovery/utils/maps"
)

// Mode selects how the neighbor cache is populated before it is read
type Mode string

const (
	// ModeARPOnly reads whatever the cache already holds
	ModeARPOnly Mode = "arp_only"
	// ModePingSweep probes every host of the range before reading
	ModePingSweep Mode = "ping_sweep"
)

// ErrInvalidMode is returned for an unknown discovery mode
var ErrInvalidMode = errors.New("invalid discovery mode, use arp_only or ping_sweep")

// ParseMode validates a textual mode. An empty value selects ModePingSweep.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ModePingSweep, nil
	case ModeARPOnly, ModePingSweep:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, value)
	}
}

// NeighborReader returns the rows of the OS neighbor cache
type NeighborReader interface {
	Read(ctx context.Context) ([]types.NeighborEntry, error)
}

// RangeSweeper probes every host of a range
type RangeSweeper interface {
	SweepRange(ctx context.Context, r *common.NetworkRange)
}

// Request describes a single discovery run
type Request struct {
	RouterIP   string
	SubnetCIDR string
	Mode       string
}

// Coordinator composes range resolution, sweeping and neighbor reading
type Coordinator struct {
	Reader  NeighborReader
	Sweeper RangeSweeper
}

// New returns a coordinator
func New(reader NeighborReader, sweeper RangeSweeper) *Coordinator {
	return &Coordinator{Reader: reader, Sweeper: sweeper}
}

// Discover returns the devices of the requested range, one per address,
// sorted by address. When the cache lists an address more than once the
// last row wins.
func (c *Coordinator) Discover(ctx context.Context, req Request) ([]types.DiscoveredDevice, error) {
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	networkRange, err := common.Resolve(req.RouterIP, req.SubnetCIDR)
	if err != nil {
		return nil, err
	}
	gologger.Verbose().Msgf("discovering %s (%d hosts) in %s mode", networkRange, len(networkRange.Hosts), mode)

	if mode == ModePingSweep && c.Sweeper != nil {
		c.Sweeper.SweepRange(ctx, networkRange)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	entries, err := c.Reader.Read(ctx)
	if err != nil {
		return nil, err
	}

	return Merge(networkRange, entries), nil
}

// Merge keeps the entries that belong to r and deduplicates them by address
func Merge(r *common.NetworkRange, entries []types.NeighborEntry) []types.DiscoveredDevice {
	devices := mapsutil.NewSyncLockMap[string, types.HardwareAddr]()
	for _, entry := range entries {
		if !r.Contains(entry.IP) {
			continue
		}
		_ = devices.Set(entry.IP, entry.MAC)
	}

	result := make([]types.DiscoveredDevice, 0, len(entries))
	_ = devices.Iterate(func(ip string, mac types.HardwareAddr) error {
		result = append(result, types.DiscoveredDevice{IP: ip, MAC: mac})
		return nil
	})
	sort.Slice(result, func(i, j int) bool {
		return prescan.CompareAddr(result[i].IP, result[j].IP) < 0
	})
	return result
}
