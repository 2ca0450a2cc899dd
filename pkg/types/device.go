package types

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidHardwareAddr is returned for malformed, all-zero or broadcast addresses
var ErrInvalidHardwareAddr = errors.New("invalid hardware address")

var hardwareAddrPattern = regexp.MustCompile(`^[0-9a-f]{2}(:[0-9a-f]{2}){5}$`)

// HardwareAddr is a six-octet link-layer address stored as lowercase
// colon-separated hex.
type HardwareAddr string

const (
	zeroHardwareAddr      HardwareAddr = "00:00:00:00:00:00"
	broadcastHardwareAddr HardwareAddr = "ff:ff:ff:ff:ff:ff"
)

// ParseHardwareAddr normalizes value into canonical form.
// Both aa-bb-cc-dd-ee-ff and AA:BB:CC:DD:EE:FF are accepted.
func ParseHardwareAddr(value string) (HardwareAddr, error) {
	mac := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", ":")
	if !hardwareAddrPattern.MatchString(mac) {
		return "", ErrInvalidHardwareAddr
	}
	addr := HardwareAddr(mac)
	if addr == zeroHardwareAddr || addr == broadcastHardwareAddr {
		return "", ErrInvalidHardwareAddr
	}
	return addr, nil
}

func (h HardwareAddr) String() string {
	return string(h)
}

// NeighborEntry is a single row read from the OS neighbor cache
type NeighborEntry struct {
	IP  string
	MAC HardwareAddr
}

// DiscoveredDevice is a neighbor that belongs to the requested network
type DiscoveredDevice struct {
	IP  string       `json:"ip_address"`
	MAC HardwareAddr `json:"mac_address"`
}
