package common

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/projectdiscovery/mapcidr"
)

// MaxHosts caps the number of usable hosts in a resolved range
const MaxHosts = 1024

var (
	// ErrConfiguration is returned when no usable router address or subnet is given
	ErrConfiguration = errors.New("router ip or subnet cidr is required")
	// ErrNotIPv4 is returned for non IPv4 networks
	ErrNotIPv4 = errors.New("only IPv4 networks are supported")
	// ErrSubnetTooLarge is returned when a network has more than MaxHosts usable hosts
	ErrSubnetTooLarge = errors.New("subnet too large, use a /24 or smaller")
)

// NetworkRange is an IPv4 network together with its usable host addresses
type NetworkRange struct {
	Network *net.IPNet
	Hosts   []string
}

// Contains reports whether ip belongs to the network
func (r *NetworkRange) Contains(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return false
	}
	return r.Network.Contains(parsed)
}

func (r *NetworkRange) String() string {
	return r.Network.String()
}

// Resolve builds the range to discover. An explicit subnet wins over the
// router address; host bits in the subnet are ignored. A router address
// alone resolves to the /24 around it.
func Resolve(routerIP, subnetCIDR string) (*NetworkRange, error) {
	network, err := parseNetwork(strings.TrimSpace(routerIP), strings.TrimSpace(subnetCIDR))
	if err != nil {
		return nil, err
	}

	ones, bits := network.Mask.Size()
	if network.IP.To4() == nil || bits != 32 {
		return nil, fmt.Errorf("%w: %s", ErrNotIPv4, network)
	}

	if count := UsableHostCount(network); count > MaxHosts {
		return nil, fmt.Errorf("%w: %s has %d usable hosts", ErrSubnetTooLarge, network, count)
	}

	ips, err := mapcidr.IPAddresses(network.String())
	if err != nil {
		return nil, fmt.Errorf("failed to expand CIDR %s: %w", network, err)
	}

	hosts := make([]string, 0, len(ips))
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		// /31 and /32 have no network or broadcast address to skip
		if ones < 31 && IsNetworkOrBroadcast(ip, network) {
			continue
		}
		hosts = append(hosts, ip.To4().String())
	}

	return &NetworkRange{Network: network, Hosts: hosts}, nil
}

// UsableHostCount returns the number of assignable addresses in an IPv4 network
func UsableHostCount(network *net.IPNet) uint64 {
	ones, bits := network.Mask.Size()
	if bits != 32 {
		return 0
	}
	size := uint64(1) << uint(bits-ones)
	if ones >= 31 {
		return size
	}
	return size - 2
}

func parseNetwork(routerIP, subnetCIDR string) (*net.IPNet, error) {
	switch {
	case subnetCIDR != "":
		if !strings.Contains(subnetCIDR, "/") {
			// a bare address is a single host network
			ip := net.ParseIP(subnetCIDR)
			if ip == nil {
				return nil, fmt.Errorf("%w: invalid subnet %q", ErrConfiguration, subnetCIDR)
			}
			if ip4 := ip.To4(); ip4 != nil {
				return &net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
			}
			return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
		}
		_, network, err := net.ParseCIDR(subnetCIDR)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid subnet %q", ErrConfiguration, subnetCIDR)
		}
		return network, nil
	case routerIP != "":
		ip := net.ParseIP(routerIP)
		if ip == nil {
			return nil, fmt.Errorf("%w: invalid router ip %q", ErrConfiguration, routerIP)
		}
		ip4 := ip.To4()
		if ip4 == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotIPv4, routerIP)
		}
		mask24 := net.CIDRMask(24, 32)
		return &net.IPNet{IP: ip4.Mask(mask24), Mask: mask24}, nil
	default:
		return nil, ErrConfiguration
	}
}
