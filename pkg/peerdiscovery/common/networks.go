package common

import (
	"context"
	"net"
	"strings"

	sliceutil "github.com/projectdiscovery/utils/slice"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// GetLocalNetworks24 returns the private IPv4 networks of the local up,
// non-loopback interfaces, widened to /24.
func GetLocalNetworks24(ctx context.Context) ([]*net.IPNet, error) {
	interfaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var networks []*net.IPNet
	seen := make(map[string]struct{})

	for _, iface := range interfaces {
		// Skip loopback and down interfaces
		if sliceutil.Contains(iface.Flags, "loopback") {
			continue
		}
		if !sliceutil.Contains(iface.Flags, "up") {
			continue
		}

		for _, addr := range iface.Addrs {
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				ip = net.ParseIP(strings.TrimSpace(addr.Addr))
			}

			// Only process private IPv4 addresses
			ip4 := ip.To4()
			if ip4 == nil || !ip4.IsPrivate() {
				continue
			}

			mask24 := net.CIDRMask(24, 32)
			network24 := &net.IPNet{
				IP:   ip4.Mask(mask24),
				Mask: mask24,
			}

			key := network24.String()
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}

			networks = append(networks, network24)
		}
	}

	return networks, nil
}
