package prescan

import (
	"net"

	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/common"
)

// Priority tiers, higher is probed earlier
const (
	PriorityGateway        = 100
	PriorityInfrastructure = 90
	PriorityEarlyLease     = 80
	PriorityPoolStart      = 70
	PriorityPool           = 50
	PriorityLongTail       = 20
	PriorityExcluded       = 0
)

// octetRange maps an inclusive last octet range to a tier
type octetRange struct {
	from, to int
	priority int
}

var octetRanges = []octetRange{
	{1, 1, PriorityGateway},
	{254, 254, PriorityGateway},
	{2, 5, PriorityInfrastructure},
	{250, 253, PriorityInfrastructure},
	{6, 10, PriorityEarlyLease},
	{50, 50, PriorityPoolStart},
	{100, 100, PriorityPoolStart},
	{150, 150, PriorityPoolStart},
	{51, 99, PriorityPool},
	{101, 149, PriorityPool},
	{151, 200, PriorityPool},
}

// Priority scores ip within network. Addresses outside IPv4 get the
// long-tail score.
func Priority(ip net.IP, network *net.IPNet) int {
	ip4 := ip.To4()
	if ip4 == nil {
		return PriorityLongTail
	}
	if network != nil {
		if ones, _ := network.Mask.Size(); ones < 31 && common.IsNetworkOrBroadcast(ip4, network) {
			return PriorityExcluded
		}
	}

	last := int(ip4[3])
	for _, r := range octetRanges {
		if last >= r.from && last <= r.to {
			return r.priority
		}
	}
	return PriorityLongTail
}
