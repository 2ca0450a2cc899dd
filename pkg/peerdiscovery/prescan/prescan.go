package prescan

import (
	"bytes"
	"net"
	"sort"
)

type scoredHost struct {
	host     string
	ip       net.IP
	priority int
}

// Order returns a copy of hosts sorted by descending priority, then by
// address. Entries that do not parse as IP addresses go last in input order.
func Order(network *net.IPNet, hosts []string) []string {
	scored := make([]scoredHost, 0, len(hosts))
	var invalid []string
	for _, host := range hosts {
		ip := net.ParseIP(host)
		if ip == nil {
			invalid = append(invalid, host)
			continue
		}
		scored = append(scored, scoredHost{host: host, ip: ip, priority: Priority(ip, network)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].priority != scored[j].priority {
			return scored[i].priority > scored[j].priority
		}
		return CompareIP(scored[i].ip, scored[j].ip) < 0
	})

	ordered := make([]string, 0, len(hosts))
	for _, s := range scored {
		ordered = append(ordered, s.host)
	}
	return append(ordered, invalid...)
}

// CompareIP returns -1, 0 or 1. IPv4 sorts before IPv6.
func CompareIP(a, b net.IP) int {
	a4, b4 := a.To4(), b.To4()
	switch {
	case a4 != nil && b4 != nil:
		return bytes.Compare(a4, b4)
	case a4 != nil:
		return -1
	case b4 != nil:
		return 1
	}
	return bytes.Compare(a.To16(), b.To16())
}

// CompareAddr compares two textual addresses numerically; unparsable
// values sort after valid ones and lexicographically among themselves.
func CompareAddr(a, b string) int {
	ipA, ipB := net.ParseIP(a), net.ParseIP(b)
	switch {
	case ipA != nil && ipB != nil:
		return CompareIP(ipA, ipB)
	case ipA != nil:
		return -1
	case ipB != nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
