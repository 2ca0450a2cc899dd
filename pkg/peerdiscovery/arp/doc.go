// Package arp reads the operating system neighbor (ARP) cache.
//
// The cache is dumped through the platform tool selected by pkg/command
// (arp -an or ip neigh show on POSIX, arp -a on Windows) and the output is
// scanned line by line for an IPv4 address and a hardware address:
//   - hardware addresses are normalized to lowercase colon separated hex
//   - incomplete, all-zero and broadcast entries are dropped
//   - duplicate rows are returned as-is; callers deduplicate
//
// Reading the cache does not generate traffic. Populate it first with a
// ping sweep when fresh entries are needed.
package arp
