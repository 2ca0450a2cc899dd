// Package pingsweep probes every host of a network once so the operating
// system populates its neighbor cache.
//
// A sweep is fire-and-forget: probe failures, timeouts and tool errors are
// discarded and nothing is returned. Reachability is read afterwards from
// the neighbor cache by package arp.
//
// Two probers are available:
//   - CommandProber runs the platform ping tool through pkg/command
//   - ICMPProber sends raw ICMP echo requests and needs root/admin privileges
//
// NewProber picks the ICMP prober only when it was requested and the
// process is privileged.
//
// Example usage:
//
//	sweeper := pingsweep.NewSweeper(pingsweep.NewProber(command.New(), false), pingsweep.Options{})
//	sweeper.SweepRange(ctx, networkRange)
package pingsweep
