// Package prescan orders the hosts of a sweep so the addresses most likely
// to be online are probed first.
//
// Scores follow the allocation habits of small office and home networks,
// keyed on the last octet:
//   - 100: .1, .254 (routers and gateways)
//   - 90:  .2-.5, .250-.253 (infrastructure)
//   - 80:  .6-.10 (early DHCP leases)
//   - 70:  .50, .100, .150 (common pool starts)
//   - 50:  .51-.99, .101-.149, .151-.200 (DHCP pools)
//   - 20:  everything else
//   - 0:   network and broadcast addresses
//
// Ties are broken by address so the order is deterministic.
package prescan
