package snmp

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
)

const (
	DefaultPort    = 161
	DefaultTimeout = 2 * time.Second
	DefaultRetries = 1
)

// Options configures the client. Zero Timeout and Version take defaults;
// Retries is used as given.
type Options struct {
	Timeout time.Duration
	Retries int
	Version Version
}

// DefaultOptions returns a two second timeout with one retry over v2c
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, Retries: DefaultRetries, Version: Version2c}
}

func (o *Options) applyDefaults() {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.Version == "" {
		o.Version = Version2c
	}
}

// Client collects a telemetry snapshot from an agent
type Client struct {
	dialer  Dialer
	options Options
}

// NewClient returns a client. A nil dialer uses UDP.
func NewClient(dialer Dialer, options Options) *Client {
	if dialer == nil {
		dialer = UDPDialer{}
	}
	options.applyDefaults()
	return &Client{dialer: dialer, options: options}
}

// Collect opens a session to address and collects one snapshot.
// port 0 means the default port.
func (c *Client) Collect(ctx context.Context, address, community string, port int) (*types.ProtocolSnapshot, error) {
	if port <= 0 {
		port = DefaultPort
	}
	session, err := c.dialer.Dial(ctx, Config{
		Target:    address,
		Port:      port,
		Community: community,
		Version:   c.options.Version,
		Timeout:   c.options.Timeout,
		Retries:   c.options.Retries,
	})
	if err != nil {
		if IsProtocolError(err) {
			return nil, err
		}
		return nil, &ProtocolError{Op: "connect", Err: err}
	}
	defer func() {
		_ = session.Close()
	}()

	return Collect(ctx, session)
}

// Collect reads the system group and the interface tables over session.
// System uptime is required; name and description are optional. The
// 64-bit octet counters are preferred and the 32-bit ones are used when
// either high capacity table is empty. Any failed walk aborts collection.
func Collect(ctx context.Context, session Session) (*types.ProtocolSnapshot, error) {
	uptime, err := getUptime(ctx, session)
	if err != nil {
		return nil, err
	}

	snapshot := &types.ProtocolSnapshot{
		SysName:       getOptionalString(ctx, session, OIDSysName),
		SysDescr:      getOptionalString(ctx, session, OIDSysDescr),
		UptimeSeconds: uptime,
		Interfaces:    []types.InterfaceStat{},
	}

	names, err := walkColumn(ctx, session, OIDIfName)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		if names, err = walkColumn(ctx, session, OIDIfDescr); err != nil {
			return nil, err
		}
	}

	counterBits := 64
	inOctets, outOctets, err := walkCounters(ctx, session, OIDIfHCInOctets, OIDIfHCOutOctets)
	if err != nil {
		return nil, err
	}
	if len(inOctets) == 0 || len(outOctets) == 0 {
		counterBits = 32
		if inOctets, outOctets, err = walkCounters(ctx, session, OIDIfInOctets, OIDIfOutOctets); err != nil {
			return nil, err
		}
	}
	snapshot.CounterBits = counterBits

	statuses, err := walkColumn(ctx, session, OIDIfOperStatus)
	if err != nil {
		return nil, err
	}

	for _, index := range unionIndices(names, inOctets, outOctets, statuses) {
		stat := types.InterfaceStat{
			Index:       index,
			Name:        asString(names[index]),
			Status:      operStatus(statuses[index]),
			InOctets:    asCounter(inOctets[index]),
			OutOctets:   asCounter(outOctets[index]),
			CounterBits: counterBits,
		}
		if stat.InOctets != nil {
			snapshot.TotalInOctets += *stat.InOctets
		}
		if stat.OutOctets != nil {
			snapshot.TotalOutOctets += *stat.OutOctets
		}
		if stat.Status == types.StatusUp {
			snapshot.InterfacesUp++
		}
		snapshot.Interfaces = append(snapshot.Interfaces, stat)
	}

	snapshot.Limited = len(snapshot.Interfaces) == 0
	snapshot.WAN = classify(snapshot.Interfaces, isWAN)
	snapshot.LAN = classify(snapshot.Interfaces, isLAN)
	snapshot.CollectedAt = time.Now().UTC()

	gologger.Verbose().Msgf("collected %d interfaces (%d up, %d-bit counters)", len(snapshot.Interfaces), snapshot.InterfacesUp, counterBits)
	return snapshot, nil
}

func getUptime(ctx context.Context, session Session) (uint64, error) {
	vars, err := session.Get(ctx, OIDSysUpTime)
	if err != nil {
		return 0, &ProtocolError{Op: "get", OID: OIDSysUpTime, Err: err}
	}
	if len(vars) == 0 || vars[0].Value == nil {
		return 0, &ProtocolError{Op: "get", OID: OIDSysUpTime, Err: ErrNoSuchObject}
	}
	switch ticks := vars[0].Value.(type) {
	case uint64:
		return ticks / 100, nil
	case int64:
		if ticks >= 0 {
			return uint64(ticks) / 100, nil
		}
	}
	return 0, &ProtocolError{Op: "get", OID: OIDSysUpTime, Err: ErrNoSuchObject}
}

func getOptionalString(ctx context.Context, session Session, oid string) *string {
	vars, err := session.Get(ctx, oid)
	if err != nil {
		gologger.Debug().Msgf("optional get %s failed: %s", oid, err)
		return nil
	}
	if len(vars) == 0 {
		return nil
	}
	value, ok := vars[0].Value.(string)
	if !ok {
		return nil
	}
	return &value
}

// walkColumn walks a table column and keys the values by index suffix
func walkColumn(ctx context.Context, session Session, root string) (map[types.IfIndex]any, error) {
	vars, err := session.Walk(ctx, root)
	if err != nil {
		return nil, &ProtocolError{Op: "walk", OID: root, Err: err}
	}
	column := make(map[types.IfIndex]any, len(vars))
	for _, v := range vars {
		index, ok := indexOf(root, v.OID)
		if !ok {
			continue
		}
		column[index] = v.Value
	}
	return column, nil
}

func walkCounters(ctx context.Context, session Session, inRoot, outRoot string) (map[types.IfIndex]any, map[types.IfIndex]any, error) {
	in, err := walkColumn(ctx, session, inRoot)
	if err != nil {
		return nil, nil, err
	}
	out, err := walkColumn(ctx, session, outRoot)
	if err != nil {
		return nil, nil, err
	}
	return in, out, nil
}

// indexOf returns the part of oid below root. Leading dots are ignored on
// both sides since agents and libraries disagree on them.
func indexOf(root, oid string) (types.IfIndex, bool) {
	root = strings.TrimPrefix(root, ".") + "."
	oid = strings.TrimPrefix(oid, ".")
	if !strings.HasPrefix(oid, root) || len(oid) == len(root) {
		return "", false
	}
	return types.IfIndex(oid[len(root):]), true
}

func unionIndices(columns ...map[types.IfIndex]any) []types.IfIndex {
	seen := make(map[types.IfIndex]struct{})
	var indices []types.IfIndex
	for _, column := range columns {
		for index := range column {
			if _, ok := seen[index]; ok {
				continue
			}
			seen[index] = struct{}{}
			indices = append(indices, index)
		}
	}
	sort.Slice(indices, func(i, j int) bool {
		return indices[i].Less(indices[j])
	})
	return indices
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asCounter(value any) *uint64 {
	switch v := value.(type) {
	case uint64:
		return &v
	case int64:
		if v >= 0 {
			n := uint64(v)
			return &n
		}
	}
	return nil
}

func operStatus(value any) types.OperStatus {
	switch v := value.(type) {
	case int64:
		return types.OperStatusFromCode(v)
	case uint64:
		return types.OperStatusFromCode(int64(v))
	}
	return types.StatusUnknown
}

func isWAN(name string) bool {
	return strings.Contains(name, "wan")
}

// isLAN excludes wireless LAN interfaces from the wired LAN role
func isLAN(name string) bool {
	return strings.Contains(name, "lan") && !strings.Contains(name, "wlan")
}

// classify picks the first interface, in index order, matching role
func classify(interfaces []types.InterfaceStat, role func(string) bool) types.RoleStatus {
	for _, stat := range interfaces {
		if role(strings.ToLower(stat.Name)) {
			name := stat.Name
			return types.RoleStatus{Interface: &name, Status: stat.Status}
		}
	}
	return types.RoleStatus{Status: types.StatusUnknown}
}
