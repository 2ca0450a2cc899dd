package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// IfIndex is an interface table index. Most agents use plain integers,
// some return composite suffixes which are kept as opaque strings.
type IfIndex string

// Numeric reports the integer value of the index when it has one
func (i IfIndex) Numeric() (int64, bool) {
	n, err := strconv.ParseInt(string(i), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Less orders numeric indices numerically, everything else lexicographically.
// Numeric indices sort before opaque ones.
func (i IfIndex) Less(other IfIndex) bool {
	a, aok := i.Numeric()
	b, bok := other.Numeric()
	switch {
	case aok && bok:
		return a < b
	case aok != bok:
		return aok
	default:
		return i < other
	}
}

// MarshalJSON encodes numeric indices as JSON numbers and the rest as strings
func (i IfIndex) MarshalJSON() ([]byte, error) {
	if n, ok := i.Numeric(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(string(i))
}

// InterfaceStat holds the counters collected for a single interface
type InterfaceStat struct {
	Index       IfIndex    `json:"index"`
	Name        string     `json:"name"`
	Status      OperStatus `json:"status"`
	InOctets    *uint64    `json:"in_octets"`
	OutOctets   *uint64    `json:"out_octets"`
	CounterBits int        `json:"counter_bits"`
}

// RoleStatus describes the interface chosen for a WAN/LAN role
type RoleStatus struct {
	Interface *string    `json:"interface"`
	Status    OperStatus `json:"status"`
}

// ProtocolSnapshot is the telemetry collected over the monitoring protocol
type ProtocolSnapshot struct {
	SysName        *string         `json:"sys_name"`
	SysDescr       *string         `json:"sys_descr"`
	UptimeSeconds  uint64          `json:"uptime_seconds"`
	Interfaces     []InterfaceStat `json:"interfaces"`
	InterfacesUp   int             `json:"interfaces_up"`
	TotalInOctets  uint64          `json:"total_in_octets"`
	TotalOutOctets uint64          `json:"total_out_octets"`
	CounterBits    int             `json:"counter_bits"`
	WAN            RoleStatus      `json:"wan"`
	LAN            RoleStatus      `json:"lan"`
	Limited        bool            `json:"limited"`
	CollectedAt    time.Time       `json:"collected_at"`

	// liveness cross-check merged from the passive probe
	Reachable *bool    `json:"reachable"`
	LatencyMs *float64 `json:"latency_ms"`
	Status    *string  `json:"status"`
}

// MergeLiveness copies the passive probe fields onto the snapshot
func (s *ProtocolSnapshot) MergeLiveness(p *PassiveResult) {
	if p == nil {
		return
	}
	reachable := p.Reachable
	status := p.Status
	s.Reachable = &reachable
	s.Status = &status
	if p.LatencyMs != nil {
		latency := *p.LatencyMs
		s.LatencyMs = &latency
	}
}

// PassiveResult is the outcome of a single reachability probe
type PassiveResult struct {
	Reachable   bool      `json:"reachable"`
	LatencyMs   *float64  `json:"latency_ms"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason"`
	Error       *string   `json:"error"`
	CollectedAt time.Time `json:"collected_at"`
}

// SetLatency sets the latency field
func (p *PassiveResult) SetLatency(ms float64) {
	p.LatencyMs = &ms
}

// SetError sets the diagnostic error field
func (p *PassiveResult) SetError(err string) {
	p.Error = &err
}

// Metrics is the result of a telemetry request: exactly one of Protocol or
// Passive is set, as indicated by Mode.
type Metrics struct {
	Mode     Mode
	Target   string
	RunID    string
	Protocol *ProtocolSnapshot
	Passive  *PassiveResult
}

// NewProtocolMetrics wraps a protocol snapshot
func NewProtocolMetrics(target string, snapshot *ProtocolSnapshot) *Metrics {
	return &Metrics{Mode: ModeProtocol, Target: target, Protocol: snapshot}
}

// NewPassiveMetrics wraps a passive result
func NewPassiveMetrics(target string, result *PassiveResult) *Metrics {
	return &Metrics{Mode: ModePassive, Target: target, Passive: result}
}

// Validate checks that the variant matches the mode tag
func (m *Metrics) Validate() error {
	switch m.Mode {
	case ModeProtocol:
		if m.Protocol == nil || m.Passive != nil {
			return &ValidationError{Field: "mode", Message: "protocol metrics must carry only a protocol snapshot"}
		}
	case ModePassive:
		if m.Passive == nil || m.Protocol != nil {
			return &ValidationError{Field: "mode", Message: "passive metrics must carry only a passive result"}
		}
	default:
		return &ValidationError{Field: "mode", Message: "mode must be protocol or passive"}
	}
	return nil
}

// MarshalJSON flattens the active variant next to the mode tag
func (m Metrics) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Mode == ModeProtocol {
		return json.Marshal(struct {
			Mode   Mode   `json:"mode"`
			Target string `json:"target"`
			RunID  string `json:"run_id"`
			*ProtocolSnapshot
		}{m.Mode, m.Target, m.RunID, m.Protocol})
	}
	return json.Marshal(struct {
		Mode   Mode   `json:"mode"`
		Target string `json:"target"`
		RunID  string `json:"run_id"`
		*PassiveResult
	}{m.Mode, m.Target, m.RunID, m.Passive})
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
