package types

import (
	"fmt"
	"net"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultSNMPPort is used when a target does not configure one
const DefaultSNMPPort = 161

// DefaultAccessMode is the access mode assumed for router records
const DefaultAccessMode = "local_admin"

// MonitoringTarget describes the device telemetry is collected from.
// It is supplied by the configuration store.
type MonitoringTarget struct {
	Address         string  `yaml:"router_ip" json:"router_ip"`
	AccessMode      string  `yaml:"access_mode" json:"access_mode"`
	ProtocolEnabled bool    `yaml:"snmp_enabled" json:"snmp_enabled"`
	Community       *string `yaml:"snmp_community" json:"snmp_community"`
	Port            *int    `yaml:"snmp_port" json:"snmp_port"`
}

// HasCommunity reports whether a non-empty community is configured
func (t *MonitoringTarget) HasCommunity() bool {
	return t.Community != nil && *t.Community != ""
}

// SNMPPort returns the configured port or the default one
func (t *MonitoringTarget) SNMPPort() int {
	if t.Port == nil || *t.Port == 0 {
		return DefaultSNMPPort
	}
	return *t.Port
}

// SetCommunity sets the community field
func (t *MonitoringTarget) SetCommunity(community string) {
	t.Community = &community
}

// SetPort sets the port field
func (t *MonitoringTarget) SetPort(port int) {
	t.Port = &port
}

// Validate checks if the target has all required fields populated
func (t *MonitoringTarget) Validate() error {
	if strings.TrimSpace(t.Address) == "" {
		return &ValidationError{Field: "router_ip", Message: "router_ip is required"}
	}
	if ip := net.ParseIP(t.Address); ip != nil && ip.To4() == nil {
		return &ValidationError{Field: "router_ip", Message: "router_ip must be an IPv4 address"}
	}
	if t.Port != nil && (*t.Port < 0 || *t.Port > 65535) {
		return &ValidationError{Field: "snmp_port", Message: fmt.Sprintf("snmp_port %d is out of range", *t.Port)}
	}
	return nil
}

// ParseTargetJSON decodes a router configuration record
func ParseTargetJSON(data []byte) (*MonitoringTarget, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid target json")
	}
	record := gjson.ParseBytes(data)

	target := &MonitoringTarget{
		Address:         record.Get("router_ip").String(),
		AccessMode:      record.Get("access_mode").String(),
		ProtocolEnabled: record.Get("snmp_enabled").Bool(),
	}
	if target.Address == "" {
		target.Address = record.Get("address").String()
	}
	if target.AccessMode == "" {
		target.AccessMode = DefaultAccessMode
	}
	if community := record.Get("snmp_community"); community.Exists() && community.Type != gjson.Null {
		target.SetCommunity(community.String())
	}
	if port := record.Get("snmp_port"); port.Exists() && port.Type != gjson.Null {
		target.SetPort(int(port.Int()))
	}

	if err := target.Validate(); err != nil {
		return nil, err
	}
	return target, nil
}
