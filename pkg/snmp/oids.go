package snmp

// SNMPv2-MIB system group
const (
	OIDSysDescr  = ".1.3.6.1.2.1.1.1.0"
	OIDSysUpTime = ".1.3.6.1.2.1.1.3.0"
	OIDSysName   = ".1.3.6.1.2.1.1.5.0"
)

// IF-MIB interface tables
const (
	OIDIfDescr      = ".1.3.6.1.2.1.2.2.1.2"
	OIDIfOperStatus = ".1.3.6.1.2.1.2.2.1.8"
	OIDIfInOctets   = ".1.3.6.1.2.1.2.2.1.10"
	OIDIfOutOctets  = ".1.3.6.1.2.1.2.2.1.16"

	OIDIfName        = ".1.3.6.1.2.1.31.1.1.1.1"
	OIDIfHCInOctets  = ".1.3.6.1.2.1.31.1.1.1.6"
	OIDIfHCOutOctets = ".1.3.6.1.2.1.31.1.1.1.10"
)
