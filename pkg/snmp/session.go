package snmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Variable is a decoded varbind. Value holds a string, uint64 or int64, or
// nil when the agent reported the object as absent.
type Variable struct {
	OID   string
	Value any
}

// Session issues get and walk queries against one agent
type Session interface {
	Get(ctx context.Context, oids ...string) ([]Variable, error)
	// Walk returns every variable below root in lexicographic OID order
	Walk(ctx context.Context, root string) ([]Variable, error)
	Close() error
}

// Version is a community based protocol version
type Version string

const (
	Version1  Version = "v1"
	Version2c Version = "v2c"
)

// ParseVersion accepts v1 and v2c in their common spellings
func ParseVersion(value string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "2", "2c", "v2c":
		return Version2c, nil
	case "1", "v1":
		return Version1, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVersion, value)
	}
}

// Config describes how to reach an agent
type Config struct {
	Target    string
	Port      int
	Community string
	Version   Version
	// Timeout applies to each request, Retries to each request as well
	Timeout time.Duration
	Retries int
}

// Dialer opens sessions
type Dialer interface {
	Dial(ctx context.Context, config Config) (Session, error)
}

// UDPDialer opens gosnmp sessions over UDP
type UDPDialer struct{}

// Dial connects to the agent in config
func (UDPDialer) Dial(ctx context.Context, config Config) (Session, error) {
	version := gosnmp.Version2c
	if config.Version == Version1 {
		version = gosnmp.Version1
	}

	client := &gosnmp.GoSNMP{
		Target:    config.Target,
		Port:      uint16(config.Port),
		Transport: "udp",
		Community: config.Community,
		Version:   version,
		Timeout:   config.Timeout,
		Retries:   config.Retries,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}
	if err := client.Connect(); err != nil {
		return nil, &ProtocolError{Op: "connect", Err: err}
	}
	return &udpSession{client: client}, nil
}

type udpSession struct {
	client *gosnmp.GoSNMP
}

func (s *udpSession) Get(ctx context.Context, oids ...string) ([]Variable, error) {
	s.client.Context = ctx
	packet, err := s.client.Get(oids)
	if err != nil {
		return nil, err
	}
	if packet.Error != gosnmp.NoError {
		return nil, fmt.Errorf("agent returned error status %v at index %d", packet.Error, packet.ErrorIndex)
	}
	return decodeAll(packet.Variables), nil
}

func (s *udpSession) Walk(ctx context.Context, root string) ([]Variable, error) {
	s.client.Context = ctx
	var (
		pdus []gosnmp.SnmpPDU
		err  error
	)
	if s.client.Version == gosnmp.Version1 {
		pdus, err = s.client.WalkAll(root)
	} else {
		pdus, err = s.client.BulkWalkAll(root)
	}
	if err != nil {
		return nil, err
	}
	return decodeAll(pdus), nil
}

func (s *udpSession) Close() error {
	if s.client.Conn == nil {
		return nil
	}
	return s.client.Conn.Close()
}

func decodeAll(pdus []gosnmp.SnmpPDU) []Variable {
	vars := make([]Variable, 0, len(pdus))
	for _, pdu := range pdus {
		vars = append(vars, Variable{OID: pdu.Name, Value: decodeValue(pdu)})
	}
	return vars
}

// decodeValue narrows gosnmp values to string, uint64, int64 or nil
func decodeValue(pdu gosnmp.SnmpPDU) any {
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return nil
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			// agents return Latin-1 and other legacy encodings
			return strings.ToValidUTF8(string(b), "\uFFFD")
		}
		return strings.ToValidUTF8(fmt.Sprint(pdu.Value), "\uFFFD")
	case gosnmp.Counter32, gosnmp.Counter64, gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).Uint64()
	case gosnmp.Integer:
		return gosnmp.ToBigInt(pdu.Value).Int64()
	case gosnmp.IPAddress, gosnmp.ObjectIdentifier:
		return fmt.Sprint(pdu.Value)
	default:
		if pdu.Value == nil {
			return nil
		}
		return fmt.Sprint(pdu.Value)
	}
}
