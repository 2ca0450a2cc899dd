package snmp

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchObject is returned when a required object is absent on the agent
	ErrNoSuchObject = errors.New("no such object")
	// ErrUnsupportedVersion is returned for protocol versions other than v1 and v2c
	ErrUnsupportedVersion = errors.New("unsupported snmp version")
)

// ProtocolError is returned when a required query failed. OID is empty
// when the failure is not tied to a single query, such as connecting.
type ProtocolError struct {
	Op  string
	OID string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.OID == "" {
		return fmt.Sprintf("snmp %s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("snmp %s %s: %s", e.Op, e.OID, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err carries a ProtocolError
func IsProtocolError(err error) bool {
	var protocolErr *ProtocolError
	return errors.As(err, &protocolErr)
}
