package types

import (
	"encoding/json"
	"fmt"
)

// OperStatus represents the operational status of a monitored interface
type OperStatus int

const (
	StatusUnknown OperStatus = iota
	StatusUp
	StatusDown
	StatusTesting
	StatusDormant
	StatusNotPresent
	StatusLowerLayerDown
)

// operStatusCodes maps IF-MIB ifOperStatus codes to statuses
var operStatusCodes = map[int64]OperStatus{
	1: StatusUp,
	2: StatusDown,
	3: StatusTesting,
	4: StatusUnknown,
	5: StatusDormant,
	6: StatusNotPresent,
	7: StatusLowerLayerDown,
}

// OperStatusFromCode converts a numeric ifOperStatus code into a status.
// Codes with no mapping are reported as unknown.
func OperStatusFromCode(code int64) OperStatus {
	if status, ok := operStatusCodes[code]; ok {
		return status
	}
	return StatusUnknown
}

func (s OperStatus) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	case StatusTesting:
		return "testing"
	case StatusDormant:
		return "dormant"
	case StatusNotPresent:
		return "not_present"
	case StatusLowerLayerDown:
		return "lower_layer_down"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string name
func (s OperStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its string name
func (s *OperStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, candidate := range []OperStatus{StatusUnknown, StatusUp, StatusDown, StatusTesting, StatusDormant, StatusNotPresent, StatusLowerLayerDown} {
		if candidate.String() == name {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown interface status %q", name)
}

// Mode tags which variant a telemetry result carries
type Mode string

const (
	ModeProtocol Mode = "protocol"
	ModePassive  Mode = "passive"
)

// Reasons stamped on passive results
const (
	ReasonProtocolEnabled  = "protocol_enabled"
	ReasonProtocolError    = "protocol_error"
	ReasonProtocolDisabled = "protocol_disabled"
)

// Liveness values derived from the passive probe
const (
	LivenessOnline  = "online"
	LivenessOffline = "offline"
)

// Liveness returns the liveness label for a reachability flag
func Liveness(reachable bool) string {
	if reachable {
		return LivenessOnline
	}
	return LivenessOffline
}
