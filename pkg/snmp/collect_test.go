package snmp

import (
	"context"
	"errors"
	"testing"

	"github.com/projectdiscovery/netmon-agent/pkg/types"
)

type fakeSession struct {
	gets     map[string]any
	getErrs  map[string]error
	walks    map[string][]Variable
	walkErrs map[string]error
	walked   []string
	closed   bool
}

func (f *fakeSession) Get(ctx context.Context, oids ...string) ([]Variable, error) {
	vars := make([]Variable, 0, len(oids))
	for _, oid := range oids {
		if err := f.getErrs[oid]; err != nil {
			return nil, err
		}
		vars = append(vars, Variable{OID: oid, Value: f.gets[oid]})
	}
	return vars, nil
}

func (f *fakeSession) Walk(ctx context.Context, root string) ([]Variable, error) {
	f.walked = append(f.walked, root)
	if err := f.walkErrs[root]; err != nil {
		return nil, err
	}
	return f.walks[root], nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func column(root string, values map[string]any) []Variable {
	vars := make([]Variable, 0, len(values))
	for index, value := range values {
		// agents return OIDs without the leading dot
		vars = append(vars, Variable{OID: root[1:] + "." + index, Value: value})
	}
	return vars
}

func routerSession() *fakeSession {
	return &fakeSession{
		gets: map[string]any{
			OIDSysUpTime: uint64(123456),
			OIDSysName:   "edge-router",
			OIDSysDescr:  "RouterOS RB4011",
		},
		walks: map[string][]Variable{
			OIDIfName:        column(OIDIfName, map[string]any{"1": "ether1-wan", "2": "wlan1", "10": "bridge-lan", "3": "ether3"}),
			OIDIfHCInOctets:  column(OIDIfHCInOctets, map[string]any{"1": uint64(1000), "2": uint64(200), "10": uint64(30)}),
			OIDIfHCOutOctets: column(OIDIfHCOutOctets, map[string]any{"1": uint64(5000), "2": nil, "10": uint64(70)}),
			OIDIfOperStatus:  column(OIDIfOperStatus, map[string]any{"1": int64(1), "2": int64(1), "10": int64(2), "3": int64(42)}),
		},
	}
}

func TestCollect(t *testing.T) {
	session := routerSession()

	got, err := Collect(context.Background(), session)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got.UptimeSeconds != 1234 {
		t.Errorf("Collect() uptime = %d, want 1234", got.UptimeSeconds)
	}
	if got.SysName == nil || *got.SysName != "edge-router" {
		t.Errorf("Collect() sys_name = %v", got.SysName)
	}
	if got.CounterBits != 64 {
		t.Errorf("Collect() counter bits = %d, want 64", got.CounterBits)
	}

	wantOrder := []types.IfIndex{"1", "2", "3", "10"}
	if len(got.Interfaces) != len(wantOrder) {
		t.Fatalf("Collect() interfaces = %+v", got.Interfaces)
	}
	for i, index := range wantOrder {
		if got.Interfaces[i].Index != index {
			t.Errorf("Collect() interface %d index = %s, want %s", i, got.Interfaces[i].Index, index)
		}
	}

	ether3 := got.Interfaces[2]
	if ether3.Status != types.StatusUnknown || ether3.InOctets != nil || ether3.OutOctets != nil {
		t.Errorf("Collect() ether3 = %+v, want unknown status and no counters", ether3)
	}
	if got.Interfaces[1].OutOctets != nil {
		t.Error("Collect() wlan1 out octets should be absent")
	}

	if got.TotalInOctets != 1230 || got.TotalOutOctets != 5070 {
		t.Errorf("Collect() totals = %d/%d, want 1230/5070", got.TotalInOctets, got.TotalOutOctets)
	}
	if got.InterfacesUp != 2 {
		t.Errorf("Collect() interfaces up = %d, want 2", got.InterfacesUp)
	}
	if got.Limited {
		t.Error("Collect() limited = true, want false")
	}
	if got.WAN.Interface == nil || *got.WAN.Interface != "ether1-wan" || got.WAN.Status != types.StatusUp {
		t.Errorf("Collect() wan = %+v", got.WAN)
	}
	if got.LAN.Interface == nil || *got.LAN.Interface != "bridge-lan" || got.LAN.Status != types.StatusDown {
		t.Errorf("Collect() lan = %+v, want bridge-lan skipping wlan1", got.LAN)
	}
	if got.CollectedAt.Location().String() != "UTC" {
		t.Errorf("Collect() collected_at = %v, want UTC", got.CollectedAt)
	}
	for _, root := range session.walked {
		if root == OIDIfDescr || root == OIDIfInOctets {
			t.Errorf("Collect() walked fallback table %s", root)
		}
	}
}

func TestCollectLegacyFallback(t *testing.T) {
	session := &fakeSession{
		gets: map[string]any{OIDSysUpTime: uint64(500)},
		walks: map[string][]Variable{
			OIDIfDescr:       column(OIDIfDescr, map[string]any{"1": "eth0", "2": "eth1"}),
			OIDIfHCInOctets:  column(OIDIfHCInOctets, map[string]any{"1": uint64(9)}),
			OIDIfInOctets:    column(OIDIfInOctets, map[string]any{"1": uint64(10), "2": uint64(20)}),
			OIDIfOutOctets:   column(OIDIfOutOctets, map[string]any{"1": uint64(1), "2": uint64(2)}),
			OIDIfOperStatus:  column(OIDIfOperStatus, map[string]any{"1": int64(1)}),
			OIDIfHCOutOctets: nil,
		},
	}

	got, err := Collect(context.Background(), session)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got.CounterBits != 32 {
		t.Errorf("Collect() counter bits = %d, want 32", got.CounterBits)
	}
	if len(got.Interfaces) != 2 {
		t.Fatalf("Collect() interfaces = %+v", got.Interfaces)
	}
	for _, stat := range got.Interfaces {
		if stat.CounterBits != 32 {
			t.Errorf("Collect() %s counter bits = %d, want 32", stat.Name, stat.CounterBits)
		}
	}
	if got.Interfaces[0].Name != "eth0" || *got.Interfaces[0].InOctets != 10 {
		t.Errorf("Collect() first interface = %+v", got.Interfaces[0])
	}
	if got.TotalInOctets != 30 || got.TotalOutOctets != 3 {
		t.Errorf("Collect() totals = %d/%d, want 30/3", got.TotalInOctets, got.TotalOutOctets)
	}
	if got.SysName != nil || got.SysDescr != nil {
		t.Error("Collect() system strings should be absent")
	}
	if got.Interfaces[1].Status != types.StatusUnknown {
		t.Errorf("Collect() eth1 status = %s, want unknown", got.Interfaces[1].Status)
	}
}

func TestCollectLimited(t *testing.T) {
	session := &fakeSession{
		gets:    map[string]any{OIDSysUpTime: uint64(100)},
		getErrs: map[string]error{OIDSysName: errors.New("timeout"), OIDSysDescr: errors.New("timeout")},
	}

	got, err := Collect(context.Background(), session)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if !got.Limited {
		t.Error("Collect() limited = false, want true")
	}
	if got.Interfaces == nil || len(got.Interfaces) != 0 {
		t.Errorf("Collect() interfaces = %#v, want empty", got.Interfaces)
	}
	if got.CounterBits != 32 {
		t.Errorf("Collect() counter bits = %d, want 32", got.CounterBits)
	}
	if got.WAN.Status != types.StatusUnknown || got.LAN.Status != types.StatusUnknown {
		t.Errorf("Collect() wan/lan = %s/%s, want unknown", got.WAN.Status, got.LAN.Status)
	}
	if got.WAN.Interface != nil || got.LAN.Interface != nil {
		t.Error("Collect() role interfaces should be absent")
	}
}

func TestCollectErrors(t *testing.T) {
	transport := errors.New("request timeout (after 1 retries)")

	tests := []struct {
		name    string
		session *fakeSession
		wantOID string
	}{
		{
			name:    "uptime get fails",
			session: &fakeSession{getErrs: map[string]error{OIDSysUpTime: transport}},
			wantOID: OIDSysUpTime,
		},
		{
			name:    "uptime missing",
			session: &fakeSession{gets: map[string]any{OIDSysUpTime: nil}},
			wantOID: OIDSysUpTime,
		},
		{
			name: "walk fails",
			session: &fakeSession{
				gets:     map[string]any{OIDSysUpTime: uint64(1)},
				walkErrs: map[string]error{OIDIfOperStatus: transport},
			},
			wantOID: OIDIfOperStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(context.Background(), tt.session)
			if got != nil {
				t.Errorf("Collect() returned a partial snapshot")
			}
			var protocolErr *ProtocolError
			if !errors.As(err, &protocolErr) {
				t.Fatalf("Collect() error = %v, want ProtocolError", err)
			}
			if protocolErr.OID != tt.wantOID {
				t.Errorf("Collect() error OID = %s, want %s", protocolErr.OID, tt.wantOID)
			}
		})
	}
}

type fakeDialer struct {
	session *fakeSession
	err     error
	config  Config
}

func (f *fakeDialer) Dial(ctx context.Context, config Config) (Session, error) {
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func TestClientCollect(t *testing.T) {
	dialer := &fakeDialer{session: routerSession()}
	client := NewClient(dialer, Options{})

	if _, err := client.Collect(context.Background(), "192.168.1.1", "public", 0); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if dialer.config.Port != DefaultPort || dialer.config.Timeout != DefaultTimeout || dialer.config.Version != Version2c {
		t.Errorf("Collect() dialed with %+v", dialer.config)
	}
	if !dialer.session.closed {
		t.Error("Collect() did not close the session")
	}

	failing := NewClient(&fakeDialer{err: errors.New("no route")}, DefaultOptions())
	if _, err := failing.Collect(context.Background(), "192.168.1.1", "public", 1161); !IsProtocolError(err) {
		t.Errorf("Collect() error = %v, want ProtocolError", err)
	}
}

func TestIndexOf(t *testing.T) {
	tests := []struct {
		root, oid string
		want      types.IfIndex
		ok        bool
	}{
		{OIDIfName, ".1.3.6.1.2.1.31.1.1.1.1.7", "7", true},
		{OIDIfName, "1.3.6.1.2.1.31.1.1.1.1.7", "7", true},
		{OIDIfName, "1.3.6.1.2.1.31.1.1.1.1.4.1", "4.1", true},
		{OIDIfName, "1.3.6.1.2.1.31.1.1.1.10.7", "", false},
		{OIDIfName, "1.3.6.1.2.1.31.1.1.1.1", "", false},
	}
	for _, tt := range tests {
		got, ok := indexOf(tt.root, tt.oid)
		if got != tt.want || ok != tt.ok {
			t.Errorf("indexOf(%s) = %q, %v, want %q, %v", tt.oid, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		value   string
		want    Version
		wantErr bool
	}{
		{value: "", want: Version2c},
		{value: "2c", want: Version2c},
		{value: "V1", want: Version1},
		{value: "v3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
