package snmp

import (
	"testing"

	"github.com/gosnmp/gosnmp"
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		pdu  gosnmp.SnmpPDU
		want any
	}{
		{"timeticks", gosnmp.SnmpPDU{Type: gosnmp.TimeTicks, Value: uint32(4200)}, uint64(4200)},
		{"counter32", gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: uint(123)}, uint64(123)},
		{"counter64", gosnmp.SnmpPDU{Type: gosnmp.Counter64, Value: uint64(1 << 40)}, uint64(1 << 40)},
		{"gauge32", gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint(7)}, uint64(7)},
		{"integer", gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: 2}, int64(2)},
		{"octet string", gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("ether1-wan")}, "ether1-wan"},
		{"latin-1 octet string", gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("Verbindung \xfc")}, "Verbindung �"},
		{"no such instance", gosnmp.SnmpPDU{Type: gosnmp.NoSuchInstance}, nil},
		{"no such object", gosnmp.SnmpPDU{Type: gosnmp.NoSuchObject}, nil},
		{"end of mib view", gosnmp.SnmpPDU{Type: gosnmp.EndOfMibView}, nil},
		{"ip address", gosnmp.SnmpPDU{Type: gosnmp.IPAddress, Value: "192.168.1.1"}, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeValue(tt.pdu); got != tt.want {
				t.Errorf("decodeValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeAll(t *testing.T) {
	vars := decodeAll([]gosnmp.SnmpPDU{
		{Name: ".1.3.6.1.2.1.31.1.1.1.1.1", Type: gosnmp.OctetString, Value: []byte("lan\xff")},
		{Name: ".1.3.6.1.2.1.31.1.1.1.1.2", Type: gosnmp.NoSuchInstance},
	})
	if len(vars) != 2 {
		t.Fatalf("decodeAll() = %v, want 2 variables", vars)
	}
	if vars[0].OID != ".1.3.6.1.2.1.31.1.1.1.1.1" || vars[0].Value != "lan�" {
		t.Errorf("decodeAll()[0] = %#v", vars[0])
	}
	if vars[1].Value != nil {
		t.Errorf("decodeAll()[1] = %#v, want nil value", vars[1])
	}
}
