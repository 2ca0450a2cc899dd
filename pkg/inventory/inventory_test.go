package inventory

import (
	"path/filepath"
	"testing"

	"github.com/projectdiscovery/netmon-agent/pkg/types"
)

func TestUpsert(t *testing.T) {
	inv := New()

	first := inv.Upsert([]types.DiscoveredDevice{
		{IP: "192.168.1.1", MAC: "aa:bb:cc:dd:ee:ff"},
		{IP: "192.168.1.50", MAC: "11:22:33:44:55:66"},
	})
	if len(first.Created) != 2 || len(first.Updated) != 0 || len(first.Skipped) != 0 {
		t.Fatalf("Upsert() = %+v, want two created", first)
	}
	router, _ := inv.ByIP("192.168.1.1")

	tests := []struct {
		name        string
		pair        types.DiscoveredDevice
		wantCreated int
		wantUpdated int
		wantSkipped int
	}{
		{
			name:        "same pair refreshes",
			pair:        types.DiscoveredDevice{IP: "192.168.1.1", MAC: "aa:bb:cc:dd:ee:ff"},
			wantUpdated: 1,
		},
		{
			name:        "known address with new hardware address",
			pair:        types.DiscoveredDevice{IP: "192.168.1.1", MAC: "aa:bb:cc:dd:ee:01"},
			wantUpdated: 1,
		},
		{
			name:        "known hardware address moved address",
			pair:        types.DiscoveredDevice{IP: "192.168.1.51", MAC: "11:22:33:44:55:66"},
			wantUpdated: 1,
		},
		{
			name:        "address and hardware address of different devices",
			pair:        types.DiscoveredDevice{IP: "192.168.1.1", MAC: "11:22:33:44:55:66"},
			wantSkipped: 1,
		},
		{
			name:        "unknown pair",
			pair:        types.DiscoveredDevice{IP: "192.168.1.60", MAC: "66:55:44:33:22:11"},
			wantCreated: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inv.Upsert([]types.DiscoveredDevice{tt.pair})
			if len(got.Created) != tt.wantCreated || len(got.Updated) != tt.wantUpdated || len(got.Skipped) != tt.wantSkipped {
				t.Errorf("Upsert() = %+v, want created=%d updated=%d skipped=%d", got, tt.wantCreated, tt.wantUpdated, tt.wantSkipped)
			}
		})
	}

	devices := inv.Devices()
	if len(devices) != 3 {
		t.Fatalf("Devices() = %d, want 3", len(devices))
	}
	updated, ok := inv.ByIP("192.168.1.1")
	if !ok || updated.ID != router.ID || updated.MAC != "aa:bb:cc:dd:ee:01" {
		t.Errorf("ByIP() = %+v, want router with new hardware address", updated)
	}
	if _, ok := inv.ByMAC("aa:bb:cc:dd:ee:ff"); ok {
		t.Error("ByMAC() still finds the replaced hardware address")
	}
	if _, ok := inv.ByIP("192.168.1.50"); ok {
		t.Error("ByIP() still finds the moved address")
	}
	if moved, ok := inv.ByMAC("11:22:33:44:55:66"); !ok || moved.IP != "192.168.1.51" {
		t.Errorf("ByMAC() = %+v, want address 192.168.1.51", moved)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "inventory.json")

	inv := New()
	inv.Upsert([]types.DiscoveredDevice{
		{IP: "10.0.0.10", MAC: "aa:aa:aa:aa:aa:0a"},
		{IP: "10.0.0.2", MAC: "aa:aa:aa:aa:aa:02"},
	})
	if !inv.Rename("10.0.0.2", "printer") {
		t.Fatal("Rename() did not find the device")
	}
	if err := inv.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	devices := loaded.Devices()
	if len(devices) != 2 {
		t.Fatalf("Load() devices = %d, want 2", len(devices))
	}
	if devices[0].IP != "10.0.0.2" || devices[0].Name == nil || *devices[0].Name != "printer" {
		t.Errorf("Load() first device = %+v", devices[0])
	}

	// merge rules hold after a reload
	got := loaded.Upsert([]types.DiscoveredDevice{{IP: "10.0.0.2", MAC: "aa:aa:aa:aa:aa:0a"}})
	if len(got.Skipped) != 1 {
		t.Errorf("Upsert() after Load() = %+v, want skipped", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	inv, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(inv.Devices()) != 0 {
		t.Error("Load() of a missing file should be empty")
	}
}
