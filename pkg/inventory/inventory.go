// Package inventory keeps the set of known devices and merges discovery
// results into it.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/projectdiscovery/netmon-agent/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/netmon-agent/pkg/types"
	fileutil "github.com/projectdiscovery/utils/file"
	"github.com/rs/xid"
)

// Device is a known device. Address and hardware address are each unique
// across the inventory.
type Device struct {
	ID        string             `json:"id"`
	IP        string             `json:"ip_address"`
	MAC       types.HardwareAddr `json:"mac_address"`
	Name      *string            `json:"name"`
	FirstSeen time.Time          `json:"first_seen"`
	LastSeen  time.Time          `json:"last_seen"`
}

// Inventory is safe for concurrent use
type Inventory struct {
	mutex   sync.RWMutex
	devices map[string]*Device
	byIP    map[string]string
	byMAC   map[types.HardwareAddr]string

	now func() time.Time
}

// New returns an empty inventory
func New() *Inventory {
	return &Inventory{
		devices: make(map[string]*Device),
		byIP:    make(map[string]string),
		byMAC:   make(map[types.HardwareAddr]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// UpsertResult reports what a merge did
type UpsertResult struct {
	Created []Device
	Updated []Device
	// Skipped pairs whose address and hardware address belong to two
	// different known devices
	Skipped []types.DiscoveredDevice
}

// Upsert merges discovered pairs. A pair matching one known device by
// address or hardware address updates that device; a pair matching none
// creates a device. A pair whose address and hardware address belong to
// two different devices is skipped and left unresolved.
func (i *Inventory) Upsert(discovered []types.DiscoveredDevice) UpsertResult {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	var result UpsertResult
	now := i.now()
	for _, pair := range discovered {
		ipID, hasIP := i.byIP[pair.IP]
		macID, hasMAC := i.byMAC[pair.MAC]

		if hasIP && hasMAC && ipID != macID {
			result.Skipped = append(result.Skipped, pair)
			continue
		}

		if !hasIP && !hasMAC {
			device := &Device{
				ID:        xid.New().String(),
				IP:        pair.IP,
				MAC:       pair.MAC,
				FirstSeen: now,
				LastSeen:  now,
			}
			i.index(device)
			result.Created = append(result.Created, *device)
			continue
		}

		id := ipID
		if !hasIP {
			id = macID
		}
		device := i.devices[id]
		delete(i.byIP, device.IP)
		delete(i.byMAC, device.MAC)
		device.IP = pair.IP
		device.MAC = pair.MAC
		device.LastSeen = now
		i.index(device)
		result.Updated = append(result.Updated, *device)
	}
	return result
}

func (i *Inventory) index(device *Device) {
	i.devices[device.ID] = device
	i.byIP[device.IP] = device.ID
	i.byMAC[device.MAC] = device.ID
}

// Rename sets the display name of the device with address ip
func (i *Inventory) Rename(ip, name string) bool {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	id, ok := i.byIP[ip]
	if !ok {
		return false
	}
	i.devices[id].Name = &name
	return true
}

// ByIP returns a copy of the device with address ip
func (i *Inventory) ByIP(ip string) (Device, bool) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	id, ok := i.byIP[ip]
	if !ok {
		return Device{}, false
	}
	return *i.devices[id], true
}

// ByMAC returns a copy of the device with hardware address mac
func (i *Inventory) ByMAC(mac types.HardwareAddr) (Device, bool) {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	id, ok := i.byMAC[mac]
	if !ok {
		return Device{}, false
	}
	return *i.devices[id], true
}

// Devices returns copies of all devices sorted by address
func (i *Inventory) Devices() []Device {
	i.mutex.RLock()
	defer i.mutex.RUnlock()

	devices := make([]Device, 0, len(i.devices))
	for _, device := range i.devices {
		devices = append(devices, *device)
	}
	sort.Slice(devices, func(a, b int) bool {
		return prescan.CompareAddr(devices[a].IP, devices[b].IP) < 0
	})
	return devices
}

type snapshot struct {
	Devices []Device `json:"devices"`
}

// Load reads an inventory saved with Save. A missing file yields an empty
// inventory.
func Load(path string) (*Inventory, error) {
	inv := New()
	if !fileutil.FileExists(path) {
		return inv, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading inventory file: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("error parsing inventory file: %w", err)
	}
	for idx := range snap.Devices {
		device := snap.Devices[idx]
		if device.ID == "" {
			device.ID = xid.New().String()
		}
		inv.index(&device)
	}
	return inv, nil
}

// Save writes the inventory as JSON, creating parent directories
func (i *Inventory) Save(path string) error {
	data, err := json.MarshalIndent(snapshot{Devices: i.Devices()}, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling inventory: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating inventory directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
