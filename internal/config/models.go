package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CurrentVersion is the only config file version this build reads
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// This stores user-defined metadata for lights and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device id
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents user-defined metadata for a single light.
// This is keyed by the id the light announces during discovery.
type Device struct {
	Nickname    string    `yaml:"nickname,omitempty"`     // User-friendly name
	LastAddress string    `yaml:"last_address,omitempty"` // Last known control address (host:port)
	Model       string    `yaml:"model,omitempty"`        // Model reported in the announcement
	LastSeen    time.Time `yaml:"last_seen,omitempty"`    // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeout int    `yaml:"discover_timeout"`     // Discovery duration in seconds
	PollIntervalMs  int    `yaml:"poll_interval_ms"`     // Discovery poll cadence
	ReadTimeoutMs   int    `yaml:"read_timeout_ms"`      // Per-call response timeout, 0 waits forever
	DialRetries     int    `yaml:"dial_retries"`         // Connection attempts after the first
	StorePath       string `yaml:"store_path,omitempty"` // Announcement cache; next to the config file when empty
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DiscoverTimeout: 3,
		PollIntervalMs:  250,
		ReadTimeoutMs:   5000,
		DialRetries:     3,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// DiscoverDuration returns DiscoverTimeout as a duration
func (p *Preferences) DiscoverDuration() time.Duration {
	return time.Duration(p.DiscoverTimeout) * time.Second
}

// PollInterval returns PollIntervalMs as a duration
func (p *Preferences) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// ReadTimeout returns ReadTimeoutMs as a duration
func (p *Preferences) ReadTimeout() time.Duration {
	return time.Duration(p.ReadTimeoutMs) * time.Millisecond
}

// GetDevice retrieves device metadata by id.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[id]; exists {
		return device
	}

	device := &Device{}
	r.Devices[id] = device
	return device
}

// UpdateDeviceLastSeen records where and when a device was last reached.
func (r *Registry) UpdateDeviceLastSeen(id, address, model string) {
	device := r.EnsureDevice(id)
	device.LastSeen = time.Now()
	device.LastAddress = address
	if model != "" {
		device.Model = model
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
// Nicknames are unique (case-insensitive); an empty nickname clears it.
func (r *Registry) SetDeviceNickname(id, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname != "" {
		if owner, ok := r.findByNickname(nickname); ok && owner != id {
			return fmt.Errorf("nickname %q is already used by device %s", nickname, owner)
		}
	}

	device := r.EnsureDevice(id)
	device.Nickname = nickname
	return nil
}

// RemoveDevice forgets a device. Reports whether it was known.
func (r *Registry) RemoveDevice(id string) bool {
	if _, ok := r.Devices[id]; !ok {
		return false
	}
	delete(r.Devices, id)
	return true
}

// ResolveDevice maps a reference given on the command line to a device id.
// An exact id match wins over a nickname. Unknown references are returned
// unchanged with ok false, so callers can still try them as raw ids.
func (r *Registry) ResolveDevice(ref string) (id string, ok bool) {
	if _, exists := r.Devices[ref]; exists {
		return ref, true
	}
	if owner, found := r.findByNickname(ref); found {
		return owner, true
	}
	return ref, false
}

// DeviceIDs returns the known ids in sorted order
func (r *Registry) DeviceIDs() []string {
	ids := make([]string, 0, len(r.Devices))
	for id := range r.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) findByNickname(nickname string) (string, bool) {
	for id, device := range r.Devices {
		if device != nil && device.Nickname != "" && strings.EqualFold(device.Nickname, nickname) {
			return id, true
		}
	}
	return "", false
}
