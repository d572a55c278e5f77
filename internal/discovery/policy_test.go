package discovery

import (
	"testing"
	"time"

	"github.com/sgbasaraner/libyee/internal/device"
)

func descriptors(ids ...string) []*device.Descriptor {
	out := make([]*device.Descriptor, len(ids))
	for i, id := range ids {
		out[i] = &device.Descriptor{ID: id}
	}
	return out
}

func TestPolicies(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		found   []*device.Descriptor
		elapsed time.Duration
		want    bool
	}{
		{"duration not reached", Duration(time.Second), descriptors("a"), 500 * time.Millisecond, false},
		{"duration reached", Duration(time.Second), nil, time.Second, true},
		{"count short", MinimumCount(2), descriptors("a"), time.Hour, false},
		{"count reached", MinimumCount(2), descriptors("a", "b"), 0, true},
		{"target missing", TargetID("c"), descriptors("a", "b"), time.Hour, false},
		{"target found", TargetID("b"), descriptors("a", "b"), 0, true},
		{"targets partial", TargetIDs("a", "c"), descriptors("a", "b"), 0, false},
		{"targets superset", TargetIDs("a", "c"), descriptors("c", "b", "a"), 0, true},
		{"no targets", TargetIDs(), nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Satisfied(tt.found, tt.elapsed); got != tt.want {
				t.Errorf("%v.Satisfied() = %v, want %v", tt.policy, got, tt.want)
			}
		})
	}
}

func TestPolicy_String(t *testing.T) {
	tests := []struct {
		policy Policy
		want   string
	}{
		{Duration(3 * time.Second), "duration 3s"},
		{MinimumCount(4), "count 4"},
		{TargetIDs("0x1", "0x2"), "ids 0x1,0x2"},
	}

	for _, tt := range tests {
		if got := tt.policy.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
