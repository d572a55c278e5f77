package discovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/sgbasaraner/libyee/internal/device"
)

// Policy decides when a discovery session ends. Satisfied is evaluated
// after every newly seen device and once per poll.
type Policy interface {
	Satisfied(found []*device.Descriptor, elapsed time.Duration) bool
	String() string
}

type durationPolicy time.Duration

// Duration ends the session once d has elapsed, whatever was found
func Duration(d time.Duration) Policy {
	return durationPolicy(d)
}

func (p durationPolicy) Satisfied(_ []*device.Descriptor, elapsed time.Duration) bool {
	return elapsed >= time.Duration(p)
}

func (p durationPolicy) String() string {
	return fmt.Sprintf("duration %v", time.Duration(p))
}

type countPolicy int

// MinimumCount ends the session as soon as n distinct devices were seen.
// The result holds exactly n devices.
func MinimumCount(n int) Policy {
	return countPolicy(n)
}

func (p countPolicy) Satisfied(found []*device.Descriptor, _ time.Duration) bool {
	return len(found) >= int(p)
}

func (p countPolicy) String() string {
	return fmt.Sprintf("count %d", int(p))
}

type targetPolicy []string

// TargetID ends the session once the device with this id was seen
func TargetID(id string) Policy {
	return targetPolicy{id}
}

// TargetIDs ends the session once every listed id was seen
func TargetIDs(ids ...string) Policy {
	return targetPolicy(ids)
}

func (p targetPolicy) Satisfied(found []*device.Descriptor, _ time.Duration) bool {
	seen := make(map[string]bool, len(found))
	for _, d := range found {
		seen[d.ID] = true
	}
	for _, id := range p {
		if !seen[id] {
			return false
		}
	}
	return true
}

func (p targetPolicy) String() string {
	return "ids " + strings.Join(p, ",")
}
