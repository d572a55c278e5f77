package device

import (
	"sort"
	"strings"

	"github.com/sgbasaraner/libyee/internal/protocol"
)

// MethodSet is the set of methods a device declared support for
type MethodSet map[protocol.Method]struct{}

// NewMethodSet builds a set from the given methods
func NewMethodSet(methods ...protocol.Method) MethodSet {
	set := make(MethodSet, len(methods))
	for _, m := range methods {
		set[m] = struct{}{}
	}
	return set
}

// ParseSupport reads the space-separated support field.
// Method names this client does not know are skipped.
func ParseSupport(field string) MethodSet {
	set := make(MethodSet)
	for _, name := range strings.Fields(field) {
		if m, ok := protocol.ParseMethod(name); ok {
			set[m] = struct{}{}
		}
	}
	return set
}

// Has reports whether m is in the set
func (s MethodSet) Has(m protocol.Method) bool {
	_, ok := s[m]
	return ok
}

// Methods returns the members in declaration order
func (s MethodSet) Methods() []protocol.Method {
	methods := make([]protocol.Method, 0, len(s))
	for m := range s {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

// String renders the set in the same form as the support field
func (s MethodSet) String() string {
	names := make([]string, 0, len(s))
	for _, m := range s.Methods() {
		names = append(names, m.String())
	}
	return strings.Join(names, " ")
}
