package message

import "github.com/fxamacker/cbor/v2"

// Capability is an opaque URI identifying a protocol or application
// feature that a client or server supports.
type Capability string

// CoreV1 is the capability every conforming Pinhole implementation of
// this protocol version supports.
const CoreV1 Capability = "pinhole:core:v1"

// SupportedCapabilities returns the capability set this implementation
// understands. Servers and clients advertise (a subset of) this during
// negotiation.
func SupportedCapabilities() CapabilitySet {
	return NewCapabilitySet(CoreV1)
}

// CapabilitySet is an unordered collection of capabilities with set
// operations used during handshake negotiation.
type CapabilitySet struct {
	members map[Capability]struct{}
}

// NewCapabilitySet builds a CapabilitySet from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	return FromCapabilities(caps)
}

// FromCapabilities builds a CapabilitySet from a slice of capabilities.
func FromCapabilities(caps []Capability) CapabilitySet {
	s := CapabilitySet{members: make(map[Capability]struct{}, len(caps))}
	for _, c := range caps {
		s.members[c] = struct{}{}
	}
	return s
}

// Add inserts a capability into the set.
func (s *CapabilitySet) Add(c Capability) {
	if s.members == nil {
		s.members = make(map[Capability]struct{})
	}
	s.members[c] = struct{}{}
}

// Contains reports whether c is a member of the set.
func (s CapabilitySet) Contains(c Capability) bool {
	_, ok := s.members[c]
	return ok
}

// Intersect returns the set of capabilities present in both s and other.
// Used during handshake negotiation to compute the capabilities shared
// by client and server.
func (s CapabilitySet) Intersect(other CapabilitySet) CapabilitySet {
	out := CapabilitySet{members: make(map[Capability]struct{})}
	for c := range s.members {
		if other.Contains(c) {
			out.members[c] = struct{}{}
		}
	}
	return out
}

// IsEmpty reports whether the set has no members.
func (s CapabilitySet) IsEmpty() bool { return len(s.members) == 0 }

// Len returns the number of capabilities in the set.
func (s CapabilitySet) Len() int { return len(s.members) }

// Iter returns the set's members as a slice. Order is unspecified.
func (s CapabilitySet) Iter() []Capability {
	out := make([]Capability, 0, len(s.members))
	for c := range s.members {
		out = append(out, c)
	}
	return out
}

func (s CapabilitySet) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.Iter())
}

func (s *CapabilitySet) UnmarshalCBOR(data []byte) error {
	var caps []Capability
	if err := cbor.Unmarshal(data, &caps); err != nil {
		return err
	}
	*s = FromCapabilities(caps)
	return nil
}
