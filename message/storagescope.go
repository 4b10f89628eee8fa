package message

import "fmt"

// StorageScope identifies which of the three state lifetimes a stored
// value belongs to. Values in different scopes are merged with
// Local overriding Session overriding Persistent.
type StorageScope int

const (
	Persistent StorageScope = iota
	Session
	Local
)

func (s StorageScope) String() string {
	switch s {
	case Persistent:
		return "Persistent"
	case Session:
		return "Session"
	case Local:
		return "Local"
	default:
		return fmt.Sprintf("StorageScope(%d)", int(s))
	}
}

func (s StorageScope) MarshalCBOR() ([]byte, error) {
	switch s {
	case Persistent, Session, Local:
		return marshalUnitVariant(s.String())
	default:
		return nil, fmt.Errorf("message: unknown StorageScope %d", int(s))
	}
}

func (s *StorageScope) UnmarshalCBOR(data []byte) error {
	name, _, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode StorageScope: %w", err)
	}
	if !isUnit {
		return fmt.Errorf("message: StorageScope must be a bare variant name")
	}
	switch name {
	case "Persistent":
		*s = Persistent
	case "Session":
		*s = Session
	case "Local":
		*s = Local
	default:
		return fmt.Errorf("message: unknown StorageScope %q", name)
	}
	return nil
}
