package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Raw holds a typed object whose concrete Go type is not known yet.
// Data is the canonical JSON form of the whole object (RFC 8785), so two
// Raw values describing the same object have identical Data regardless of
// key order or formatting in the source document.
type Raw struct {
	Type `json:"type"`
	Data []byte `json:"-"`
}

var _ interface {
	json.Marshaler
	json.Unmarshaler
	Typed
} = &Raw{}

func (u *Raw) String() string {
	return string(u.Data)
}

func (u *Raw) SetType(v Type) {
	u.Type = v
}

func (u *Raw) GetType() Type {
	return u.Type
}

func (u *Raw) MarshalJSON() ([]byte, error) {
	return u.Data, nil
}

func (u *Raw) UnmarshalJSON(data []byte) error {
	t := &struct {
		Type Type `json:"type"`
	}{}
	err := json.Unmarshal(data, t)
	if err != nil {
		return fmt.Errorf("could not unmarshal data into raw: %w", err)
	}
	u.Type = t.Type

	u.Data, err = jsoncanonicalizer.Transform(data)
	if err != nil {
		return fmt.Errorf("could not canonicalize data: %w", err)
	}

	return nil
}

// NewRaw marshals typed and returns it as a Raw.
func NewRaw(typed Typed) (*Raw, error) {
	data, err := json.Marshal(typed)
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s: %w", typed.GetType(), err)
	}
	raw := &Raw{}
	if err := raw.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return raw, nil
}
