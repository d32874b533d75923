package runtime

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Typed is any object that is defined by a versioned type.
type Typed interface {
	// GetType returns the object's type
	GetType() Type
	SetType(Type)
}

// Type identifies the kind of a typed object, such as a repository
// specification or a configuration document.
// Name is the name of the type and Version a specific iteration of it.
type Type struct {
	Version string
	Name    string
}

// NewVersionedType creates a new Type instance with a version.
func NewVersionedType(name, version string) Type {
	return Type{Name: name, Version: version}
}

// TypeFromString parses a type string in the formats:
// - "name" (unversioned)
// - "name/version" (versioned)
func TypeFromString(typ string) (Type, error) {
	parts := strings.Split(typ, "/")

	// Only allow one or two parts (name or name/version)
	if len(parts) > 2 {
		return Type{}, fmt.Errorf("invalid type %q, too many segments", typ)
	}

	var t Type
	if len(parts) == 1 {
		t = Type{Name: parts[0]}
	} else {
		t = Type{Name: parts[0], Version: parts[1]}
		if t.Version == "" {
			return Type{}, fmt.Errorf("invalid type %q, empty version", typ)
		}
	}

	if t.Name == "" {
		return Type{}, fmt.Errorf("invalid type %q, missing name", typ)
	}

	return t, nil
}

// Equal checks if two Types are the same.
func (t Type) Equal(other Type) bool {
	return t.Name == other.Name && t.Version == other.Version
}

// String returns "name/version", or "name" for unversioned types.
func (t Type) String() string {
	if t.Version != "" {
		return t.Name + "/" + t.Version
	}
	return t.Name
}

func (t Type) HasVersion() bool {
	return t.Version != ""
}

// IsEmpty checks if the Type is empty (no version or name).
func (t Type) IsEmpty() bool {
	return t.Version == "" && t.Name == ""
}

// MarshalJSON converts Type to a JSON string.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses a JSON string into Type.
func (t *Type) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("could not unmarshal type: %w", err)
	}

	parsed, err := TypeFromString(str)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}
