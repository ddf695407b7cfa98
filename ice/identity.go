package ice

import "strings"

// Identity is an object's (name, category) pair. Its string form is
// "category/name", or bare "name" when category is empty.
type Identity struct {
	Name     string
	Category string
}

// NewIdentity parses "category/name" or "name" into an Identity; a
// string without a slash has an empty category.
func NewIdentity(s string) Identity {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return Identity{Category: s[:i], Name: s[i+1:]}
	}
	return Identity{Name: s}
}

// String renders the identity back into "category/name" or "name" form.
func (id Identity) String() string {
	if id.Category == "" {
		return id.Name
	}
	return id.Category + "/" + id.Name
}

// EncodeIdentity appends name then category.
func EncodeIdentity(buf []byte, id Identity) []byte {
	buf = EncodeString(buf, id.Name)
	buf = EncodeString(buf, id.Category)
	return buf
}

// DecodeIdentity reads name then category.
func DecodeIdentity(buf []byte, pos *int) (Identity, error) {
	name, err := DecodeString(buf, pos)
	if err != nil {
		return Identity{}, err
	}
	category, err := DecodeString(buf, pos)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Name: name, Category: category}, nil
}
