package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// EntityType discriminates the data category a version belongs to
// (e.g. "wallet", "implant", "title").
type EntityType string

// NaturalKey identifies one fact within an entity type for an account.
type NaturalKey string

// SingletonKey is the natural key for categories holding a single fact per account.
const SingletonKey NaturalKey = "unit"

// KeyOf builds a composite natural key from its parts.
func KeyOf(parts ...any) NaturalKey {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return NaturalKey(strings.Join(s, ":"))
}

type EntityKey struct {
	AccountID  int64
	EntityType EntityType
	NaturalKey NaturalKey
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%d/%s/%s", k.AccountID, k.EntityType, k.NaturalKey)
}

// VersionedEntity is one historical fact about one account. A nil ValidTo
// marks the open (currently valid) version.
type VersionedEntity struct {
	ID         int64      `db:"id" json:"id"`
	AccountID  int64      `db:"account_id" json:"account_id"`
	EntityType EntityType `db:"entity_type" json:"entity_type"`
	NaturalKey NaturalKey `db:"natural_key" json:"natural_key"`
	Attributes Attributes `db:"attributes" json:"attributes"`
	ValidFrom  time.Time  `db:"valid_from" json:"valid_from"`
	ValidTo    *time.Time `db:"valid_to" json:"valid_to,omitempty"`
}

func (v VersionedEntity) Key() EntityKey {
	return EntityKey{AccountID: v.AccountID, EntityType: v.EntityType, NaturalKey: v.NaturalKey}
}

func (v VersionedEntity) IsOpen() bool {
	return v.ValidTo == nil
}

// ValidAt reports whether t falls in [ValidFrom, ValidTo).
func (v VersionedEntity) ValidAt(t time.Time) bool {
	if t.Before(v.ValidFrom) {
		return false
	}
	return v.ValidTo == nil || t.Before(*v.ValidTo)
}

// Overlaps reports whether the version intersects [from, to).
func (v VersionedEntity) Overlaps(from, to time.Time) bool {
	if !v.ValidFrom.Before(to) {
		return false
	}
	return v.ValidTo == nil || v.ValidTo.After(from)
}

// ExpectOpen verifies that a writer's view of the open version (nil for
// "no open version") still matches the current one.
func ExpectOpen(expected, current *VersionedEntity) error {
	switch {
	case expected == nil && current == nil:
		return nil
	case expected == nil:
		return fmt.Errorf("%w: %s already has an open version", ErrStaleVersion, current.Key())
	case current == nil:
		return fmt.Errorf("%w: %s has no open version", ErrStaleVersion, expected.Key())
	case !expected.ValidFrom.Equal(current.ValidFrom):
		return fmt.Errorf("%w: %s open since %s, expected %s", ErrStaleVersion, current.Key(), current.ValidFrom, expected.ValidFrom)
	}
	return nil
}

// Attributes is the JSON encoded payload of a version. Two payloads are
// equal when they decode to the same JSON value, regardless of key order
// or whitespace.
type Attributes []byte

// NewAttributes encodes v as an attribute payload.
func NewAttributes(v any) (Attributes, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return Attributes(data), nil
}

// MustAttributes is NewAttributes for values known to encode.
func MustAttributes(v any) Attributes {
	a, err := NewAttributes(v)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Attributes) Decode(into any) error {
	return json.Unmarshal(a, into)
}

func (a Attributes) Equal(other Attributes) bool {
	if bytes.Equal(a, other) {
		return true
	}
	left, err := decodeExact(a)
	if err != nil {
		return false
	}
	right, err := decodeExact(other)
	if err != nil {
		return false
	}
	return jsonEqual(left, right)
}

// decodeExact keeps numbers as json.Number so large integers survive.
func decodeExact(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// jsonEqual compares decoded values; numbers compare by exact decimal value.
func jsonEqual(left, right any) bool {
	switch l := left.(type) {
	case map[string]any:
		r, ok := right.(map[string]any)
		if !ok || len(l) != len(r) {
			return false
		}
		for k, lv := range l {
			rv, ok := r[k]
			if !ok || !jsonEqual(lv, rv) {
				return false
			}
		}
		return true
	case []any:
		r, ok := right.([]any)
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !jsonEqual(l[i], r[i]) {
				return false
			}
		}
		return true
	case json.Number:
		r, ok := right.(json.Number)
		if !ok {
			return false
		}
		ld, lerr := decimal.NewFromString(l.String())
		rd, rerr := decimal.NewFromString(r.String())
		if lerr != nil || rerr != nil {
			return l == r
		}
		return ld.Equal(rd)
	default:
		return left == right
	}
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *Attributes) UnmarshalJSON(data []byte) error {
	*a = append((*a)[:0], data...)
	return nil
}

// Value sends the payload as text so it binds to jsonb columns.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return string(a), nil
}

func (a *Attributes) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
	case []byte:
		*a = append(Attributes(nil), v...)
	case string:
		*a = Attributes(v)
	default:
		return fmt.Errorf("scan attributes: unsupported type %T", src)
	}
	return nil
}
