package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesEqual(t *testing.T) {
	tests := []struct {
		name  string
		left  Attributes
		right Attributes
		want  bool
	}{
		{"identical bytes", Attributes(`{"a":1}`), Attributes(`{"a":1}`), true},
		{"key order", Attributes(`{"a":1,"b":"x"}`), Attributes(`{"b":"x","a":1}`), true},
		{"whitespace", Attributes(`{ "a" : [1, 2] }`), Attributes(`{"a":[1,2]}`), true},
		{"different value", Attributes(`{"a":1}`), Attributes(`{"a":2}`), false},
		{"array order matters", Attributes(`[1,2]`), Attributes(`[2,1]`), false},
		{"invalid json", Attributes(`{`), Attributes(`{}`), false},
		{"decimal strings differ", Attributes(`{"balance":"100.0"}`), Attributes(`{"balance":"100.00"}`), false},
		{"large integers differ", Attributes(`{"location_id":9007199254740993}`), Attributes(`{"location_id":9007199254740992}`), false},
		{"large integers equal", Attributes(`{"item_id": 1030000000000000001}`), Attributes(`{"item_id":1030000000000000001}`), true},
		{"numeric scale ignored", Attributes(`{"qty":1.0}`), Attributes(`{"qty":1}`), true},
		{"nested arrays", Attributes(`{"a":[{"x":1},{"y":null}]}`), Attributes(`{"a":[{"x":1},{"y":null}]} `), true},
		{"number vs string", Attributes(`{"a":1}`), Attributes(`{"a":"1"}`), false},
		{"missing key", Attributes(`{"a":1,"b":2}`), Attributes(`{"a":1,"c":2}`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.left.Equal(tt.right))
		})
	}
}

func TestAttributesScan(t *testing.T) {
	var a Attributes
	require.NoError(t, a.Scan([]byte(`{"a":1}`)))
	assert.JSONEq(t, `{"a":1}`, string(a))

	require.NoError(t, a.Scan(`{"b":2}`))
	assert.JSONEq(t, `{"b":2}`, string(a))

	require.NoError(t, a.Scan(nil))
	assert.Nil(t, a)

	assert.Error(t, a.Scan(42))
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, NaturalKey("1:hangar:34"), KeyOf(1, "hangar", 34))
	assert.Equal(t, NaturalKey("x"), KeyOf("x"))
}

func TestVersionedEntityValidity(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	closed := VersionedEntity{ValidFrom: t0, ValidTo: &t1}
	assert.False(t, closed.ValidAt(t0.Add(-time.Nanosecond)))
	assert.True(t, closed.ValidAt(t0))
	assert.True(t, closed.ValidAt(t1.Add(-time.Nanosecond)))
	assert.False(t, closed.ValidAt(t1))
	assert.False(t, closed.IsOpen())

	open := VersionedEntity{ValidFrom: t1}
	assert.True(t, open.IsOpen())
	assert.True(t, open.ValidAt(t1.Add(1000*time.Hour)))

	assert.True(t, closed.Overlaps(t0.Add(-time.Hour), t0.Add(time.Minute)))
	assert.False(t, closed.Overlaps(t1, t1.Add(time.Hour)))
	assert.False(t, closed.Overlaps(t0.Add(-time.Hour), t0))
	assert.True(t, open.Overlaps(t1.Add(time.Hour), t1.Add(2*time.Hour)))
}

func TestExpectOpen(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &VersionedEntity{AccountID: 1, EntityType: "wallet", NaturalKey: SingletonKey, ValidFrom: t0}
	b := &VersionedEntity{AccountID: 1, EntityType: "wallet", NaturalKey: SingletonKey, ValidFrom: t0.Add(time.Hour)}

	assert.NoError(t, ExpectOpen(nil, nil))
	assert.NoError(t, ExpectOpen(a, a))
	assert.ErrorIs(t, ExpectOpen(nil, a), ErrStaleVersion)
	assert.ErrorIs(t, ExpectOpen(a, nil), ErrStaleVersion)
	assert.ErrorIs(t, ExpectOpen(a, b), ErrStaleVersion)
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]SyncState{
		{StateNotProcessed, StateInProgress},
		{StateInProgress, StateUpdated},
		{StateInProgress, StateSyncError},
		{StateInProgress, StateNotAllowed},
		{StateUpdated, StateInProgress},
		{StateSyncError, StateInProgress},
		{StateNotAllowed, StateNotProcessed},
	}
	for _, p := range allowed {
		assert.True(t, CanTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}

	denied := [][2]SyncState{
		{StateNotProcessed, StateUpdated},
		{StateUpdated, StateUpdated},
		{StateNotAllowed, StateInProgress},
		{StateInProgress, StateInProgress},
		{StateSyncError, StateNotProcessed},
	}
	for _, p := range denied {
		assert.False(t, CanTransition(p[0], p[1]), "%s -> %s", p[0], p[1])
	}
}

func TestRemoteError(t *testing.T) {
	cause := errors.New("forbidden")
	err := error(NewPermanentError(403, cause))

	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "status 403")

	assert.False(t, IsPermanent(NewTransientError(502, cause)))
	assert.False(t, IsPermanent(cause))
}
