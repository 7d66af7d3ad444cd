package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIsCommutative(t *testing.T) {
	ab, err := Key("alice", "bob")
	require.NoError(t, err)
	ba, err := Key("bob", "alice")
	require.NoError(t, err)
	require.Equal(t, ab, ba)
	require.Equal(t, "alice:bob", ab)
}

func TestKeyRejectsInvalidParticipants(t *testing.T) {
	cases := []struct {
		name  string
		a, b  string
	}{
		{"self conversation", "alice", "alice"},
		{"empty first", "", "bob"},
		{"empty second", "alice", ""},
		{"separator in id", "ali:ce", "bob"},
		{"whitespace in id", "ali ce", "bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Key(tc.a, tc.b)
			require.ErrorIs(t, err, ErrInvalidParticipant)
		})
	}
}

func TestParticipantsRoundTrip(t *testing.T) {
	key, err := Key("zara", "ade")
	require.NoError(t, err)

	a, b, err := Participants(key)
	require.NoError(t, err)
	assert.Equal(t, "ade", a)
	assert.Equal(t, "zara", b)
}

func TestParticipantsRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{"", "alice", "alice:bob:carol", "bob:alice", "alice:alice"} {
		_, _, err := Participants(key)
		assert.ErrorIs(t, err, ErrInvalidParticipant, "key %q", key)
	}
}

func TestIncludesAndPeer(t *testing.T) {
	key, err := Key("alice", "bob")
	require.NoError(t, err)

	assert.True(t, Includes(key, "alice"))
	assert.True(t, Includes(key, "bob"))
	assert.False(t, Includes(key, "carol"))

	peer, err := Peer(key, "alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", peer)

	_, err = Peer(key, "carol")
	assert.ErrorIs(t, err, ErrInvalidParticipant)
}
