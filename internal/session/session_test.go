package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AssignsDistinctIDs(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestContextFor(t *testing.T) {
	s := New(
		Context{Type: ContextSSH, UserID: "alice", UserKey: "~/.ssh/id_ed25519"},
		Context{Type: ContextUserPass, UserID: "bob", UserPass: "secret"},
		Context{Type: ContextUserPass, UserID: "carol", UserPass: "other"},
	)

	c, ok := s.ContextFor("userpass")
	require.True(t, ok)
	assert.Equal(t, "bob", c.UserID, "the first matching context wins")

	_, ok = s.ContextFor(ContextX509)
	assert.False(t, ok)

	var nilSession *Session
	_, ok = nilSession.ContextFor(ContextSSH)
	assert.False(t, ok)
}

func TestContexts_ReturnsCopies(t *testing.T) {
	attrs := map[string]string{"zone": "eu"}
	s := New(Context{Type: ContextToken, UserToken: "t", Attributes: attrs})
	attrs["zone"] = "us"

	got := s.Contexts()
	require.Len(t, got, 1)
	assert.Equal(t, "eu", got[0].Attributes["zone"])

	got[0].UserToken = "changed"
	c, _ := s.ContextFor(ContextToken)
	assert.Equal(t, "t", c.UserToken)
}
