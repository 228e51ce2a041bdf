package nonce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := New("secret")
	s.now = func() time.Time { return now }

	tok := s.Create("approve_review_5", 1)
	assert.True(t, s.Verify(tok, "approve_review_5", 1))
	assert.False(t, s.Verify(tok, "approve_review_6", 1), "bound to the action")
	assert.False(t, s.Verify(tok, "approve_review_5", 2), "bound to the user")
	assert.False(t, s.Verify("", "approve_review_5", 1))

	now = now.Add(Lifetime / 2)
	assert.True(t, s.Verify(tok, "approve_review_5", 1), "previous tick is accepted")

	now = now.Add(Lifetime)
	assert.False(t, s.Verify(tok, "approve_review_5", 1), "expired")
}

func TestEmptySecretNeverVerifies(t *testing.T) {
	s := New("")
	assert.False(t, s.Verify(s.Create("a", 1), "a", 1))
}
