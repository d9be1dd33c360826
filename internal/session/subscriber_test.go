package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSubscriberIDIsUnique(t *testing.T) {
	a := NewSubscriberID()
	b := NewSubscriberID()
	require.NotEqual(t, a, b)
	require.False(t, a.IsZero())
}
