package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectConversationIdOrderIndependent(t *testing.T) {
	a := DirectConversationId("10000001", "20000002")
	b := DirectConversationId("20000002", "10000001")
	assert.Equal(t, a, b)
	assert.Equal(t, "direct_10000001_20000002", a)
}

func TestDirectConversationIdSelf(t *testing.T) {
	assert.Equal(t, "direct_10000001_10000001", DirectConversationId("10000001", "10000001"))
}

func TestGroupConversationId(t *testing.T) {
	assert.Equal(t, "group_g123", GroupConversationId("g123"))
}
