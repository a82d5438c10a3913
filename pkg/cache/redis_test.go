package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "ta-hiring:ratings:alice", Key("ratings", "alice"))
	assert.Equal(t, "ta-hiring:experience:*", Key("experience", "*"))
}
