package cache

import (
	"testing"

	"github.com/Domenick1991/homecare/config"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"})
	assert.NotNil(t, c)
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "finalize:ATUid_1", finalizeKey("ATUid_1"))
	assert.Equal(t, "outcome:ATUid_1", outcomeKey("ATUid_1"))
}
