package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsWithoutEnv(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3, GetSemitoneThreshold())
	assert.Equal(0, GetDiffOctClashThreshold())
	assert.Equal(0.99, GetOrderPrecedence())
	assert.Equal("meantone17", GetProjection())
	assert.Equal("C4", GetSeed())
	assert.Equal(256, GetQueueSize())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RETUNE_SEMITONE_THRESHOLD", "2")
	t.Setenv("RETUNE_PROJECTION", "meantone31")
	t.Setenv("RETUNE_SEED", "")
	t.Setenv("RETUNE_SESSION_TTL", "30s")

	assert := assert.New(t)
	assert.Equal(2, GetSemitoneThreshold())
	assert.Equal("meantone31", GetProjection())
	assert.Equal("", GetSeed())
	assert.Equal(30*time.Second, GetSessionTTL())
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("RETUNE_QUEUE_SIZE", "0")
	t.Setenv("RETUNE_ORDER_PRECEDENCE", "1.5")
	t.Setenv("RETUNE_BEND_RANGE", "two")

	assert := assert.New(t)
	assert.Equal(DefaultQueueSize, GetQueueSize())
	assert.Equal(DefaultOrderPrecedence, GetOrderPrecedence())
	assert.Equal(DefaultBendRange, GetBendRange())
}
