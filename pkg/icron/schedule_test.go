package icron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTriggerInfo(t *testing.T) {
	ref := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	info, err := GetTriggerInfo("0 0 * * *", ref)
	require.NoError(t, err)

	assert.Equal(t, "0 0 * * *", info.Expression)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), info.Next)
	assert.Equal(t, 8*time.Hour+30*time.Minute, info.TimeUntilNext)
}

func TestGetTriggerInfoDescriptor(t *testing.T) {
	ref := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	info, err := GetTriggerInfo("@daily", ref)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), info.Next)
}

func TestGetTriggerInfoInvalidExpression(t *testing.T) {
	_, err := GetTriggerInfo("61 25 * * *", time.Now())
	assert.Error(t, err)
}
