package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 40, NormalizeLimit(40))
	assert.Equal(t, MaxLimit, NormalizeLimit(500))
}

func TestLimitWithBuffer(t *testing.T) {
	assert.Equal(t, DefaultLimit+1, LimitWithBuffer(0))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	createdAt := time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC)

	cursor, err := Parse(Encode(createdAt, id))
	require.NoError(t, err)
	require.NotNil(t, cursor)

	assert.True(t, cursor.CreatedAt.Equal(createdAt))
	assert.Equal(t, id, cursor.ID)
}

func TestParseEmptyCursor(t *testing.T) {
	cursor, err := Parse("  ")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestParseInvalidCursor(t *testing.T) {
	_, err := Parse("not-base64!!")
	assert.Error(t, err)

	_, err = Parse("bm8tcGlwZS1oZXJl")
	assert.Error(t, err)
}
