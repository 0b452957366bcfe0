package pagination

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
	assert.Equal(t, 11, PeekLimit(10))
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	want := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}
	encoded := EncodeCursor(want)

	got, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func TestEncodeCursorIsURLSafe(t *testing.T) {
	t.Parallel()

	encoded := EncodeCursor(Cursor{CreatedAt: time.Now(), ID: uuid.New()})
	assert.False(t, strings.ContainsAny(encoded, "+/="), "cursor must survive a query string unescaped")
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	t.Parallel()

	got, err := ParseCursor("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseCursor("!!not-base64!!")
	assert.Error(t, err)

	_, err = ParseCursor("bm8tc2VwYXJhdG9y")
	assert.Error(t, err, "cursor without separator should fail")

	_, err = ParseCursor("bm90LWEtbnVtYmVyOmFiYw")
	assert.Error(t, err, "non-numeric timestamp should fail")
}
