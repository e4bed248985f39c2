package valueobjects

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	tests := []struct {
		name    string
		x, y    float64
		wantErr bool
	}{
		{name: "origin", x: 0, y: 0},
		{name: "negative", x: -100.5, y: 320},
		{name: "NaN x", x: math.NaN(), y: 0, wantErr: true},
		{name: "infinite y", x: 0, y: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPosition(tt.x, tt.y)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid coordinates")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.x, p.X())
			assert.Equal(t, tt.y, p.Y())
		})
	}
}

func TestPositionJSON(t *testing.T) {
	p, err := NewPosition(100, 50)
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":100,"y":50}`, string(data))
}

func TestNoteContentExcerpt(t *testing.T) {
	long := strings.Repeat("é", 250)
	c := NewNoteContent("t", "", long)
	assert.Equal(t, 200, len([]rune(c.Excerpt(200))))

	short := NewNoteContent("t", "<p>short &amp; sweet</p>", "")
	assert.Equal(t, "short & sweet", short.Excerpt(200))

	assert.True(t, NewNoteContent(" ", "", "").IsEmpty())
}

func TestNodeKeyValidate(t *testing.T) {
	_, err := NewNodeKey("u", "theme", "love")
	assert.NoError(t, err)

	_, err = NewNodeKey("", "theme", "love")
	assert.Error(t, err)

	_, err = NewNodeKey("u", "theme", "")
	assert.Error(t, err)
}

func TestNodeIDFromString(t *testing.T) {
	id := NewNodeID()
	parsed, err := NewNodeIDFromString(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = NewNodeIDFromString("not-a-uuid")
	assert.Error(t, err)
}
