package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidProject(t *testing.T) {
	data := []byte(`{
		"id": "p1",
		"name": "Flat",
		"walls": [{"id": "w1", "start": {"x": 0, "y": 0}, "end": {"x": 400, "y": 0}, "thickness": 15}],
		"rooms": [{"id": "r1", "polygon": [{"x": 0, "y": 0}, {"x": 10, "y": 0}, {"x": 10, "y": 10}]}],
		"doors": [{"id": "d1", "wallId": "w1", "t": 0.5, "width": 80}],
		"windows": [{"id": "n1", "wallId": "w1", "t": 0.1, "width": 60, "height": 120}]
	}`)

	p, err := NewProjectValidator().ValidateBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "Flat", p.Name)
	require.Len(t, p.Walls, 1)
	assert.Equal(t, 400.0, p.Walls[0].End.X)
	require.Len(t, p.Doors, 1)
	assert.Equal(t, "w1", p.Doors[0].WallID)
	assert.Equal(t, 120.0, p.Windows[0].Height)
}

func TestInvalidProjects(t *testing.T) {
	cases := map[string]string{
		"missing walls":      `{"name": "x"}`,
		"negative thickness": `{"walls": [{"id": "w", "start": {"x": 0, "y": 0}, "end": {"x": 1, "y": 0}, "thickness": -1}]}`,
		"t out of range":     `{"walls": [], "doors": [{"id": "d", "wallId": "w", "t": 1.5, "width": 80}]}`,
		"point without y":    `{"walls": [{"id": "w", "start": {"x": 0}, "end": {"x": 1, "y": 0}, "thickness": 10}]}`,
		"not json":           `{walls`,
	}
	v := NewProjectValidator()
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateBytes([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidProject)
		})
	}
}
