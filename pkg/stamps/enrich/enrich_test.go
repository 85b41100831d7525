package enrich

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mnav0/major-studio-1/pkg/stamps/color"
	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
	"github.com/mnav0/major-studio-1/pkg/stamps/stamp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Embeddings: writeFile(t, dir, "embeddings.json", `[
			{"id": "a", "embedding": [0.1, 0.2]},
			{"id": "b", "embedding": ["x"]},
			{"embedding": [1]}
		]`),
		Detected: writeFile(t, dir, "detected.json", `[
			{"id": "a", "detected": [
				{"label": "portrait", "score": 0.91, "box": [0.1, 0.1, 0.9, 0.9]},
				{"label": "broken", "score": 0.5, "box": [0.1]}
			]}
		]`),
		Colors: writeFile(t, dir, "colors.json", `[
			{"id": "a", "colorData": [
				{"hex": "#C83232", "rgb": [200, 50, 50], "population": 120},
				{"hex": "#ffffff", "population": 30},
				{"population": 3}
			]}
		]`),
		ImageIDs: writeFile(t, dir, "image-ids.json", `["a", "c"]`),
	}

	ds, err := Load(paths, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, ds.Empty())
	assert.Len(t, ds.Embeddings, 1)

	stamps := []stamp.Stamp{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := Apply(stamps, ds)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, []float64{0.1, 0.2}, a.Embedding)
	require.Len(t, a.Detected, 1)
	assert.Equal(t, "portrait", a.Detected[0].Label)
	assert.Equal(t, [4]float64{0.1, 0.1, 0.9, 0.9}, a.Detected[0].Box)
	require.Len(t, a.Colors, 2)
	assert.Equal(t, "#c83232", a.Colors[0].Hex)
	assert.Equal(t, color.RGB{255, 255, 255}, a.Colors[1].RGB)
	assert.InDelta(t, 1.0, a.Colors[1].HSL[2], 1e-9)

	assert.Equal(t, "c", got[1].ID)
	assert.Nil(t, got[1].Embedding)
	assert.Nil(t, stamps[0].Embedding, "input must not be modified")
}

func TestApplyWithoutAllowlistKeepsAll(t *testing.T) {
	ds := Datasets{Embeddings: map[string][]float64{"a": {1}}}
	got := Apply([]stamp.Stamp{{ID: "a"}, {ID: "b"}}, ds)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1}, got[0].Embedding)

	ds.Embeddings["a"][0] = 9
	assert.Equal(t, []float64{1}, got[0].Embedding)
}

func TestLoadSkipsEmptyPaths(t *testing.T) {
	ds, err := Load(Paths{}, nil)
	require.NoError(t, err)
	assert.True(t, ds.Empty())
	assert.Len(t, Apply([]stamp.Stamp{{ID: "x"}}, ds), 1)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(Paths{Colors: filepath.Join(dir, "missing.json")}, nil)
	assert.Error(t, err)

	_, err = Load(Paths{Colors: writeFile(t, dir, "bad.json", `[{"id": `)}, nil)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput), "got %v", err)

	_, err = Load(Paths{ImageIDs: writeFile(t, dir, "obj.json", `{"a": 1}`)}, nil)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidInput), "got %v", err)
}

func TestParseImageIDs(t *testing.T) {
	ids := ParseImageIDs(gjson.Parse(`["a", " ", "b", "a"]`))
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "a")
	assert.Contains(t, ids, "b")
}
