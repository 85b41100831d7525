package themes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnav0/major-studio-1/pkg/stamps/internalerr"
)

func TestBuiltinIsValid(t *testing.T) {
	require.NoError(t, Builtin().Validate())
}

func TestBuiltinReturnsCopies(t *testing.T) {
	a := Builtin()
	a.Priority[0] = "changed"
	a.Buckets["Allegories"][0] = "changed"

	b := Builtin()
	assert.Equal(t, "George Washington", b.Priority[0])
	assert.Equal(t, "Clio", b.Buckets["Allegories"][0])
}

func TestBuiltinPriorityThemesHaveBuckets(t *testing.T) {
	d := Builtin()
	for _, theme := range d.Priority {
		assert.NotEqual(t, OtherBucket, d.BucketFor(theme), "theme %q has no bucket", theme)
	}
}

func TestBucketFor(t *testing.T) {
	d := Builtin()
	assert.Equal(t, "Founding Figures", d.BucketFor("George Washington"))
	assert.Equal(t, "Founding Figures", d.BucketFor("george washington"))
	assert.Equal(t, "Postal System", d.BucketFor(ThemeManualPostmark))
	assert.Equal(t, "Colonization, Control", d.BucketFor(ThemeBritishCrown))
	assert.Equal(t, OtherBucket, d.BucketFor("Seward"))
	assert.Equal(t, OtherBucket, d.BucketFor(""))
}

func TestBucketNamesOrder(t *testing.T) {
	d := &Dictionary{
		Buckets: map[string][]string{
			"Zeta":  {"z"},
			"Alpha": {"a"},
			"Mid":   {"m"},
		},
		BucketOrder: []string{"Mid", "Mid", "Missing"},
	}
	assert.Equal(t, []string{"Mid", "Alpha", "Zeta"}, d.BucketNames())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		dict Dictionary
	}{
		{
			name: "duplicate priority",
			dict: Dictionary{Priority: []string{"Eagle", "EAGLE"}},
		},
		{
			name: "blank priority",
			dict: Dictionary{Priority: []string{"  "}},
		},
		{
			name: "blank normalization target",
			dict: Dictionary{Normalization: map[string]string{"grant": ""}},
		},
		{
			name: "variants differing in case map to different themes",
			dict: Dictionary{Normalization: map[string]string{
				"Grant": "Ulysses Grant",
				"grant": "Cary Grant",
				"GRANT": "Cary Grant",
			}},
		},
		{
			name: "punctuation-only variant",
			dict: Dictionary{Normalization: map[string]string{"--": "Eagle"}},
		},
		{
			name: "theme in two buckets",
			dict: Dictionary{Buckets: map[string][]string{"A": {"War"}, "B": {"war"}}},
		},
		{
			name: "blank bucket theme",
			dict: Dictionary{Buckets: map[string][]string{"A": {""}}},
		},
		{
			name: "unknown bucket in order",
			dict: Dictionary{Buckets: map[string][]string{"A": {"War"}}, BucketOrder: []string{"B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dict.Validate()
			assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
		})
	}
}

func TestValidateAcceptsCaseVariantsOfOneTheme(t *testing.T) {
	d := Dictionary{
		Normalization: map[string]string{"Grant": "Ulysses Grant", "grant": "ulysses grant"},
		Priority:      []string{"Ulysses Grant"},
	}
	require.NoError(t, d.Validate())

	e, err := NewExtractor(&d)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		theme, ok := e.ExtractTheme("3c Grant single")
		require.True(t, ok)
		assert.Equal(t, "Ulysses Grant", theme)
	}
}

func TestKeywordsDeduplicated(t *testing.T) {
	d := &Dictionary{
		Normalization: map[string]string{"soldiers": "Soldier", "soldier": "Soldier"},
		Priority:      []string{"Soldier", "War"},
	}
	assert.Equal(t, []string{"soldier", "soldiers", "War"}, d.Keywords())
}

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	yamlData := `
normalization:
  washington: George Washington
  isabela: Queen Isabella
priority:
  - George Washington
  - Queen Isabella
buckets:
  Founding Figures: [George Washington]
  Discovering America: [Queen Isabella]
bucket_order: [Founding Figures, Discovering America]
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o644))

	d, err := LoadDictionary(path)
	require.NoError(t, err)
	require.NoError(t, d.Validate())

	assert.Equal(t, "George Washington", d.Normalization["washington"])
	assert.Equal(t, []string{"George Washington", "Queen Isabella"}, d.Priority)
	assert.Equal(t, "Discovering America", d.BucketFor("Queen Isabella"))

	e, err := NewExtractor(d)
	require.NoError(t, err)
	theme, ok := e.ExtractTheme("Isabela and Washington")
	assert.True(t, ok)
	assert.Equal(t, "George Washington", theme)
}

func TestLoadDictionaryErrors(t *testing.T) {
	_, err := LoadDictionary("/nonexistent/themes.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("priority: [unclosed"), 0o644))
	_, err = LoadDictionary(path)
	assert.Error(t, err)
}

func TestParseDictionaryEmpty(t *testing.T) {
	d, err := ParseDictionary([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, d.Normalization)
	assert.NotNil(t, d.Buckets)
	assert.NoError(t, d.Validate())
}

func TestShippedThemesFileMatchesBuiltin(t *testing.T) {
	d, err := LoadDictionary(filepath.Join("..", "..", "..", "configs", "themes.yaml"))
	require.NoError(t, err)

	b := Builtin()
	assert.Equal(t, b.Normalization, d.Normalization)
	assert.Equal(t, b.Priority, d.Priority)
	assert.Equal(t, b.Buckets, d.Buckets)
	assert.Equal(t, b.BucketOrder, d.BucketOrder)
}
