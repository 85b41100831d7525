package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rows = `{"id":"a","title":"10c Washington single","content":{"indexedStructured":{"date":["1840s"],"topic":["U.S. Stamps"]},"freetext":{"physicalDescription":[{"label":"Medium","content":"ink; paper"}]}}}
{"id":"b","title":"5c Franklin single","content":{"indexedStructured":{"date":["1847"],"place":["United States"]}}}
{"id":"c","title":"Washington cover","content":{"indexedStructured":{"date":["1850s"],"topic":["U.S. Stamps"]}}}
{"id":"e","title":"24c Lincoln","content":{"indexedStructured":{"date":["1860s"],"topic":["U.S. Stamps"]}}}
`

// workspace writes a config whose store lives in a temp dir and a JSONL
// dump, returning their paths.
func workspace(t *testing.T, extra string) (cfgPath, dumpPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "stamps.yaml")
	dumpPath = filepath.Join(dir, "rows.jsonl")
	cfg := fmt.Sprintf("store:\n  path: %s\n%s", filepath.Join(dir, "stamps.db"), extra)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(dumpPath, []byte(rows), 0o644))
	return cfgPath, dumpPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func TestImportThenExplore(t *testing.T) {
	cfg, dump := workspace(t, "")

	out, err := run(t, "--config", cfg, "import", dump)
	require.NoError(t, err)
	assert.Contains(t, out, "records seen: 4")
	assert.Contains(t, out, "included:     3")
	assert.Contains(t, out, "excluded title-keyword: 1")
	assert.Contains(t, out, "stored:       3")

	out, err = run(t, "--config", cfg, "decades")
	require.NoError(t, err)
	assert.Contains(t, out, "1840s")
	assert.Contains(t, out, "2 stamps")
	assert.Contains(t, out, "1860s")
	assert.Contains(t, out, "Last fetch import")

	out, err = run(t, "--config", cfg, "groups", "--decade", "1840", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1840s")
	assert.Contains(t, out, "George Washington")
	assert.Contains(t, out, "Benjamin Franklin")
	assert.Contains(t, out, "    a  10c Washington single")
	assert.Contains(t, out, "Featured: 10c Washington single (a)")
	assert.Contains(t, out, "Materials: ink, paper")
}

func TestGroupsFilters(t *testing.T) {
	cfg, dump := workspace(t, "")
	_, err := run(t, "--config", cfg, "import", dump)
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "groups", "-d", "1840", "-m", "paper")
	require.NoError(t, err)
	assert.Contains(t, out, "George Washington")
	assert.NotContains(t, out, "Benjamin Franklin")
	assert.Contains(t, out, "paper*")

	out, err = run(t, "--config", cfg, "groups", "-d", "1840", "-k", "nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "No stamps match the selected filters.")
	assert.Contains(t, out, "nothing-matches*")

	_, err = run(t, "--config", cfg, "groups", "--color", "not-a-color")
	assert.Error(t, err)
}

func TestGroupsJSON(t *testing.T) {
	cfg, dump := workspace(t, "")
	_, err := run(t, "--config", cfg, "import", dump)
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "groups", "--decade", "1860", "--json")
	require.NoError(t, err)

	var view struct {
		Decade int `json:"decade"`
		Groups []struct {
			Theme string `json:"theme"`
			Count int    `json:"count"`
		} `json:"groups"`
		Empty bool `json:"empty"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 1860, view.Decade)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "Abraham Lincoln", view.Groups[0].Theme)
	assert.Equal(t, 1, view.Groups[0].Count)
	assert.False(t, view.Empty)
}

func TestDecadesEmptyStore(t *testing.T) {
	cfg, _ := workspace(t, "")
	out, err := run(t, "--config", cfg, "decades")
	require.NoError(t, err)
	assert.Contains(t, out, "No stamps stored")
}

func TestExplain(t *testing.T) {
	out, err := run(t, "explain", "Columbus", "meets", "Washington")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme:   George Washington")
	assert.Contains(t, out, "Christopher Columbus")

	out, err = run(t, "explain", "Queen Victoria")
	require.NoError(t, err)
	assert.Contains(t, out, "Matches: none")
	assert.Contains(t, out, "Theme:   none")

	_, err = run(t, "explain")
	assert.Error(t, err)
}

func TestColorsWithoutData(t *testing.T) {
	cfg, dump := workspace(t, "")
	_, err := run(t, "--config", cfg, "import", dump)
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "colors", "-d", "1840")
	require.NoError(t, err)
	assert.Contains(t, out, "No color data")
}

func TestColorsWithEnrichment(t *testing.T) {
	dir := t.TempDir()
	palette := filepath.Join(dir, "colors.json")
	require.NoError(t, os.WriteFile(palette, []byte(`[
		{"id":"a","colorData":[{"hex":"#AA0000","population":30},{"hex":"#0000aa","population":10}]},
		{"id":"b","colorData":[{"hex":"#aa0000","population":5}]}
	]`), 0o644))
	cfg, dump := workspace(t, fmt.Sprintf("enrichment:\n  colors: %s\n", palette))

	_, err := run(t, "--config", cfg, "import", dump)
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "colors", "--decade", "1840")
	require.NoError(t, err)
	assert.Contains(t, out, "#aa0000        35")
	assert.Contains(t, out, "#0000aa        10")
}

func TestFetchFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"rowCount": 1, "rows": []any{}}
		if r.URL.Query().Has("start") {
			body["rows"] = []any{map[string]any{
				"id":    "z-" + r.URL.Query().Get("q"),
				"title": "2c Jackson",
				"content": map[string]any{
					"indexedStructured": map[string]any{"date": []string{"1860s"}, "topic": []string{"U.S. Stamps"}},
				},
			}}
		}
		json.NewEncoder(w).Encode(map[string]any{"response": body})
	}))
	defer srv.Close()

	cfg, _ := workspace(t, fmt.Sprintf(`api:
  base_url: %s
  requests_per_second: 0
  searches: ["one", "two"]
`, srv.URL))

	out, err := run(t, "--config", cfg, "fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "records seen: 2")
	assert.Contains(t, out, "stored:       2")

	out, err = run(t, "--config", cfg, "groups", "--decade", "1860")
	require.NoError(t, err)
	assert.Contains(t, out, "Andrew Jackson")
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "decades")
	assert.Error(t, err)
}
