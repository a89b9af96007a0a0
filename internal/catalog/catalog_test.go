package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.Greater(t, c.Len(), 0)

	p, ok := c.Lookup("two-sum")
	require.True(t, ok)
	assert.Equal(t, "Two Sum", p.Name)
	assert.NotEmpty(t, p.Description)
}

func TestParse_YAML(t *testing.T) {
	c, err := Parse([]byte(`
cp_problems:
  - id: a
    name: Alpha
    description: first
  - id: b
    name: Beta
    description: ""
`))
	require.NoError(t, err)

	problems := c.Problems()
	require.Len(t, problems, 2)
	assert.Equal(t, "a", problems[0].ID)
	assert.Equal(t, "Beta", problems[1].Name)
	assert.Empty(t, problems[1].Description)
}

func TestParse_JSON(t *testing.T) {
	c, err := Parse([]byte(`{"cp_problems":[{"id":"x","name":"X","description":"d"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestParse_EmptyCatalog(t *testing.T) {
	for _, doc := range []string{`cp_problems: []`, `{}`} {
		c, err := Parse([]byte(doc))
		require.NoError(t, err, doc)
		assert.Zero(t, c.Len())
		assert.NotNil(t, c.Problems())
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing id", `{"cp_problems":[{"name":"X","description":"d"}]}`, "invalid catalog"},
		{"blank name", `{"cp_problems":[{"id":"x","name":"   ","description":"d"}]}`, "invalid catalog"},
		{"duplicate id", `{"cp_problems":[{"id":"x","name":"X","description":""},{"id":"x","name":"Y","description":""}]}`, "duplicate problem id"},
		{"not a document", `cp_problems: 7`, "decode catalog"},
		{"malformed", `{"cp_problems": [`, "decode catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_NormalizesIDs(t *testing.T) {
	decomposed := "cafe\u0301" // e + combining acute accent
	composed := "caf\u00e9"

	doc := "cp_problems:\n  - id: \"" + decomposed + "\"\n    name: \"" + decomposed + "\"\n    description: d\n"
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	p, ok := c.Lookup(composed)
	require.True(t, ok)
	assert.Equal(t, composed, p.ID)
	assert.Equal(t, composed, p.Name)

	_, ok = c.Lookup(decomposed)
	assert.True(t, ok, "lookup normalizes its argument too")
}

func TestParse_DuplicateAfterNormalization(t *testing.T) {
	doc := "cp_problems:\n" +
		"  - {id: \"cafe\u0301\", name: A, description: d}\n" +
		"  - {id: \"caf\u00e9\", name: B, description: d}\n"
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate problem id")
}

func TestProblems_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ps := c.Problems()
	ps[0].Name = "mutated"

	assert.NotEqual(t, "mutated", c.Problems()[0].Name)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cp_problems":[{"id":"x","name":"X","description":""}]}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
