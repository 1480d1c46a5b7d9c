package langtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageMapFirstSeenWins(t *testing.T) {
	m := NewLanguageMap("ja")

	require.True(t, m.Add("treeA", "arbor"))
	require.False(t, m.Add("treeB", "arbor"))

	assert.Equal(t, map[string]string{"arbor": "treeA"}, m.Titles)
	assert.Equal(t, 1, m.Conflicts)
}

func TestLanguageMapDuplicatePairIsNotAConflict(t *testing.T) {
	m := NewLanguageMap("ja")

	require.True(t, m.Add("treeA", "arbor"))
	require.False(t, m.Add("treeA", "arbor"))

	assert.Equal(t, 0, m.Conflicts)
	assert.Equal(t, 1, m.Len())
}

func TestLanguageMapIgnoresEmptyTitles(t *testing.T) {
	m := NewLanguageMap("en")

	assert.False(t, m.Add("", "arbor"))
	assert.False(t, m.Add("tree", ""))
	assert.False(t, m.Add("  ", "arbor"))
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Conflicts)
}

func TestBuildIdempotentWithoutConflicts(t *testing.T) {
	pairs := []LinkPair{
		{Local: "Baum", Bridge: "arbor"},
		{Local: "Mädchen", Bridge: "puella"},
		{Local: "Wasser", Bridge: "aqua"},
	}
	reordered := []LinkPair{pairs[2], pairs[0], pairs[1]}

	a := Build("de", pairs)
	b := Build("de", reordered)

	assert.Equal(t, a.Titles, b.Titles)
	assert.Equal(t, 0, a.Conflicts)
}

func TestKeyNormalizationUnifiesIngestRoutes(t *testing.T) {
	m := NewLanguageMap("en")

	// page dumps use underscores, langlinks use spaces.
	require.True(t, m.Add("Common_tree", "Arbor_magna"))
	require.False(t, m.Add("Common_tree", "Arbor magna"))

	assert.Equal(t, 0, m.Conflicts, "same pair through both spellings must not count as a conflict")
	assert.Equal(t, "Common tree", m.Titles["Arbor magna"])
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "Arbor magna", NormalizeKey("Arbor_magna"))
	assert.Equal(t, "A & B", NormalizeKey("A &amp; B"))
	assert.Equal(t, "a b", NormalizeKey("  a \t b  "))

	// NFC: decomposed e + combining acute equals the composed form.
	assert.Equal(t, NormalizeKey("Caf\u00e9"), NormalizeKey("Cafe\u0301"))
}

func TestCleanTitleKeepsCaseAndUnicode(t *testing.T) {
	assert.Equal(t, "Ünïcode Title", CleanTitle("Ünïcode_Title"))
	assert.Equal(t, "abc", CleanTitle("abc"))
	assert.Equal(t, "", CleanTitle(""))
}
