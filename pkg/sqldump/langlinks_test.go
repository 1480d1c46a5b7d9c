package sqldump

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct{ local, bridge string }

func extract(t *testing.T, bridge, langlinks, pages string) ([]pair, *ExtractStats) {
	t.Helper()
	ex := &Extractor{Bridge: bridge}
	var pairs []pair
	stats, err := ex.Extract(strings.NewReader(langlinks), strings.NewReader(pages),
		func(local, bridge string) error {
			pairs = append(pairs, pair{local, bridge})
			return nil
		})
	require.NoError(t, err)
	return pairs, stats
}

func TestExtractJoinsLangLinksAndPages(t *testing.T) {
	langlinks := "INSERT INTO `langlinks` VALUES (10,'la','Arbor'),(11,'la','Aqua'),(12,'fr','Eau');\n"
	pages := "INSERT INTO `page` VALUES (10,0,'Tree'),(11,0,'Water'),(12,0,'Water_fr');\n"

	pairs, stats := extract(t, "la", langlinks, pages)

	assert.Equal(t, []pair{{"Tree", "Arbor"}, {"Water", "Aqua"}}, pairs)
	assert.Equal(t, 2, stats.Linked)
	assert.Equal(t, 2, stats.Pairs)
}

func TestExtractFiltersNamespace(t *testing.T) {
	langlinks := "INSERT INTO `langlinks` VALUES (10,'la','Arbor'),(20,'la','Aqua');\n"
	// Page 20 is a talk page (namespace 1), not an article.
	pages := "INSERT INTO `page` VALUES (10,0,'Tree'),(20,1,'Talk:Water');\n"

	pairs, _ := extract(t, "la", langlinks, pages)

	assert.Equal(t, []pair{{"Tree", "Arbor"}}, pairs)
}

func TestExtractFirstLinkWinsPerPage(t *testing.T) {
	// A page occasionally carries two links into the same edition; document
	// order decides, matching the map builder's first-seen policy.
	langlinks := "INSERT INTO `langlinks` VALUES (10,'la','Arbor'),(10,'la','Arbor_vetus');\n"
	pages := "INSERT INTO `page` VALUES (10,0,'Tree');\n"

	pairs, _ := extract(t, "la", langlinks, pages)

	assert.Equal(t, []pair{{"Tree", "Arbor"}}, pairs)
}

func TestExtractNoBridgeLinksSkipsPageScan(t *testing.T) {
	langlinks := "INSERT INTO `langlinks` VALUES (10,'fr','Eau');\n"
	pages := "INSERT INTO `page` VALUES (10,0,'Water');\n"

	pairs, stats := extract(t, "la", langlinks, pages)

	assert.Empty(t, pairs)
	assert.Equal(t, 0, stats.Linked)
	assert.Equal(t, 0, stats.Pages.Lines, "page dump must not be scanned when nothing links")
}

func TestExtractShortTuplesIgnored(t *testing.T) {
	langlinks := "INSERT INTO `langlinks` VALUES (10,'la'),(11,'la','Aqua');\n"
	pages := "INSERT INTO `page` VALUES (11,0,'Water');\n"

	pairs, _ := extract(t, "la", langlinks, pages)

	assert.Equal(t, []pair{{"Water", "Aqua"}}, pairs)
}

func TestExtractProgressPhases(t *testing.T) {
	// Enough filler lines to trigger at least one progress call per phase.
	filler := strings.Repeat("-- filler\n", progressStep)
	langlinks := filler + "INSERT INTO `langlinks` VALUES (10,'la','Arbor');\n"
	pages := filler + "INSERT INTO `page` VALUES (10,0,'Tree');\n"

	phases := make(map[string]bool)
	ex := &Extractor{
		Bridge:   "la",
		Progress: func(phase string, lines, tuples int) { phases[phase] = true },
	}
	_, err := ex.Extract(strings.NewReader(langlinks), strings.NewReader(pages),
		func(local, bridge string) error { return nil })
	require.NoError(t, err)

	assert.True(t, phases["langlinks"])
	assert.True(t, phases["page"])
}
