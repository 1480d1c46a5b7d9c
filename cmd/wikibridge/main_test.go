package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Migoreng/wikipedia-multilingual-links/internal/pairfile"
	"github.com/Migoreng/wikipedia-multilingual-links/pkg/langtable"
)

func parse(t *testing.T, args ...string) (*config, error) {
	t.Helper()
	fs, cfg, policy, namesFile := newFlagSet("test")
	err := parseConfig(fs, cfg, policy, namesFile, args)
	return cfg, err
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parse(t, "ja", "en")
	require.NoError(t, err)

	assert.Equal(t, []string{"ja", "en"}, cfg.Languages)
	assert.Equal(t, "la", cfg.Bridge)
	assert.Equal(t, langtable.JoinInner, cfg.Policy)
	assert.Equal(t, "ja_en_la_table.csv", cfg.Output)
	assert.Equal(t, ',', int32(cfg.delimiter()))
}

func TestParseConfigTSVOutputName(t *testing.T) {
	cfg, err := parse(t, "--tsv", "--bridge", "en", "de", "fr")
	require.NoError(t, err)

	assert.Equal(t, "de_fr_en_table.tsv", cfg.Output)
	assert.Equal(t, '\t', int32(cfg.delimiter()))
}

func TestParseConfigNormalizesCodes(t *testing.T) {
	cfg, err := parse(t, "--bridge", " LA ", "JA", "En")
	require.NoError(t, err)

	assert.Equal(t, []string{"ja", "en"}, cfg.Languages)
	assert.Equal(t, "la", cfg.Bridge)
}

func TestParseConfigRejectsBadSets(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"single language", []string{"ja"}},
		{"bridge requested as column", []string{"--bridge", "la", "ja", "la"}},
		{"duplicate language", []string{"ja", "ja"}},
		{"unknown policy", []string{"--policy", "full", "ja", "en"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.args...)
			assert.ErrorIs(t, err, langtable.ErrInvalidConfig)
		})
	}
}

func TestRunMergeFromPairFiles(t *testing.T) {
	dir := t.TempDir()

	writePairs := func(lang string, pairs [][2]string) {
		w, err := pairfile.Create(pairfile.Path(dir, lang, "la"))
		require.NoError(t, err)
		for _, p := range pairs {
			require.NoError(t, w.Add(p[0], p[1]))
		}
		require.NoError(t, w.Close())
	}
	writePairs("ja", [][2]string{{"木", "Arbor"}, {"少女", "Puella"}})
	writePairs("en", [][2]string{{"Girl", "Puella"}})

	out := filepath.Join(dir, "table.csv")
	cfg, err := parse(t, "--pairs-dir", dir, "--output", out, "--quiet", "ja", "en")
	require.NoError(t, err)

	require.NoError(t, runMerge(cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "ja,en,la\n少女,Girl,Puella\n", string(data))
}

func TestRunMergeNoCorrespondence(t *testing.T) {
	dir := t.TempDir()

	w, err := pairfile.Create(pairfile.Path(dir, "ja", "la"))
	require.NoError(t, err)
	require.NoError(t, w.Add("木", "Arbor"))
	require.NoError(t, w.Close())

	// en has no pair file at all: MissingLanguageData degrades to an
	// empty map, which makes the inner intersection empty.
	out := filepath.Join(dir, "table.csv")
	cfg, err := parse(t, "--pairs-dir", dir, "--output", out, "--quiet", "ja", "en")
	require.NoError(t, err)

	err = runMerge(cfg)
	require.ErrorIs(t, err, langtable.ErrNoCorrespondence)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no table file on a failed join")
}
