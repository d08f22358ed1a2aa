package genome

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMappingEstablishAndInsert(t *testing.T) {
	m := NewMapping()
	g1 := m.EstablishGenome("genome1")
	g2 := m.EstablishGenome("genome2")
	m.Insert("seq1", g1)
	m.Insert("seq2", g2)

	idx, ok := m.GenomeIndexOfContig("seq1")
	assert.True(t, ok)
	assert.Equal(t, g1, idx)

	idx, ok = m.GenomeIndexOfContig("seq2")
	assert.True(t, ok)
	assert.Equal(t, g2, idx)

	_, ok = m.GenomeIndexOfContig("unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"genome1", "genome2"}, m.Genomes())
	assert.Equal(t, 2, m.NumGenomes())
}

func TestExtractGenome(t *testing.T) {
	name, err := ExtractGenome("genome2~seq1", '~')
	assert.NoError(t, err)
	assert.Equal(t, "genome2", name)
}

func TestExtractGenomeMissingSeparatorIsFatal(t *testing.T) {
	_, err := ExtractGenome("seq1", '~')
	assert.Error(t, err)
}

func TestExtractGenomeEmptyPrefix(t *testing.T) {
	name, err := ExtractGenome("~seq1", '~')
	assert.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestLoadMappingFromFile(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	defPath := filepath.Join(tmpdir, "genomes.tsv")
	contents := "# contig\tgenome\n\nseq1\tgenome1\nseq2\tgenome1\nseq3\tgenome2\n"
	assert.NoError(t, os.WriteFile(defPath, []byte(contents), 0644))

	f, err := os.Open(defPath)
	assert.NoError(t, err)
	defer f.Close()

	m, err := LoadMapping(f)
	assert.NoError(t, err)
	assert.Equal(t, []string{"genome1", "genome2"}, m.Genomes())

	idx, ok := m.GenomeIndexOfContig("seq1")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = m.GenomeIndexOfContig("seq3")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestLoadMappingRejectsMalformedLine(t *testing.T) {
	_, err := LoadMapping(strings.NewReader("seq1\tgenome1\tgenome2\n"))
	assert.Error(t, err)
}
