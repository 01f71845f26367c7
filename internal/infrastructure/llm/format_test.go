package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsPipeline/internal/infrastructure/htmltext"
)

func TestEnsureParagraphsKeepsMarkup(t *testing.T) {
	t.Parallel()

	in := "<p>Already formatted.</p><p>Second.</p>"
	assert.Equal(t, in, EnsureParagraphs(in))
	assert.Equal(t, "", EnsureParagraphs("  \n "))
}

func TestEnsureParagraphsGroupsSentences(t *testing.T) {
	t.Parallel()

	in := "Satu kalimat. Dua kalimat! Tiga kalimat? Empat \"kutipan.\" Lima kalimat. Enam kalimat. Tujuh tanpa titik"
	out := EnsureParagraphs(in)

	assert.Equal(t, 3, strings.Count(out, "<p>"))
	assert.True(t, strings.HasPrefix(out, "<p>Satu kalimat. Dua kalimat! Tiga kalimat?</p>"))
	assert.Contains(t, out, "<p>Empat \"kutipan.\" Lima kalimat. Enam kalimat.</p>")
	assert.True(t, strings.HasSuffix(out, "<p>Tujuh tanpa titik</p>"))
}

func TestEnsureParagraphsBlankLineBlocks(t *testing.T) {
	t.Parallel()

	in := "First paragraph\nwraps here.\n\n<h2>Heading</h2>\n\n\nLast one."
	out := EnsureParagraphs(in)
	assert.Equal(t, "<p>First paragraph wraps here.</p>\n<h2>Heading</h2>\n<p>Last one.</p>", out)
}

func TestEnsureParagraphsPreservesText(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"One. Two. Three. Four. Five.",
		"No punctuation at all in this block",
		"Harga naik 3.5 persen. Menurut BI, inflasi terkendali... Apa selanjutnya? Kita tunggu.",
		"Para A.\n\nPara B with two sentences. Yes.\n\nPara C.",
	}
	for _, in := range inputs {
		out := EnsureParagraphs(in)
		assert.Equal(t, htmltext.Collapse(in), htmltext.PlainText(out), "input=%q", in)
	}
}

func TestEnsureParagraphsWrapsInlineMarkup(t *testing.T) {
	t.Parallel()

	single := "<strong>Jakarta</strong> - Banjir melanda ibu kota. Warga mengungsi. Hujan deras sejak pagi. Sekolah diliburkan."
	out := EnsureParagraphs(single)
	assert.Equal(t, "<p><strong>Jakarta</strong> - Banjir melanda ibu kota. Warga mengungsi. Hujan deras sejak pagi.</p>\n<p>Sekolah diliburkan.</p>", out)

	blocks := "<b>Breaking:</b> prices rose.\n\n<em>Analysts</em> expect more.\n\n<ul><li>Rice</li></ul>"
	assert.Equal(t, "<p><b>Breaking:</b> prices rose.</p>\n<p><em>Analysts</em> expect more.</p>\n<ul><li>Rice</li></ul>", EnsureParagraphs(blocks))

	assert.Equal(t, "<p><a href=\"https://antaranews.com\">Antara</a> melaporkan.</p>", EnsureParagraphs(`<a href="https://antaranews.com">Antara</a> melaporkan.`))
}
