package chunker

import (
	"strings"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

const unitSeparator = "\n"

// Chunker splits page-tagged text into fixed-size segments with a fixed
// overlap between neighbours, keeping the page numbers each segment spans.
// The split uses a hard character stride so the overlap region is exact
// and the chunk sequence reconstructs the source text.
type Chunker struct {
	maxChars     int
	overlapChars int
}

func New(maxChars, overlapChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = 1000
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}
	return &Chunker{maxChars: maxChars, overlapChars: overlapChars}
}

type pageSpan struct {
	start int
	end   int
	page  int
}

// Chunk produces the ordered chunk sequence for the given page units.
// Chunks may cross page boundaries; each records every page its span
// touches, first page first. An empty input yields an empty sequence.
func (c *Chunker) Chunk(units []models.PageUnit) []models.Chunk {
	if len(units) == 0 {
		return nil
	}

	var content strings.Builder
	var spans []pageSpan
	for i, unit := range units {
		if i > 0 {
			content.WriteString(unitSeparator)
		}
		start := content.Len()
		content.WriteString(unit.Text)
		spans = append(spans, pageSpan{start: start, end: content.Len(), page: unit.Number})
	}

	text := content.String()
	stride := c.maxChars - c.overlapChars

	var chunks []models.Chunk
	for start := 0; start < len(text); start += stride {
		end := start + c.maxChars
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, models.Chunk{
			Content: text[start:end],
			Pages:   pagesIn(spans, start, end),
			Ordinal: len(chunks),
		})
		if end == len(text) {
			break
		}
	}
	return chunks
}

func pagesIn(spans []pageSpan, start, end int) []int {
	var pages []int
	for _, s := range spans {
		if s.start < end && s.end > start {
			pages = append(pages, s.page)
		}
	}
	return pages
}

// MaxChars reports the configured chunk size.
func (c *Chunker) MaxChars() int { return c.maxChars }

// OverlapChars reports the configured overlap.
func (c *Chunker) OverlapChars() int { return c.overlapChars }
