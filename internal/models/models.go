package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PageUnit is one page of extracted source text. Number is 1-based;
// 0 means the format carries no page structure (DOCX).
type PageUnit struct {
	Source string
	Number int
	Text   string
}

// Chunk is a bounded-length segment of the document with page provenance.
// Pages lists every page the chunk's span touches, in order; the first
// entry is the citation page. Ordinal is the chunk's position in the
// original split order.
type Chunk struct {
	Content string
	Pages   []int
	Ordinal int
}

// Page returns the citation page for the chunk, 0 if unknown.
func (c Chunk) Page() int {
	if len(c.Pages) == 0 {
		return 0
	}
	return c.Pages[0]
}

// PageRef serializes as the page number, or "N/A" when the page is unknown.
type PageRef int

func (p PageRef) MarshalJSON() ([]byte, error) {
	if p <= 0 {
		return json.Marshal("N/A")
	}
	return json.Marshal(int(p))
}

func (p *PageRef) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "N/A" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*p = PageRef(n)
	return nil
}

// RetrievedSource is one retrieval hit surfaced to the client and stored
// alongside the assistant turn that used it.
type RetrievedSource struct {
	PageNumber PageRef `json:"page_number"`
	Content    string  `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one entry in a conversation history. Sources is set
// only on assistant turns produced via the retrieval path.
type ConversationTurn struct {
	Role    string            `json:"role"`
	Content string            `json:"content"`
	Sources []RetrievedSource `json:"sources,omitempty"`
}
