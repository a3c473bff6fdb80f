package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

const (
	TypeSources = "sources"
	TypeContent = "content"
	TypeDone    = "done"
	TypeError   = "error"
)

// Event is the strict internal stream event. Everything crossing the
// boundary between generation and transport is one of these; there is no
// pass-through of raw upstream data.
type Event struct {
	Type    string                   `json:"type"`
	Content string                   `json:"content,omitempty"`
	Sources []models.RetrievedSource `json:"sources,omitempty"`
}

func Sources(sources []models.RetrievedSource) Event {
	return Event{Type: TypeSources, Sources: sources}
}

func Content(text string) Event {
	return Event{Type: TypeContent, Content: text}
}

func Done() Event {
	return Event{Type: TypeDone}
}

func Error(message string) Event {
	return Event{Type: TypeError, Content: message}
}

// Encoder serializes events as SSE frames: `data: <json>\n\n`, flushed
// per event so the client sees increments as they happen.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

func NewEncoder(w io.Writer) *Encoder {
	flusher, _ := w.(http.Flusher)
	return &Encoder{w: w, flusher: flusher}
}

func (e *Encoder) Write(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
