package sse

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

func TestEncoderWireFormat(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "content event",
			event: Content("hello"),
			want:  "data: {\"type\":\"content\",\"content\":\"hello\"}\n\n",
		},
		{
			name:  "done event has no other fields",
			event: Done(),
			want:  "data: {\"type\":\"done\"}\n\n",
		},
		{
			name:  "error event carries the message",
			event: Error("something broke"),
			want:  "data: {\"type\":\"error\",\"content\":\"something broke\"}\n\n",
		},
		{
			name: "sources event with page numbers",
			event: Sources([]models.RetrievedSource{
				{PageNumber: 15, Content: "market size"},
				{PageNumber: 25, Content: "growth rate"},
			}),
			want: "data: {\"type\":\"sources\",\"sources\":[{\"page_number\":15,\"content\":\"market size\"},{\"page_number\":25,\"content\":\"growth rate\"}]}\n\n",
		},
		{
			name: "unknown page serializes as N/A",
			event: Sources([]models.RetrievedSource{
				{PageNumber: 0, Content: "unpaged"},
			}),
			want: "data: {\"type\":\"sources\",\"sources\":[{\"page_number\":\"N/A\",\"content\":\"unpaged\"}]}\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			enc := NewEncoder(rec)
			require.NoError(t, enc.Write(tt.event))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestEncoderFlushesPerEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	enc := NewEncoder(rec)
	require.NoError(t, enc.Write(Content("a")))
	assert.True(t, rec.Flushed)
}
