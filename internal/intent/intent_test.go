package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/llmservice"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Complete(context.Context, []llms.MessageContent, ...llms.CallOption) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeGenerator) Stream(context.Context, []llms.MessageContent, ...llms.CallOption) (<-chan llmservice.StreamToken, error) {
	panic("classifier must not stream")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  Intent
	}{
		{name: "exact greeting", reply: "GREETING", want: Greeting},
		{name: "exact search", reply: "SEARCH", want: Search},
		{name: "lowercase greeting", reply: "greeting", want: Greeting},
		{name: "padded output", reply: "  GREETING \n", want: Greeting},
		{name: "unexpected output defaults to search", reply: "I think this is a greeting", want: Search},
		{name: "empty output defaults to search", reply: "", want: Search},
		{name: "capability failure defaults to search", err: errors.New("quota exceeded"), want: Search},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeGenerator{reply: tt.reply, err: tt.err})
			assert.Equal(t, tt.want, c.Classify(context.Background(), "Hello there"))
		})
	}
}

func TestClassifyIsRepeatable(t *testing.T) {
	gen := &fakeGenerator{reply: "GREETING"}
	c := NewClassifier(gen)
	first := c.Classify(context.Background(), "Hi!")
	second := c.Classify(context.Background(), "Hi!")
	assert.Equal(t, first, second)
	assert.Equal(t, 2, gen.calls)
}
