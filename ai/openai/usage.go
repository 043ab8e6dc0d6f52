package openai

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used when the model has no registered tokenizer.
const fallbackEncoding = "cl100k_base"

// tokenCounter estimates token counts for replies whose transport does
// not report usage, keeping the input+output accounting observable for
// streamed turns.
type tokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func newTokenCounter(model string) *tokenCounter {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			slog.Default().Warn("no tokenizer available, falling back to length heuristic", "model", model, "err", err)
			encoding = nil
		}
	}
	return &tokenCounter{encoding: encoding}
}

// count returns the token count of text. Without a tokenizer it falls
// back to the common four-characters-per-token heuristic.
func (c *tokenCounter) count(text string) int {
	if text == "" {
		return 0
	}
	if c.encoding == nil {
		return (len(text) + 3) / 4
	}
	return len(c.encoding.Encode(text, nil, nil))
}
