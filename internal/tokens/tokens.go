// Package tokens measures and trims input text with the GPT-2 byte-level BPE
// vocabulary (r50k_base), the vocabulary BART-family summarizers use.
package tokens

import (
	"fmt"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts and truncates text by BPE tokens.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter loads the r50k_base codec.
func NewCounter() (*Counter, error) {
	enc, err := tokenizer.Get(tokenizer.R50kBase)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &Counter{codec: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Truncate keeps at most max tokens of text and reports the original token
// count. max <= 0 returns text unchanged. A rune split by the token boundary
// is dropped, so the result is always a valid UTF-8 prefix of text.
func (c *Counter) Truncate(text string, max int) (string, int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return "", 0, err
	}
	n := len(ids)
	if max <= 0 || n <= max {
		return text, n, nil
	}
	out, err := c.codec.Decode(ids[:max])
	if err != nil {
		return "", n, err
	}
	for len(out) > 0 && !utf8.ValidString(out) {
		out = out[:len(out)-1]
	}
	return out, n, nil
}
