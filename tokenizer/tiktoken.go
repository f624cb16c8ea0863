package tokenizer

import (
	"fmt"

	"github.com/hupe1980/agentswarm/core"
	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding covers model names tiktoken does not know about.
const fallbackEncoding = "cl100k_base"

// TiktokenCounter counts tokens with the BPE encoding matching an OpenAI
// model name. Unknown models fall back to cl100k_base.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a token counter for the given model name.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("load encoding: %w", err)
		}
	}

	return &TiktokenCounter{encoding: enc}, nil
}

// CountText returns the token count of a single string.
func (c *TiktokenCounter) CountText(text string) int {
	if text == "" {
		return 0
	}

	return len(c.encoding.Encode(text, nil, nil))
}

// CountMessages returns the token count of a full request transcript.
func (c *TiktokenCounter) CountMessages(messages []core.Message) int {
	return countMessages(c, messages)
}
