package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/friscolabs/frisco-mcp/pkg/protocol"
)

func echoTool() (protocol.Tool, Handler) {
	tool := protocol.Tool{
		Name:        "echo",
		Description: "Echo back text",
		InputSchema: StringSchema(map[string]string{
			"text": "Text to echo back",
		}, "text"),
	}
	handler := func(_ context.Context, args map[string]interface{}) (string, error) {
		text, _ := args["text"].(string)
		return text, nil
	}
	return tool, handler
}

func reverseTool() (protocol.Tool, Handler) {
	tool := protocol.Tool{
		Name:        "reverse",
		Description: "Reverse the order of characters in text",
		InputSchema: StringSchema(map[string]string{
			"text": "Text to reverse",
		}, "text"),
	}
	handler := func(_ context.Context, args map[string]interface{}) (string, error) {
		text, _ := args["text"].(string)
		return reverseString(text), nil
	}
	return tool, handler
}

// reverseString reverses by rune so multi-byte characters survive
func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func wordcountTool() (protocol.Tool, Handler) {
	tool := protocol.Tool{
		Name:        "wordcount",
		Description: "Count words, characters, and lines in text",
		InputSchema: StringSchema(map[string]string{
			"text": "Text to analyze",
		}, "text"),
	}
	handler := func(_ context.Context, args map[string]interface{}) (string, error) {
		text, _ := args["text"].(string)
		counts := CountText(text)
		return counts.String(), nil
	}
	return tool, handler
}

// TextCounts holds the wordcount metrics
type TextCounts struct {
	Words             int
	Characters        int
	CharactersNoSpace int
	Lines             int
}

// CountText computes word, character and line counts. Words are
// whitespace-delimited tokens; character counts are in runes, the
// no-space variant excluding space characters; lines are
// newline-delimited segments, a trailing newline not starting a new one.
func CountText(text string) TextCounts {
	counts := TextCounts{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
	}
	counts.CharactersNoSpace = counts.Characters - strings.Count(text, " ")

	if text != "" {
		segments := strings.Split(text, "\n")
		if segments[len(segments)-1] == "" {
			segments = segments[:len(segments)-1]
		}
		counts.Lines = len(segments)
	}
	return counts
}

// String formats the counts as the tool's text output
func (c TextCounts) String() string {
	return fmt.Sprintf(
		"Words: %d\nCharacters (with spaces): %d\nCharacters (without spaces): %d\nLines: %d",
		c.Words, c.Characters, c.CharactersNoSpace, c.Lines)
}
