package changelog

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const approxCharsPerToken = 4

const truncationMarker = "\n... [diff truncated]"

var (
	tokenEncoderOnce sync.Once
	tokenEncoder     *tiktoken.Tiktoken

	estimateTokensFunc = defaultEstimateTokens
)

func estimateTokens(text string) int {
	return estimateTokensFunc(text)
}

func defaultEstimateTokens(text string) int {
	enc := getTokenEncoder()
	if enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return len(text) / approxCharsPerToken
}

func getTokenEncoder() *tiktoken.Tiktoken {
	tokenEncoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenEncoder = enc
		}
	})
	return tokenEncoder
}

// clipToTokens truncates text so its estimated token count stays within
// budget. A budget of zero or less disables clipping.
func clipToTokens(text string, budget int) string {
	if budget <= 0 || estimateTokens(text) <= budget {
		return text
	}
	limit := runeBoundary(text, minInt(budget*approxCharsPerToken, len(text)))
	for limit > 0 && estimateTokens(text[:limit]) > budget {
		limit = runeBoundary(text, limit-maxInt(1, limit/10))
	}
	clipped := text[:limit]
	// Cut at a line boundary when one is near.
	if idx := strings.LastIndexByte(clipped, '\n'); idx > limit/2 {
		clipped = clipped[:idx]
	}
	return clipped + truncationMarker
}

// runeBoundary steps limit back to the start of a UTF-8 sequence so a
// slice at limit never splits a rune.
func runeBoundary(text string, limit int) int {
	for limit > 0 && limit < len(text) && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
