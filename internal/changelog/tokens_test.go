package changelog

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClipToTokensKeepsShortText(t *testing.T) {
	oldEstimate := estimateTokensFunc
	estimateTokensFunc = func(text string) int { return len(text) / 10 }
	defer func() { estimateTokensFunc = oldEstimate }()

	text := "short diff"
	if got := clipToTokens(text, 100); got != text {
		t.Fatalf("short text should pass through unchanged, got %q", got)
	}
	if got := clipToTokens(text, 0); got != text {
		t.Fatalf("zero budget should disable clipping, got %q", got)
	}
}

func TestClipToTokensRespectsBudget(t *testing.T) {
	oldEstimate := estimateTokensFunc
	estimateTokensFunc = func(text string) int { return len(text) / 10 }
	defer func() { estimateTokensFunc = oldEstimate }()

	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("+added line\n")
	}
	text := b.String()

	clipped := clipToTokens(text, 20)
	if clipped == text {
		t.Fatal("expected text to be clipped")
	}
	if !strings.HasSuffix(clipped, truncationMarker) {
		t.Fatalf("clipped text should end with the truncation marker, got %q", clipped[len(clipped)-40:])
	}
	body := strings.TrimSuffix(clipped, truncationMarker)
	if tokens := estimateTokensFunc(body); tokens > 20 {
		t.Fatalf("clipped body estimates %d tokens, over the budget", tokens)
	}
}

func TestClipToTokensDenseTokenText(t *testing.T) {
	oldEstimate := estimateTokensFunc
	// CJK text tokenizes at roughly one token per three bytes, so the
	// chars-per-token heuristic overshoots the text length.
	estimateTokensFunc = func(text string) int { return len(text) / 3 }
	defer func() { estimateTokensFunc = oldEstimate }()

	text := strings.Repeat("変更", 50)

	clipped := clipToTokens(text, 80)
	if !strings.HasSuffix(clipped, truncationMarker) {
		t.Fatalf("clipped text should end with the truncation marker, got %q", clipped)
	}
	body := strings.TrimSuffix(clipped, truncationMarker)
	if !utf8.ValidString(body) {
		t.Fatalf("clipped body contains an invalid UTF-8 sequence: %q", body)
	}
	if tokens := estimateTokensFunc(body); tokens > 80 {
		t.Fatalf("clipped body estimates %d tokens, over the budget", tokens)
	}
}
