package fixtures_test

import (
	"testing"

	"campaign-relay/internal/utils/text"
	"campaign-relay/tests/fixtures"
)

// TestGenerateShortBrief tests that short brief generation produces correct length
func TestGenerateShortBrief(t *testing.T) {
	brief := fixtures.GenerateShortBrief()

	length := text.CountRunes(brief)
	expectedMin := 450 // 500 - 10%
	expectedMax := 550 // 500 + 10%

	if length < expectedMin || length > expectedMax {
		t.Errorf("Expected length between %d and %d, got %d", expectedMin, expectedMax, length)
	}

	// Verify it's not empty
	if brief == "" {
		t.Error("Generated brief is empty")
	}
}

// TestGenerateMediumBrief tests that medium brief generation produces correct length
func TestGenerateMediumBrief(t *testing.T) {
	brief := fixtures.GenerateMediumBrief()

	length := text.CountRunes(brief)
	expectedMin := 1800 // 2000 - 10%
	expectedMax := 2200 // 2000 + 10%

	if length < expectedMin || length > expectedMax {
		t.Errorf("Expected length between %d and %d, got %d", expectedMin, expectedMax, length)
	}

	if brief == "" {
		t.Error("Generated brief is empty")
	}
}

// TestGenerateLongBrief tests that long brief generation produces correct length
func TestGenerateLongBrief(t *testing.T) {
	brief := fixtures.GenerateLongBrief()

	length := text.CountRunes(brief)
	expectedMin := 9000  // 10000 - 10%
	expectedMax := 11000 // 10000 + 10%

	if length < expectedMin || length > expectedMax {
		t.Errorf("Expected length between %d and %d, got %d", expectedMin, expectedMax, length)
	}

	if brief == "" {
		t.Error("Generated brief is empty")
	}
}

// TestGenerateBriefWithEmoji tests that emoji brief contains emoji characters
func TestGenerateBriefWithEmoji(t *testing.T) {
	brief := fixtures.GenerateBriefWithEmoji()

	if brief == "" {
		t.Error("Generated brief is empty")
	}

	// Check for emoji presence (simple heuristic)
	hasEmoji := false
	for _, r := range brief {
		// Emoji ranges (simplified)
		if r >= 0x1F300 && r <= 0x1F9FF { // Miscellaneous Symbols and Pictographs, Emoticons, etc.
			hasEmoji = true
			break
		}
	}

	if !hasEmoji {
		t.Error("Brief with emoji should contain at least one emoji character")
	}
}

// TestGenerateBrief_Japanese tests Japanese brief generation
func TestGenerateBrief_Japanese(t *testing.T) {
	brief := fixtures.GenerateBrief(fixtures.BriefOptions{
		Length:       1000,
		Language:     "japanese",
		IncludeEmoji: false,
	})

	length := text.CountRunes(brief)

	if length < 900 || length > 1100 {
		t.Errorf("Expected length around 1000 (±10%%), got %d", length)
	}

	// Check for Japanese characters
	hasJapanese := false
	for _, r := range brief {
		if (r >= 0x3040 && r <= 0x309F) || // Hiragana
			(r >= 0x30A0 && r <= 0x30FF) || // Katakana
			(r >= 0x4E00 && r <= 0x9FFF) { // Kanji
			hasJapanese = true
			break
		}
	}

	if !hasJapanese {
		t.Error("Japanese brief should contain Japanese characters")
	}
}

// TestGenerateBrief_English tests English brief generation
func TestGenerateBrief_English(t *testing.T) {
	brief := fixtures.GenerateBrief(fixtures.BriefOptions{
		Length:       1000,
		Language:     "english",
		IncludeEmoji: false,
	})

	length := text.CountRunes(brief)

	if length < 900 || length > 1100 {
		t.Errorf("Expected length around 1000 (±10%%), got %d", length)
	}

	if brief == "" {
		t.Error("Generated brief is empty")
	}
}

// TestGenerateBrief_DifferentLengths tests various target lengths
func TestGenerateBrief_DifferentLengths(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{"Very short", 200},
		{"Short", 500},
		{"Medium", 2000},
		{"Long", 5000},
		{"Very long", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brief := fixtures.GenerateBrief(fixtures.BriefOptions{
				Length:       tt.length,
				Language:     "japanese",
				IncludeEmoji: false,
			})

			actualLength := text.CountRunes(brief)
			minLength := int(float64(tt.length) * 0.9)
			maxLength := int(float64(tt.length) * 1.1)

			if actualLength < minLength || actualLength > maxLength {
				t.Errorf("Length %d not within expected range [%d, %d]", actualLength, minLength, maxLength)
			}
		})
	}
}

// BenchmarkGenerateShortBrief benchmarks short brief generation
func BenchmarkGenerateShortBrief(b *testing.B) {
	for i := 0; i < b.N; i++ {
		fixtures.GenerateShortBrief()
	}
}

// BenchmarkGenerateMediumBrief benchmarks medium brief generation
func BenchmarkGenerateMediumBrief(b *testing.B) {
	for i := 0; i < b.N; i++ {
		fixtures.GenerateMediumBrief()
	}
}
