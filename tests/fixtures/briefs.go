package fixtures

import (
	"strings"
)

// BriefOptions configures the generated campaign brief content.
type BriefOptions struct {
	// Length is the approximate character count (target length, ±10% variance allowed)
	Length int

	// Language specifies the content language ("japanese" or "english")
	Language string

	// IncludeEmoji specifies whether to include emoji characters in the content
	IncludeEmoji bool
}

// GenerateBrief generates campaign brief content based on the provided options.
// The generated content is coherent Japanese or English marketing text suitable
// for copy generation testing.
//
// Example:
//
//	brief := GenerateBrief(BriefOptions{
//	    Length: 2000,
//	    Language: "japanese",
//	    IncludeEmoji: false,
//	})
func GenerateBrief(opts BriefOptions) string {
	if opts.Language == "english" {
		return generateEnglishBrief(opts.Length, opts.IncludeEmoji)
	}
	return generateJapaneseBrief(opts.Length, opts.IncludeEmoji)
}

// GenerateShortBrief generates a short brief (~500 characters).
// This is useful for testing copy generation from minimal input.
func GenerateShortBrief() string {
	return GenerateBrief(BriefOptions{
		Length:       500,
		Language:     "japanese",
		IncludeEmoji: false,
	})
}

// GenerateMediumBrief generates a medium-length brief (~2000 characters).
// This is useful for testing typical copy generation scenarios.
func GenerateMediumBrief() string {
	return GenerateBrief(BriefOptions{
		Length:       2000,
		Language:     "japanese",
		IncludeEmoji: false,
	})
}

// GenerateLongBrief generates a long brief (~10000 characters).
// This is useful for testing prompt truncation of extensive input.
func GenerateLongBrief() string {
	return GenerateBrief(BriefOptions{
		Length:       10000,
		Language:     "japanese",
		IncludeEmoji: false,
	})
}

// GenerateBriefWithEmoji generates a brief that includes emoji characters.
// This is useful for testing Unicode character counting and handling.
func GenerateBriefWithEmoji() string {
	return GenerateBrief(BriefOptions{
		Length:       2000,
		Language:     "japanese",
		IncludeEmoji: true,
	})
}

// generateJapaneseBrief generates coherent Japanese brief content.
func generateJapaneseBrief(targetLength int, includeEmoji bool) string {
	// Base sentences for Japanese content
	baseSentences := []string{
		"新製品の正式リリースに合わせて、主要チャネルでの告知を強化します。",
		"ターゲット層は開発チームのリーダーと、導入を検討している技術責任者です。",
		"今回のアップデートでは、デプロイ時間が従来比で半分以下に短縮されました。",
		"無料トライアル期間中にオンボーディングを完了したユーザーの継続率は高い水準にあります。",
		"既存顧客にはアップグレードの案内を、見込み顧客には導入事例を届けます。",
		"キャンペーン期間中は週次でエンゲージメント指標をレビューします。",
		"訴求の中心は、設定の手間を減らして本来の開発に集中できるという価値です。",
		"導入企業からは、運用コストの削減と障害対応時間の短縮が評価されています。",
		"ランディングページでは、料金プランの比較と導入までの流れを明確に示します。",
		"告知文はチャネルごとの文化に合わせてトーンを調整します。",
		"競合との差別化ポイントは、セットアップの速さとドキュメントの充実度です。",
		"リリースノートへのリンクを添えて、変更点の詳細を確認できるようにします。",
		"ウェビナーの開催告知は開催一週間前と前日の二回に分けて配信します。",
		"休眠ユーザーには、最後の利用以降に追加された機能をまとめて案内します。",
		"配信時間帯はターゲット地域の業務時間に合わせて調整します。",
	}

	emojiSentences := []string{
		"新機能の提供を開始しました 🚀✨",
		"導入はわずか数分で完了します ⚡💡",
		"詳細はランディングページをご覧ください 📊📈",
		"期間限定のトライアルを実施中です 💻🌐",
		"チームでの利用がさらに便利になりました 🔧🌟",
	}

	var builder strings.Builder
	currentLength := 0
	sentenceIndex := 0
	emojiIndex := 0

	for {
		var sentence string
		if includeEmoji && currentLength%(targetLength/5) < 100 && emojiIndex < len(emojiSentences) {
			sentence = emojiSentences[emojiIndex]
			emojiIndex++
		} else {
			sentence = baseSentences[sentenceIndex%len(baseSentences)]
			sentenceIndex++
		}

		// Calculate the length if we add this sentence
		sentenceLength := len([]rune(sentence))
		if currentLength > 0 {
			sentenceLength++ // Account for space
		}
		potentialLength := currentLength + sentenceLength

		// If we've reached or exceeded the minimum target (90%), check if we should stop
		if currentLength >= int(float64(targetLength)*0.9) {
			// Stop if adding this sentence would exceed 110% of target
			if potentialLength > int(float64(targetLength)*1.1) {
				break
			}
		}

		// Add spacing before sentence (except for the first one)
		if currentLength > 0 {
			builder.WriteString(" ")
		}

		builder.WriteString(sentence)
		currentLength = len([]rune(builder.String()))

		// Stop if we've reached the target
		if currentLength >= targetLength {
			break
		}
	}

	return builder.String()
}

// generateEnglishBrief generates coherent English brief content.
func generateEnglishBrief(targetLength int, includeEmoji bool) string {
	baseSentences := []string{
		"The launch announcement should run on every primary channel during release week.",
		"The target audience is engineering leads and technical decision makers evaluating adoption.",
		"This update cuts deployment time to less than half of the previous release.",
		"Users who complete onboarding during the free trial retain at a high rate.",
		"Existing customers receive upgrade guidance while prospects receive case studies.",
		"Engagement metrics are reviewed weekly for the duration of the campaign.",
		"The core message is less configuration overhead and more time spent building.",
		"Adopters highlight reduced operating costs and faster incident response.",
		"The landing page presents plan comparisons and a clear path to adoption.",
		"Announcement copy adapts its tone to the culture of each channel.",
		"Differentiation rests on setup speed and the depth of the documentation.",
		"Each post links to the release notes so readers can inspect the changes.",
		"Webinar announcements go out one week before the event and again the day prior.",
		"Dormant users receive a digest of features added since their last session.",
		"Delivery windows align with business hours in the target region.",
	}

	emojiSentences := []string{
		"The new release is live today 🚀✨",
		"Setup takes just a few minutes ⚡💡",
		"See the landing page for details 📊📈",
		"A limited-time trial is now open 💻🌐",
		"Team workflows just got easier 🔧🌟",
	}

	var builder strings.Builder
	currentLength := 0
	sentenceIndex := 0
	emojiIndex := 0

	for {
		var sentence string
		if includeEmoji && currentLength%(targetLength/5) < 100 && emojiIndex < len(emojiSentences) {
			sentence = emojiSentences[emojiIndex]
			emojiIndex++
		} else {
			sentence = baseSentences[sentenceIndex%len(baseSentences)]
			sentenceIndex++
		}

		// Calculate the length if we add this sentence
		sentenceLength := len([]rune(sentence))
		if currentLength > 0 {
			sentenceLength++ // Account for space
		}
		potentialLength := currentLength + sentenceLength

		// If we've reached or exceeded the minimum target (90%), check if we should stop
		if currentLength >= int(float64(targetLength)*0.9) {
			// Stop if adding this sentence would exceed 110% of target
			if potentialLength > int(float64(targetLength)*1.1) {
				break
			}
		}

		// Add spacing before sentence (except for the first one)
		if currentLength > 0 {
			builder.WriteString(" ")
		}

		builder.WriteString(sentence)
		currentLength = len([]rune(builder.String()))

		// Stop if we've reached the target
		if currentLength >= targetLength {
			break
		}
	}

	return builder.String()
}
