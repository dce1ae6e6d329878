package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"talkdocs/internal/tokenize"
)

var sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

// FrequencySummarizer ranks sentences by word frequency (stopwords filtered),
// optionally biased towards the words of a question.
type FrequencySummarizer struct {
	// QueryBoost is added to the normalised frequency of every word that also
	// appears in the question.
	QueryBoost float64
}

// NewFrequencySummarizer creates a frequency-based sentence ranker summarizer.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{QueryBoost: 2}
}

// Summarize returns up to maxSentences sentences of text in their original
// order, picked by token frequency.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) string {
	return s.SummarizeFor("", text, maxSentences)
}

// SummarizeFor is Summarize with sentences sharing words with query ranked
// higher. Sentences with no scoring words are never selected when at least
// one sentence scores.
func (s *FrequencySummarizer) SummarizeFor(query, text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	var sentences []string
	for _, sent := range sentencePattern.FindAllString(text, -1) {
		if sent = strings.TrimSpace(sent); sent != "" {
			sentences = append(sentences, sent)
		}
	}
	if len(sentences) == 0 {
		return strings.TrimSpace(text)
	}

	tokens := make([][]string, len(sentences))
	freq := map[string]float64{}
	for i, sent := range sentences {
		tokens[i] = tokenize.Words(sent)
		for _, tok := range tokens[i] {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	for _, tok := range tokenize.Words(query) {
		if _, ok := freq[tok]; ok {
			freq[tok] += s.QueryBoost
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i := range sentences {
		sscore := 0.0
		for _, tok := range tokens[i] {
			sscore += freq[tok]
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(tokens[i])); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, 0, maxSentences)
	for i := 0; i < maxSentences; i++ {
		if scores[i].score == 0 && i > 0 {
			break
		}
		selected = append(selected, scores[i].idx)
	}
	// Keep original order among selected
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}
