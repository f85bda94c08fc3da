package service

import (
	"sort"
	"strings"

	"byteneko/internal/model"
)

// Stop list covers both Spanish and English filler, since imported
// surveys mix the two freely.
var stopWords = map[string]struct{}{
	"para": {}, "pero": {}, "porque": {}, "como": {}, "este": {},
	"esta": {}, "esto": {}, "estos": {}, "estas": {}, "cuando": {},
	"donde": {}, "todo": {}, "toda": {}, "todos": {}, "todas": {},
	"tambien": {}, "aunque": {}, "desde": {}, "hasta": {}, "sobre": {},
	"entre": {}, "tiene": {}, "tienen": {}, "hacer": {}, "hace": {},
	"fueron": {}, "sido": {}, "estaba": {}, "estan": {},
	"that": {}, "this": {}, "with": {}, "from": {}, "they": {},
	"were": {}, "been": {}, "have": {}, "there": {}, "their": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "which": {},
	"very": {}, "really": {}, "just": {}, "more": {}, "most": {},
	"some": {}, "then": {}, "than": {}, "when": {}, "what": {},
}

// MineText extracts keyword and bigram frequencies from free-text
// answers. Tokens of three characters or fewer are noise (articles,
// pronouns, codes) and are dropped before counting.
func MineText(values []string, maxKeywords, maxBigrams int) ([]model.DistItem, []model.DistItem) {
	unigrams := make(map[string]int)
	bigrams := make(map[string]int)
	for _, v := range values {
		tokens := contentTokens(v)
		for i, t := range tokens {
			unigrams[t]++
			if i+1 < len(tokens) {
				bigrams[tokens[i]+" "+tokens[i+1]]++
			}
		}
	}
	return topFreq(unigrams, maxKeywords), topFreq(bigrams, maxBigrams)
}

func contentTokens(v string) []string {
	var out []string
	for _, t := range Tokenize(v) {
		if len([]rune(t)) <= 3 {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func topFreq(counts map[string]int, limit int) []model.DistItem {
	items := make([]model.DistItem, 0, len(counts))
	for term, n := range counts {
		items = append(items, model.DistItem{Label: term, Count: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// SummarizeText builds the report block for a free-text question:
// keyword and bigram frequencies plus a capped sample of raw answers.
func SummarizeText(values []string, sampleLimit int) *model.TextSummary {
	var nonEmpty []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(v))
		}
	}
	keywords, bigrams := MineText(nonEmpty, 10, 5)
	samples := nonEmpty
	if sampleLimit > 0 && len(samples) > sampleLimit {
		samples = samples[:sampleLimit]
	}
	return &model.TextSummary{
		Total:    len(nonEmpty),
		Keywords: keywords,
		Bigrams:  bigrams,
		Samples:  samples,
	}
}
