// Package sanitize post-processes generated answers: residual citation
// markers are stripped and Hindi answers are checked for English leakage.
// The leakage pass is a documented heuristic, independently testable from
// generation: runs of 4+ basic-Latin letters are counted, and only past a
// fixed threshold, with a glossary available, are terms replaced longest
// first. Without a glossary, leakage is logged, never altered.
package sanitize

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"ncert-rag/internal/glossary"
)

// leakageThreshold is the number of English words a Hindi answer may carry
// before glossary substitution kicks in.
const leakageThreshold = 5

var (
	sourceTagRe     = regexp.MustCompile(`\[(?:Source|स्रोत|संदर्भ)\s*\d+[^\]]*\]`)
	pageTagRe       = regexp.MustCompile(`\[.*?(?:Page|पृष्ठ):?\s*\d+.*?\]`)
	latinRunRe      = regexp.MustCompile(`[a-zA-Z]{4,}`)
	parentheticalRe = regexp.MustCompile(`\([^)]*[a-zA-Z][^)]*\)`)
)

// Clean sanitizes a generated answer for the given response language.
// It never fails; worst case the answer passes through with only citation
// markers removed and whitespace collapsed.
func Clean(answer, language string, terms []glossary.Pair) string {
	answer = sourceTagRe.ReplaceAllString(answer, "")
	answer = pageTagRe.ReplaceAllString(answer, "")
	answer = collapseWhitespace(answer)

	if !glossary.IsHindi(language) {
		return answer
	}

	leaked := latinRunRe.FindAllString(answer, -1)
	if len(leaked) <= leakageThreshold {
		return answer
	}

	if len(terms) == 0 {
		log.Warn().
			Int("english_words", len(leaked)).
			Msg("Hindi answer contains English leakage and no glossary is available")
		return answer
	}

	log.Warn().
		Int("english_words", len(leaked)).
		Msg("Hindi answer contains English leakage, substituting glossary terms")

	answer = substituteTerms(answer, terms)
	answer = parentheticalRe.ReplaceAllString(answer, "")
	return collapseWhitespace(answer)
}

// substituteTerms replaces whole-word English terms with their Hindi
// equivalents, longest term first so multi-word terms win over their parts.
func substituteTerms(answer string, terms []glossary.Pair) string {
	sorted := make([]glossary.Pair, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].English) > len(sorted[j].English)
	})

	for _, term := range sorted {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term.English) + `\b`)
		if err != nil {
			continue
		}
		answer = re.ReplaceAllString(answer, term.Hindi)
	}
	return answer
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
