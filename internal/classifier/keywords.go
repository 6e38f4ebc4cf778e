// Package classifier decides whether a video is harmful from its metadata.
//
// Keyword matches take precedence; when no keyword fires the text is scored
// by an emotion model and the strongest harmful emotion above a threshold
// decides the category.
package classifier

import (
	"strings"

	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
)

// KeywordRule lists the trigger substrings for one harmful category.
type KeywordRule struct {
	Category models.Category
	Keywords []string
}

// DefaultKeywordRules is evaluated top to bottom; the first category with a
// matching keyword wins.
var DefaultKeywordRules = []KeywordRule{
	{
		Category: models.CategoryViolence,
		Keywords: []string{
			"fight", "kill", "blood", "assault", "murder", "gore", "shooting", "explosion",
			"war", "terrorist", "attack", "beating", "stab", "weapon", "riot", "execution",
			"brawl", "injury", "crime", "violence", "massacre",
		},
	},
	{
		Category: models.CategorySelfHarm,
		Keywords: []string{
			"suicide", "self-harm", "overdose", "kill myself", "cutting", "burning",
			"end my life", "die", "jump off", "i want to die", "taking my life", "self-injury",
		},
	},
	{
		Category: models.CategoryAbuse,
		Keywords: []string{
			"harass", "bully", "abuse", "assault", "threat", "hate", "racist", "sexist",
			"homophobic", "slur", "verbal abuse", "toxic", "stalker", "manipulate", "gaslight",
			"cyberbully", "intimidate", "predator", "molest",
		},
	},
	{
		Category: models.CategorySubstanceUse,
		Keywords: []string{
			"drug", "alcohol", "cocaine", "weed", "marijuana", "addict", "heroin",
			"meth", "narcotics", "intoxicated", "high", "getting drunk", "pills", "overdose",
			"lsd", "substance", "rehab", "vape", "binge drinking", "opioid",
		},
	},
	{
		Category: models.CategoryAdult,
		Keywords: []string{
			"sex", "nude", "naked", "nsfw", "onlyfans", "porn", "xxx", "fetish", "explicit",
			"erotic", "adult", "strip", "lingerie", "camgirl", "sexual", "provocative", "uncensored",
		},
	},
	{
		Category: models.CategoryEmotionalDistress,
		Keywords: []string{
			"depression", "anxiety", "crying", "alone", "grief", "panic", "sadness",
			"worthless", "hopeless", "empty", "breakup", "lonely", "heartbroken",
			"struggling", "mental breakdown", "miserable", "i hate myself", "burnout",
			"overwhelmed", "mourning", "lost someone", "feeling down",
		},
	},
}

// KeywordMatcher is a first-match substring classifier over a fixed rule list.
// It is immutable and safe for concurrent use.
type KeywordMatcher struct {
	rules []KeywordRule
}

// NewKeywordMatcher copies rules so later edits to the slice cannot leak in.
// Rules must not name CategoryOther.
func NewKeywordMatcher(rules []KeywordRule) *KeywordMatcher {
	copied := make([]KeywordRule, 0, len(rules))
	for _, r := range rules {
		if !r.Category.IsHarmful() {
			continue
		}
		kws := make([]string, len(r.Keywords))
		copy(kws, r.Keywords)
		copied = append(copied, KeywordRule{Category: r.Category, Keywords: kws})
	}
	return &KeywordMatcher{rules: copied}
}

// Match returns the first category with a keyword contained in text.
// text is expected to be normalized already (see NormalizeText).
// ok is false when nothing matched, meaning the caller should defer to the
// emotion classifier.
func (m *KeywordMatcher) Match(text string) (category models.Category, ok bool) {
	for _, rule := range m.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Category, true
			}
		}
	}
	return "", false
}
