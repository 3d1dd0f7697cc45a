package classifier

import (
	"strings"

	"github.com/xaenox/school-bot/internal/models"
)

// Classifier maps an utterance to a content intent.
type Classifier interface {
	Classify(text string) models.Intent
}

type rule struct {
	keywords []string
	intent   models.Intent
}

var thisWeekTokens = []string{"이번 주", "이번주"}

// KeywordClassifier checks keyword containment rule by rule; the first matching
// rule wins.
type KeywordClassifier struct {
	rules []rule
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		rules: []rule{
			{keywords: []string{"시간표"}, intent: models.IntentTimetable},
			{keywords: []string{"급식"}, intent: models.IntentMeal},
			{keywords: []string{"학사", "일정"}, intent: models.IntentCalendarMonth},
		},
	}
}

func (c *KeywordClassifier) Classify(text string) models.Intent {
	for _, r := range c.rules {
		for _, keyword := range r.keywords {
			if !strings.Contains(text, keyword) {
				continue
			}
			if r.intent == models.IntentCalendarMonth && containsAny(text, thisWeekTokens) {
				return models.IntentCalendarWeek
			}
			return r.intent
		}
	}
	return models.IntentFallback
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
