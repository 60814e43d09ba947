// Package intent maps raw user messages to capability categories.
//
// Classification is a case-insensitive substring match against fixed
// keyword sets checked in priority order. A keyword that appears inside
// an unrelated word still matches; there is no scoring and no negation.
package intent

import (
	"strings"

	"github.com/xiaot623/assistant/internal/domain"
)

// Rule binds a keyword set to the category it selects.
type Rule struct {
	Category domain.Category `json:"category"`
	Keywords []string        `json:"keywords"`
}

// rules are evaluated in order; the first set with a hit wins.
var rules = []Rule{
	{
		Category: domain.CategoryPersonalCalendar,
		Keywords: []string{
			"agenda pessoal", "pessoal", "família", "familia", "dentista", "aniversário", "aniversario",
			"personal", "family", "dentist", "birthday",
		},
	},
	{
		Category: domain.CategoryProfessionalCalendar,
		Keywords: []string{
			"agenda profissional", "profissional", "trabalho", "reunião", "reuniao", "cliente", "equipe",
			"professional", "work", "meeting", "client", "team",
		},
	},
	{
		Category: domain.CategoryCalendar,
		Keywords: []string{
			"agenda", "compromisso", "evento", "hoje", "amanhã", "amanha", "quando",
			"schedule", "event", "appointment", "calendar", "when", "today", "tomorrow",
		},
	},
}

// Classify returns the capability category for a message.
// Every input maps to some category; the default is general knowledge.
func Classify(message string) domain.Category {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return domain.CategoryGeneralKnowledge
}

// Rules returns a copy of the keyword table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{
			Category: r.Category,
			Keywords: append([]string(nil), r.Keywords...),
		}
	}
	return out
}
