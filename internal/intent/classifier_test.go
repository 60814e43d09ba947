package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/assistant/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    domain.Category
	}{
		{"personal keyword", "Tenho dentista amanhã?", domain.CategoryPersonalCalendar},
		{"personal english", "When is my sister's BIRTHDAY", domain.CategoryPersonalCalendar},
		{"professional keyword", "reunião de equipe amanhã", domain.CategoryProfessionalCalendar},
		{"professional english", "Any client calls?", domain.CategoryProfessionalCalendar},
		{"both prefer personal", "family meeting on sunday", domain.CategoryPersonalCalendar},
		{"generic calendar", "o que tenho hoje?", domain.CategoryCalendar},
		{"generic english", "Show my schedule", domain.CategoryCalendar},
		{"general knowledge", "Qual a capital da França?", domain.CategoryGeneralKnowledge},
		{"empty", "", domain.CategoryGeneralKnowledge},
		// substring hits are accepted: "teamwork" contains "team"
		{"substring false positive", "tips on teamwork", domain.CategoryProfessionalCalendar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message))
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	for _, personal := range rules[0].Keywords {
		for _, professional := range rules[1].Keywords {
			msg := professional + " " + personal
			assert.Equal(t, domain.CategoryPersonalCalendar, Classify(msg), msg)
		}
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	r := Rules()
	r[0].Keywords[0] = "mutated"
	assert.NotEqual(t, "mutated", rules[0].Keywords[0])
	assert.Len(t, r, 3)
}
