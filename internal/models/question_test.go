package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return parsed
}

func TestQuestion_ResolveAnswer(t *testing.T) {
	question := &Question{
		Type:    QuestionTypeMCQ,
		Options: datatypes.JSONSlice[string]{"Mercury", "Venus", "Earth", "Mars"},
	}

	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"label A", "A", "Mercury"},
		{"label D", "D", "Mars"},
		{"label with whitespace", " B ", "Venus"},
		{"label past the options", "E", "E"},
		{"literal value untouched", "Venus", "Venus"},
		{"multi-character string untouched", "AB", "AB"},
		{"empty answer untouched", "", ""},
		{"lowercase is not a label", "a", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, question.ResolveAnswer(tt.answer))
		})
	}

	t.Run("non-MCQ passes through", func(t *testing.T) {
		freeText := &Question{Type: "short_answer"}
		assert.Equal(t, "A", freeText.ResolveAnswer("A"))
	})
}

func TestQuestion_ChoiceLabel(t *testing.T) {
	question := &Question{
		Type:    QuestionTypeMCQ,
		Options: datatypes.JSONSlice[string]{"Mercury", "Venus", "Earth", "Mars"},
	}

	assert.Equal(t, "A", question.ChoiceLabel("Mercury"))
	assert.Equal(t, "C", question.ChoiceLabel("Earth"))
	assert.Equal(t, "", question.ChoiceLabel("Pluto"))
	assert.Equal(t, "", question.ChoiceLabel(""))
}

func TestTestSection_EffectiveDuration(t *testing.T) {
	tests := []struct {
		name    string
		section TestSection
		want    int
	}{
		{"explicit duration wins", TestSection{DurationMinutes: 25, EasyQuestions: 2}, 25},
		{"derived from question count", TestSection{EasyQuestions: 4, ModerateQuestions: 3}, 7},
		{"floors at five minutes", TestSection{EasyQuestions: 2}, 5},
		{"empty section still gets the floor", TestSection{}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.section.EffectiveDuration())
		})
	}
}

func TestSectionStatus_Deadline(t *testing.T) {
	status := SectionStatus{
		StartedAt: mustParse(t, "2026-03-01T10:00:00Z"),
		Section:   TestSection{DurationMinutes: 10},
	}
	assert.Equal(t, mustParse(t, "2026-03-01T10:10:00Z"), status.Deadline())
}

func TestPercentageOf(t *testing.T) {
	t.Run("rounds to two places", func(t *testing.T) {
		got := PercentageOf(decimal.NewFromInt(1), decimal.NewFromInt(3))
		assert.Equal(t, "33.33", got.String())
	})

	t.Run("zero maximum is zero percent", func(t *testing.T) {
		got := PercentageOf(decimal.NewFromInt(5), decimal.Zero)
		assert.True(t, got.IsZero())
	})

	t.Run("negative scores stay negative", func(t *testing.T) {
		got := PercentageOf(decimal.NewFromInt(-1), decimal.NewFromInt(4))
		assert.Equal(t, "-25", got.String())
	})
}
