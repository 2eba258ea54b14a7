package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScriptHoldsInvariants(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, QuestionTotal, s.QuestionCount())
	assert.Equal(t, 12, s.Len())

	first, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, KindBotMessage, first.Kind)

	id := 1
	for i := 1; i <= QuestionTotal; i++ {
		st, ok := s.At(i)
		require.True(t, ok)
		require.Equal(t, KindCategoryQuestion, st.Kind)
		assert.Equal(t, id, st.Question.CategoryID)
		assert.True(t, strings.HasPrefix(st.Question.Correct.Text, "A: "), st.Question.Correct.Text)
		assert.True(t, strings.HasPrefix(st.Question.Wrong.Text, "B: "), st.Question.Wrong.Text)
		id++
	}

	reveal, _ := s.At(10)
	assert.Equal(t, KindStoryReveal, reveal.Kind)
	assert.Contains(t, reveal.PromptTemplate, WordsPlaceholder)
	assert.Equal(t, reveal.PromptTemplate, s.RevealTemplate())

	closing, _ := s.At(11)
	assert.Equal(t, KindClosingMessage, closing.Kind)

	_, ok = s.At(12)
	assert.False(t, ok)
	_, ok = s.At(-1)
	assert.False(t, ok)
}

func TestAtReturnsCopies(t *testing.T) {
	s := Default()
	st, _ := s.At(1)
	st.Question.Correct.Text = "A: dog"

	again, _ := s.At(1)
	assert.Equal(t, "A: cat", again.Question.Correct.Text)
}

func TestValidateRejectsBrokenScripts(t *testing.T) {
	base := append([]Step(nil), defaultSteps...)

	tests := []struct {
		name   string
		mutate func([]Step) []Step
		want   error
	}{
		{
			name: "missing question",
			mutate: func(s []Step) []Step {
				return append(append([]Step(nil), s[:9]...), s[10:]...)
			},
			want: ErrQuestionCount,
		},
		{
			name: "ids out of order",
			mutate: func(s []Step) []Step {
				s[2], s[3] = s[3], s[2]
				return s
			},
			want: ErrQuestionOrder,
		},
		{
			name: "reveal missing",
			mutate: func(s []Step) []Step {
				return append(append([]Step(nil), s[:10]...), s[11:]...)
			},
			want: ErrMissingReveal,
		},
		{
			name: "closing missing",
			mutate: func(s []Step) []Step {
				return s[:11]
			},
			want: ErrMissingClosing,
		},
		{
			name: "template without placeholder",
			mutate: func(s []Step) []Step {
				s[10].PromptTemplate = "tell a story"
				return s
			},
			want: ErrTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := tt.mutate(append([]Step(nil), base...))
			_, err := New(steps)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCategoryLabels(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("joining word")
	assert.Error(t, err)
}

const yamlScript = `
steps:
  - type: bot
    text: Ready?
    button_text: Go
  - {type: category_question, category_id: 1, category: naming word, text: q1, correct: {text: "A: cat", feedback: yes}, wrong: {text: "B: jump", feedback: no}}
  - {type: category_question, category_id: 2, category: describing word, text: q2, correct: {text: "A: fluffy", feedback: yes}, wrong: {text: "B: run", feedback: no}}
  - {type: category_question, category_id: 3, category: naming word, text: q3, correct: {text: "A: classroom", feedback: yes}, wrong: {text: "B: happy", feedback: no}}
  - {type: category_question, category_id: 4, category: action word, text: q4, correct: {text: "A: jumps", feedback: yes}, wrong: {text: "B: small", feedback: no}}
  - {type: category_question, category_id: 5, category: naming word, text: q5, correct: {text: "A: ball", feedback: yes}, wrong: {text: "B: play", feedback: no}}
  - {type: category_question, category_id: 6, category: describing word, text: q6, correct: {text: "A: round", feedback: yes}, wrong: {text: "B: throw", feedback: no}}
  - {type: category_question, category_id: 7, category: action word, text: q7, correct: {text: "A: rolls", feedback: yes}, wrong: {text: "B: big", feedback: no}}
  - {type: category_question, category_id: 8, category: naming word, text: q8, correct: {text: "A: friend", feedback: yes}, wrong: {text: "B: kind", feedback: no}}
  - {type: category_question, category_id: 9, category: describing word, text: q9, correct: {text: "A: happy", feedback: yes}, wrong: {text: "B: laugh", feedback: no}}
  - type: story_reveal
    prompt_template: "Words: {words}"
    button_text: Show
  - type: closing
    text: Again?
    button_text: Again
`

func TestLoadYAMLScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScript), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Len())
	assert.Equal(t, "Words: {words}", s.RevealTemplate())

	q4, _ := s.At(4)
	assert.Equal(t, CategoryAction, q4.Question.Category)
	assert.Equal(t, "A: jumps", q4.Question.Correct.Text)
}

func TestParseRejectsUnknownStepType(t *testing.T) {
	_, err := Parse([]byte("steps:\n  - type: quiz\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step type")
}
