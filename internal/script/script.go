package script

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags the variant held by a Step.
type Kind int

const (
	KindBotMessage Kind = iota
	KindCategoryQuestion
	KindStoryReveal
	KindClosingMessage
)

func (k Kind) String() string {
	switch k {
	case KindBotMessage:
		return "bot"
	case KindCategoryQuestion:
		return "category_question"
	case KindStoryReveal:
		return "story_reveal"
	case KindClosingMessage:
		return "closing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Category is the grammatical word class drilled by a question.
type Category int

const (
	CategoryNaming Category = iota
	CategoryDescribing
	CategoryAction
)

// Categories lists every category in display order.
var Categories = []Category{CategoryNaming, CategoryDescribing, CategoryAction}

// String returns the label used in prompts and on screen ("naming word", ...).
func (c Category) String() string {
	switch c {
	case CategoryNaming:
		return "naming word"
	case CategoryDescribing:
		return "describing word"
	case CategoryAction:
		return "action word"
	default:
		return "unknown"
	}
}

// Title is the heading used when words are grouped by category.
func (c Category) Title() string {
	switch c {
	case CategoryNaming:
		return "Naming Words (Nouns) 🐾"
	case CategoryDescribing:
		return "Describing Words (Adjectives) ✨"
	case CategoryAction:
		return "Action Words (Verbs) 🏃"
	default:
		return "Other Words"
	}
}

// ParseCategory maps a label back to its Category.
func ParseCategory(label string) (Category, error) {
	for _, c := range Categories {
		if c.String() == label {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", label)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Choice is one answer button of a question.
type Choice struct {
	Text     string
	Feedback string
}

// Question is the payload of a KindCategoryQuestion step.
type Question struct {
	CategoryID int
	Category   Category
	Prompt     string
	Visual     string
	Correct    Choice
	Wrong      Choice
}

// Step is one entry of the interaction script. Which fields are meaningful
// depends on Kind: Text and ButtonLabel for messages, Question for questions,
// PromptTemplate and ButtonLabel for the story reveal.
type Step struct {
	Kind           Kind
	Text           string
	ButtonLabel    string
	Question       Question
	PromptTemplate string
}

// WordsPlaceholder is replaced by the selected words when the prompt is built.
const WordsPlaceholder = "{words}"

// QuestionTotal is the number of questions every script carries.
const QuestionTotal = 9

// Script is an immutable, position-indexed list of steps.
type Script struct {
	steps []Step
}

// New copies steps into a Script after validating the step invariants.
func New(steps []Step) (*Script, error) {
	cp := make([]Step, len(steps))
	copy(cp, steps)
	s := &Script{steps: cp}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// At returns the step at position i. ok is false past the end.
func (s *Script) At(i int) (Step, bool) {
	if i < 0 || i >= len(s.steps) {
		return Step{}, false
	}
	return s.steps[i], true
}

// Len returns the number of steps.
func (s *Script) Len() int { return len(s.steps) }

// QuestionCount returns how many category questions the script holds.
func (s *Script) QuestionCount() int {
	n := 0
	for _, st := range s.steps {
		if st.Kind == KindCategoryQuestion {
			n++
		}
	}
	return n
}

// RevealTemplate returns the prompt template of the story reveal step.
func (s *Script) RevealTemplate() string {
	for _, st := range s.steps {
		if st.Kind == KindStoryReveal {
			return st.PromptTemplate
		}
	}
	return ""
}

var (
	ErrQuestionCount  = errors.New("script must contain exactly 9 category questions")
	ErrQuestionOrder  = errors.New("category ids must run 1..9 in step order")
	ErrMissingReveal  = errors.New("story reveal must follow the last question")
	ErrMissingClosing = errors.New("closing message must follow the story reveal")
	ErrTemplate       = errors.New("story reveal template must contain {words} exactly once")
)

// Validate checks the structural invariants every script must hold.
func (s *Script) Validate() error {
	lastQuestion := -1
	next := 1
	for i, st := range s.steps {
		if st.Kind != KindCategoryQuestion {
			continue
		}
		if st.Question.CategoryID != next {
			return fmt.Errorf("%w: step %d has id %d, want %d", ErrQuestionOrder, i, st.Question.CategoryID, next)
		}
		next++
		lastQuestion = i
	}
	if next-1 != QuestionTotal {
		return fmt.Errorf("%w: found %d", ErrQuestionCount, next-1)
	}
	reveal := lastQuestion + 1
	if reveal >= len(s.steps) || s.steps[reveal].Kind != KindStoryReveal {
		return ErrMissingReveal
	}
	if n := strings.Count(s.steps[reveal].PromptTemplate, WordsPlaceholder); n != 1 {
		return fmt.Errorf("%w: found %d", ErrTemplate, n)
	}
	if reveal+1 >= len(s.steps) || s.steps[reveal+1].Kind != KindClosingMessage {
		return ErrMissingClosing
	}
	return nil
}
