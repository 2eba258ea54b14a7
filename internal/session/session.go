package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"StoryBuilder/internal/script"
	"StoryBuilder/internal/story"
)

// Speaker identifies who produced a chat entry.
type Speaker string

const (
	SpeakerBot  Speaker = "bot"
	SpeakerUser Speaker = "user"
)

// ChatEntry is a single line of the transcript
type ChatEntry struct {
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	IsStory   bool      `json:"is_story"`
	Timestamp time.Time `json:"timestamp"`
}

// SelectedWord is a word the user identified correctly.
type SelectedWord struct {
	Text       string          `json:"text"`
	Category   script.Category `json:"category"`
	CategoryID int             `json:"category_id"`
}

// State is everything a renderer needs to draw the session.
type State struct {
	CurrentStepIndex   int            `json:"current_step_index"`
	ChatLog            []ChatEntry    `json:"chat_log"`
	SelectedWords      []SelectedWord `json:"selected_words"`
	AwaitingGeneration bool           `json:"awaiting_generation"`
	LastAnswerWrong    bool           `json:"last_answer_wrong"`
	RemixActive        bool           `json:"remix_active"`
}

// DisplayedChoice is one of the two buttons of the current question, in
// on-screen order.
type DisplayedChoice struct {
	Text    string `json:"text"`
	Correct bool   `json:"-"`
}

// Composer produces the story from the selected words.
type Composer interface {
	Compose(ctx context.Context, words []string, template string) (story.Result, error)
}

// Session owns the state of one run through the script. All methods are
// safe to call from the renderer while a story is being generated; intents
// that do not fit the current state are ignored and report false.
type Session struct {
	mu       sync.Mutex
	script   *script.Script
	composer Composer
	rng      *rand.Rand
	logger   *slog.Logger
	now      func() time.Time

	state   State
	choices []DisplayedChoice
	// epoch changes on Restart so a late story is not appended to a new run
	epoch int
}

// Option configures a Session.
type Option func(*Session)

// WithScript replaces the default script.
func WithScript(sc *script.Script) Option {
	return func(s *Session) { s.script = sc }
}

// WithRand sets the source used to order choices.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a session positioned at the first step.
func New(composer Composer, opts ...Option) *Session {
	s := &Session{
		script:   script.Default(),
		composer: composer,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.ChatLog = append([]ChatEntry(nil), s.state.ChatLog...)
	st.SelectedWords = append([]SelectedWord(nil), s.state.SelectedWords...)
	return st
}

// CurrentStep returns the active step. ok is false once the script has run out.
func (s *Session) CurrentStep() (script.Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.script.At(s.state.CurrentStepIndex)
}

// Progress reports correctly answered questions out of the script total.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.SelectedWords), s.script.QuestionCount()
}

// SelectedWords returns a copy of the words chosen so far.
func (s *Session) SelectedWords() []SelectedWord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SelectedWord(nil), s.state.SelectedWords...)
}

// Choices returns the current question's choices in display order, or nil
// when the current step is not a question.
func (s *Session) Choices() []DisplayedChoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DisplayedChoice(nil), s.choices...)
}

// SubmitChoice records the answer to the current question.
func (s *Session) SubmitChoice(correct bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(correct)
}

// Choose submits the displayed choice at index.
func (s *Session) Choose(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.choices) {
		return false
	}
	return s.submitLocked(s.choices[index].Correct)
}

func (s *Session) submitLocked(correct bool) bool {
	step, ok := s.script.At(s.state.CurrentStepIndex)
	if !ok || step.Kind != script.KindCategoryQuestion || s.state.AwaitingGeneration || s.state.LastAnswerWrong {
		return false
	}

	q := step.Question
	picked := q.Wrong
	if correct {
		picked = q.Correct
	}

	s.appendLocked(SpeakerUser, picked.Text, false)
	s.appendLocked(SpeakerBot, picked.Feedback, false)

	if !correct {
		s.state.LastAnswerWrong = true
		s.logger.Debug("wrong answer", "category_id", q.CategoryID)
		return true
	}

	s.state.SelectedWords = append(s.state.SelectedWords, SelectedWord{
		Text:       stripChoiceLabel(picked.Text),
		Category:   q.Category,
		CategoryID: q.CategoryID,
	})
	s.state.LastAnswerWrong = false
	s.advanceLocked()
	return true
}

// AcknowledgeWrongAnswer returns to the same question with a fresh choice order.
func (s *Session) AcknowledgeWrongAnswer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.LastAnswerWrong || s.state.AwaitingGeneration {
		return false
	}
	s.state.LastAnswerWrong = false
	s.drawChoicesLocked()
	return true
}

// AdvancePastMessage acknowledges a bot or closing message.
func (s *Session) AdvancePastMessage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.script.At(s.state.CurrentStepIndex)
	if !ok || s.state.AwaitingGeneration {
		return false
	}
	if step.Kind != script.KindBotMessage && step.Kind != script.KindClosingMessage {
		return false
	}
	s.advanceLocked()
	return true
}

// RevealStory generates the story from the selected words and appends it to
// the transcript. The session lock is released while the composer runs so
// renderers can observe AwaitingGeneration; every other intent is refused
// until it completes.
func (s *Session) RevealStory(ctx context.Context) (bool, error) {
	s.mu.Lock()
	step, ok := s.script.At(s.state.CurrentStepIndex)
	if !ok || step.Kind != script.KindStoryReveal || s.state.AwaitingGeneration {
		s.mu.Unlock()
		return false, nil
	}
	words := make([]string, len(s.state.SelectedWords))
	for i, w := range s.state.SelectedWords {
		words[i] = w.Text
	}
	s.state.AwaitingGeneration = true
	epoch := s.epoch
	s.mu.Unlock()

	res, err := s.composer.Compose(ctx, words, step.PromptTemplate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		s.logger.Info("discarding story for restarted session")
		return false, nil
	}
	s.state.AwaitingGeneration = false
	if err != nil {
		return false, err
	}

	s.appendLocked(SpeakerBot, res.Text, true)
	s.advanceLocked()
	s.logger.Info("story revealed", "fallback", res.Fallback, "words", len(words))
	return true, nil
}

// LatestStory returns the most recent transcript entry that carries the
// story confirmation line.
func (s *Session) LatestStory() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestStoryLocked()
}

func (s *Session) latestStoryLocked() (string, bool) {
	for i := len(s.state.ChatLog) - 1; i >= 0; i-- {
		if strings.Contains(s.state.ChatLog[i].Content, story.ConfirmationLine) {
			return s.state.ChatLog[i].Content, true
		}
	}
	return "", false
}

// EnterRemixMode switches the session to remixing once a story exists.
func (s *Session) EnterRemixMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AwaitingGeneration || s.state.RemixActive {
		return false
	}
	if _, ok := s.latestStoryLocked(); !ok {
		return false
	}
	s.state.RemixActive = true
	return true
}

// Restart discards the run and returns to the first step.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = State{}
	s.drawChoicesLocked()
}

func (s *Session) advanceLocked() {
	s.state.CurrentStepIndex++
	s.drawChoicesLocked()
}

func (s *Session) appendLocked(speaker Speaker, content string, isStory bool) {
	s.state.ChatLog = append(s.state.ChatLog, ChatEntry{
		Speaker:   speaker,
		Content:   content,
		IsStory:   isStory,
		Timestamp: s.now(),
	})
}

func (s *Session) drawChoicesLocked() {
	step, ok := s.script.At(s.state.CurrentStepIndex)
	if !ok || step.Kind != script.KindCategoryQuestion {
		s.choices = nil
		return
	}
	s.choices = []DisplayedChoice{
		{Text: step.Question.Correct.Text, Correct: true},
		{Text: step.Question.Wrong.Text, Correct: false},
	}
	if s.rng.IntN(2) == 1 {
		s.choices[0], s.choices[1] = s.choices[1], s.choices[0]
	}
}

// stripChoiceLabel drops the "A: " / "B: " prefix of a choice.
func stripChoiceLabel(text string) string {
	if len(text) < 3 {
		return text
	}
	return text[3:]
}
