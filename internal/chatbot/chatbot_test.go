package chatbot

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
	"StoryBuilder/internal/story"
)

// lineFeed produces one input line per Read so each answer can depend on
// the session state left by the previous one.
type lineFeed struct {
	next func() (string, bool)
}

func (f *lineFeed) Read(p []byte) (int, error) {
	line, ok := f.next()
	if !ok {
		return 0, io.EOF
	}
	return copy(p, line+"\n"), nil
}

func newBot() (*ChatBot, *session.Session) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(story.NewPipeline(nil, logger), session.WithLogger(logger))
	return NewChatBot(sess, logger), sess
}

func fixed(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestRunWholeStoryAndRemix(t *testing.T) {
	bot, sess := newBot()
	stage := 0
	feed := &lineFeed{next: func() (string, bool) {
		if sess.Snapshot().RemixActive {
			stage++
			switch stage {
			case 1:
				return "/swap 3 garden", true
			case 2:
				return "/quit", true
			}
			return "", false
		}
		step, ok := sess.CurrentStep()
		if !ok {
			return "", false
		}
		switch step.Kind {
		case script.KindCategoryQuestion:
			for i, c := range sess.Choices() {
				if c.Correct {
					return strconv.Itoa(i + 1), true
				}
			}
		case script.KindClosingMessage:
			return "/remix", true
		}
		return "", true
	}}

	var out bytes.Buffer
	require.NoError(t, bot.Run(context.Background(), feed, &out))

	text := out.String()
	assert.Contains(t, text, "=== Story Builder ===")
	assert.Contains(t, text, "(8/9)")
	assert.Contains(t, text, "Writing your story")
	assert.Contains(t, text, story.ConfirmationLine)
	assert.Contains(t, text, "Naming Words (Nouns) 🐾")
	assert.Contains(t, text, "**garden**")
	assert.True(t, strings.HasSuffix(text, "Goodbye!\n"))

	answered, _ := sess.Progress()
	assert.Equal(t, 9, answered)
}

func TestRunWrongAnswerThenRetry(t *testing.T) {
	bot, sess := newBot()
	var wrongSent, retried bool
	feed := &lineFeed{next: func() (string, bool) {
		step, _ := sess.CurrentStep()
		switch {
		case step.Kind != script.KindCategoryQuestion:
			return "", true
		case !wrongSent:
			wrongSent = true
			for i, c := range sess.Choices() {
				if !c.Correct {
					return strconv.Itoa(i + 1), true
				}
			}
		case sess.Snapshot().LastAnswerWrong:
			retried = true
			return "", true
		}
		return "", false
	}}

	var out bytes.Buffer
	require.NoError(t, bot.Run(context.Background(), feed, &out))

	assert.True(t, retried)
	assert.Contains(t, out.String(), "Try Again")
	assert.False(t, sess.Snapshot().LastAnswerWrong)
	assert.Empty(t, sess.SelectedWords())
	assert.Len(t, sess.Choices(), 2)
}

func TestRunCommandErrors(t *testing.T) {
	bot, _ := newBot()
	var out bytes.Buffer
	require.NoError(t, bot.Run(context.Background(), fixed("/help", "/remix", "/swap 1 dog", "/bogus", "/quit"), &out))

	text := out.String()
	assert.Contains(t, text, "Available commands:")
	assert.Contains(t, text, "Error: there is no story to remix yet")
	assert.Contains(t, text, "Error: use /remix first")
	assert.Contains(t, text, "Error: unknown command: /bogus")
}

func TestRunRejectsNonNumericAnswer(t *testing.T) {
	bot, sess := newBot()
	var out bytes.Buffer
	require.NoError(t, bot.Run(context.Background(), fixed("", "banana", "7"), &out))

	assert.Equal(t, 2, strings.Count(out.String(), "Type 1 or 2 to pick an answer."))
	assert.Equal(t, 1, sess.Snapshot().CurrentStepIndex)
	assert.Empty(t, sess.Snapshot().ChatLog)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	bot, sess := newBot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, bot.Run(ctx, fixed(""), &out))
	assert.Equal(t, 0, sess.Snapshot().CurrentStepIndex)
}

func TestRestartCommandResetsSession(t *testing.T) {
	bot, sess := newBot()
	var out bytes.Buffer
	require.NoError(t, bot.Run(context.Background(), fixed("", "/restart"), &out))

	assert.Equal(t, 0, sess.Snapshot().CurrentStepIndex)
	assert.Contains(t, out.String(), "Starting a brand new story!")
}
