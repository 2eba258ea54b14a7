// Package chatbot is a line-oriented renderer for a story session, for
// terminals where the full-screen UI is not wanted.
package chatbot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"StoryBuilder/internal/remix"
	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
)

// ChatBot drives one session from text input
type ChatBot struct {
	session *session.Session
	logger  *slog.Logger
	out     io.Writer
	remix   *remix.Engine
	printed int
}

// NewChatBot creates a ChatBot for sess.
func NewChatBot(sess *session.Session, logger *slog.Logger) *ChatBot {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatBot{session: sess, logger: logger}
}

// handleCommand handles special commands
func (cb *ChatBot) handleCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/restart":
		cb.restart()
		fmt.Fprintln(cb.out, "Starting a brand new story!")
		return false, nil

	case "/remix":
		if !cb.session.EnterRemixMode() {
			return false, fmt.Errorf("there is no story to remix yet")
		}
		text, _ := cb.session.LatestStory()
		cb.remix = remix.New(cb.session.SelectedWords(), text)
		cb.printRemix()
		return false, nil

	case "/swap":
		if cb.remix == nil {
			return false, fmt.Errorf("use /remix first")
		}
		if len(parts) < 3 {
			return false, fmt.Errorf("usage: /swap <category-id> <new word>")
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return false, fmt.Errorf("invalid category id %q: %w", parts[1], err)
		}
		cb.remix.Substitute(id, strings.Join(parts[2:], " "))
		cb.printRemix()
		return false, nil

	case "/help":
		fmt.Fprintln(cb.out, "Available commands:")
		fmt.Fprintln(cb.out, "  <enter>                   - Continue")
		fmt.Fprintln(cb.out, "  1, 2                      - Pick an answer")
		fmt.Fprintln(cb.out, "  /remix                    - Remix the finished story")
		fmt.Fprintln(cb.out, "  /swap <id> <word>         - Change a word while remixing")
		fmt.Fprintln(cb.out, "  /restart                  - Start over")
		fmt.Fprintln(cb.out, "  /quit, /exit              - Exit")
		fmt.Fprintln(cb.out, "  /help                     - Show this help message")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s", parts[0])
	}
}

// handleInput applies a non-command line to the session.
func (cb *ChatBot) handleInput(ctx context.Context, input string) error {
	if cb.session.Snapshot().LastAnswerWrong {
		cb.session.AcknowledgeWrongAnswer()
		return nil
	}

	step, ok := cb.session.CurrentStep()
	if !ok {
		return nil
	}

	switch step.Kind {
	case script.KindCategoryQuestion:
		n, err := strconv.Atoi(input)
		if err != nil || !cb.session.Choose(n-1) {
			fmt.Fprintln(cb.out, "Type 1 or 2 to pick an answer.")
		}
	case script.KindStoryReveal:
		fmt.Fprintln(cb.out, "✏️  Writing your story...")
		if _, err := cb.session.RevealStory(ctx); err != nil {
			return fmt.Errorf("failed to reveal story: %w", err)
		}
	case script.KindClosingMessage:
		cb.restart()
	default:
		cb.session.AdvancePastMessage()
	}
	return nil
}

func (cb *ChatBot) restart() {
	cb.session.Restart()
	cb.remix = nil
	cb.printed = 0
}

// flush prints transcript entries not shown yet, then the current prompt.
func (cb *ChatBot) flush() {
	st := cb.session.Snapshot()
	for _, e := range st.ChatLog[cb.printed:] {
		if e.Speaker == session.SpeakerUser {
			fmt.Fprintf(cb.out, "You: %s\n", e.Content)
		} else {
			fmt.Fprintf(cb.out, "Bot: %s\n", e.Content)
		}
	}
	cb.printed = len(st.ChatLog)

	answered, total := cb.session.Progress()
	if st.LastAnswerWrong {
		fmt.Fprintln(cb.out, "[enter] 🔁 Try Again 💪")
		return
	}
	step, ok := cb.session.CurrentStep()
	if !ok {
		return
	}
	switch step.Kind {
	case script.KindBotMessage, script.KindClosingMessage:
		fmt.Fprintf(cb.out, "Bot: %s\n", step.Text)
		fmt.Fprintf(cb.out, "[enter] %s\n", step.ButtonLabel)
		if step.Kind == script.KindClosingMessage {
			fmt.Fprintln(cb.out, "/remix 🎨 Remix My Story")
		}
	case script.KindCategoryQuestion:
		fmt.Fprintf(cb.out, "(%d/%d) ❓ %s %s\n", answered, total, step.Question.Prompt, step.Question.Visual)
		fmt.Fprintf(cb.out, "Choose the best %s.\n", step.Question.Category)
		for i, c := range cb.session.Choices() {
			fmt.Fprintf(cb.out, "  %d) %s\n", i+1, c.Text)
		}
	case script.KindStoryReveal:
		fmt.Fprintf(cb.out, "[enter] %s\n", step.ButtonLabel)
	}
}

func (cb *ChatBot) printRemix() {
	fmt.Fprintf(cb.out, "\n%s\n\n", cb.remix.Story())
	for _, g := range cb.remix.ByCategory() {
		fmt.Fprintln(cb.out, g.Title)
		for _, w := range g.Words {
			fmt.Fprintf(cb.out, "  [%d] %s\n", w.CategoryID, w.Text)
		}
	}
	fmt.Fprintln(cb.out, "Use /swap <id> <word> to change a word, /restart for a new story.")
}

// Run reads lines from in until EOF, /quit or ctx is cancelled.
func (cb *ChatBot) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	cb.out = out

	fmt.Fprintln(out, "=== Story Builder ===")
	fmt.Fprintln(out, "Type /help for commands, /quit to exit")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	cb.flush()
	for ctx.Err() == nil {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(input, "/") {
			shouldQuit, err := cb.handleCommand(input)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				cb.logger.Warn("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			if cb.remix == nil {
				cb.flush()
			}
			continue
		}
		if cb.remix != nil {
			fmt.Fprintln(out, "Use /swap <id> <word> or /restart.")
			continue
		}

		if err := cb.handleInput(ctx, input); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			cb.logger.Error("failed to handle input", "error", err)
		}
		cb.flush()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out, "Goodbye!")
	return nil
}
