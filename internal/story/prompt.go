package story

import (
	"errors"
	"fmt"
	"strings"

	"StoryBuilder/internal/script"
)

// ConfirmationLine closes every story, generated or placeholder.
const ConfirmationLine = "(The words you chose are now in our story!)"

// ErrIncompleteWords means the prompt was requested before all words were chosen.
var ErrIncompleteWords = errors.New("story needs 9 selected words")

// BuildPrompt substitutes the comma-separated words for the {words}
// placeholder of template. Words keep their selection order.
func BuildPrompt(words []string, template string) (string, error) {
	if len(words) < script.QuestionTotal {
		return "", fmt.Errorf("%w: have %d", ErrIncompleteWords, len(words))
	}
	return strings.Replace(template, script.WordsPlaceholder, strings.Join(words, ", "), 1), nil
}

// Placeholder renders the offline story used whenever generation fails.
// Words are slotted by their category position 1..9; missing ones are empty.
func Placeholder(words []string) string {
	var w [script.QuestionTotal]string
	copy(w[:], words)
	return fmt.Sprintf("A **%s** **%s** in the **%s** **%s** over a **%s** **%s**. It **%s** toward a **%s**. Everyone is **%s**.\n\n%s",
		w[1], w[0], w[2], w[3], w[5], w[4], w[6], w[7], w[8], ConfirmationLine)
}
