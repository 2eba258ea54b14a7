// Package remix re-renders a finished story with user-substituted words.
package remix

import (
	"regexp"
	"sync"

	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
)

var markedWord = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Group is the set of words of one category in remix display order.
type Group struct {
	Category script.Category
	Title    string
	Words    []session.SelectedWord
}

// Engine holds the original words and story plus the working replacements.
type Engine struct {
	mu       sync.Mutex
	original []session.SelectedWord
	words    []session.SelectedWord
	story    string
	current  string
}

// New starts a remix of story, whose marked words came from original.
func New(original []session.SelectedWord, story string) *Engine {
	return &Engine{
		original: append([]session.SelectedWord(nil), original...),
		words:    append([]session.SelectedWord(nil), original...),
		story:    story,
		current:  story,
	}
}

// Substitute replaces the word of categoryID and returns the re-rendered
// story. Unknown ids leave the words untouched.
//
// Replacements are keyed by the original word's text, so when two original
// words share the same text the later one decides the rendering of both.
func (e *Engine) Substitute(categoryID int, text string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.words {
		if e.words[i].CategoryID == categoryID {
			e.words[i].Text = text
		}
	}

	replacements := make(map[string]string, len(e.original))
	for i, w := range e.original {
		replacements[w.Text] = e.words[i].Text
	}

	e.current = markedWord.ReplaceAllStringFunc(e.story, func(token string) string {
		inner := token[2 : len(token)-2]
		if r := replacements[inner]; r != "" {
			return "**" + r + "**"
		}
		return token
	})
	return e.current
}

// Story returns the story as currently remixed.
func (e *Engine) Story() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Original returns the story the remix started from.
func (e *Engine) Original() string { return e.story }

// Words returns the working word list.
func (e *Engine) Words() []session.SelectedWord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]session.SelectedWord(nil), e.words...)
}

// ByCategory groups the working words under each category, in the order
// the categories are listed in script.Categories.
func (e *Engine) ByCategory() []Group {
	e.mu.Lock()
	defer e.mu.Unlock()

	groups := make([]Group, 0, len(script.Categories))
	for _, c := range script.Categories {
		g := Group{Category: c, Title: c.Title()}
		for _, w := range e.words {
			if w.Category == c {
				g.Words = append(g.Words, w)
			}
		}
		groups = append(groups, g)
	}
	return groups
}
