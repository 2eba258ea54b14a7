package hub

import (
	"StoryBuilder/internal/remix"
	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
)

// Intent types sent by the client.
const (
	IntentChoose      = "choose"
	IntentAcknowledge = "acknowledge"
	IntentAdvance     = "advance"
	IntentReveal      = "reveal"
	IntentRemix       = "remix"
	IntentSubstitute  = "substitute"
	IntentRestart     = "restart"
)

// Intent is one user action.
type Intent struct {
	Type       string `json:"type"`
	Index      int    `json:"index,omitempty"`
	CategoryID int    `json:"category_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Update is pushed after every intent and when a story arrives.
type Update struct {
	Type      string                    `json:"type"`
	SessionID string                    `json:"session_id"`
	State     session.State             `json:"state"`
	Step      *StepView                 `json:"step,omitempty"`
	Choices   []session.DisplayedChoice `json:"choices,omitempty"`
	Progress  Progress                  `json:"progress"`
	Remix     *RemixView                `json:"remix,omitempty"`
}

// StepView is the renderable part of the current step.
type StepView struct {
	Kind        string `json:"kind"`
	Text        string `json:"text,omitempty"`
	ButtonLabel string `json:"button_label,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Visual      string `json:"visual,omitempty"`
	CategoryID  int    `json:"category_id,omitempty"`
	Category    string `json:"category,omitempty"`
}

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// RemixView carries the remixed story and the editable words.
type RemixView struct {
	Story  string       `json:"story"`
	Groups []RemixGroup `json:"groups"`
}

type RemixGroup struct {
	Title string                 `json:"title"`
	Words []session.SelectedWord `json:"words"`
}

func stepView(st script.Step) *StepView {
	v := &StepView{Kind: st.Kind.String(), Text: st.Text, ButtonLabel: st.ButtonLabel}
	if st.Kind == script.KindCategoryQuestion {
		v.Prompt = st.Question.Prompt
		v.Visual = st.Question.Visual
		v.CategoryID = st.Question.CategoryID
		v.Category = st.Question.Category.String()
	}
	return v
}

func remixView(e *remix.Engine) *RemixView {
	v := &RemixView{Story: e.Story()}
	for _, g := range e.ByCategory() {
		v.Groups = append(v.Groups, RemixGroup{Title: g.Title, Words: g.Words})
	}
	return v
}
