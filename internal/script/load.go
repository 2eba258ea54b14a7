package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileStep is the YAML shape of one step.
type fileStep struct {
	Type           string      `yaml:"type"`
	Text           string      `yaml:"text"`
	ButtonText     string      `yaml:"button_text"`
	CategoryID     int         `yaml:"category_id"`
	Category       string      `yaml:"category"`
	Visual         string      `yaml:"visual"`
	Correct        *fileChoice `yaml:"correct"`
	Wrong          *fileChoice `yaml:"wrong"`
	PromptTemplate string      `yaml:"prompt_template"`
}

type fileChoice struct {
	Text     string `yaml:"text"`
	Feedback string `yaml:"feedback"`
}

type fileScript struct {
	Steps []fileStep `yaml:"steps"`
}

// Load reads a YAML script from path and validates it.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML script document.
func Parse(data []byte) (*Script, error) {
	var doc fileScript
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	steps := make([]Step, 0, len(doc.Steps))
	for i, fs := range doc.Steps {
		st, err := fs.toStep()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, st)
	}
	return New(steps)
}

func (fs fileStep) toStep() (Step, error) {
	switch fs.Type {
	case "bot":
		return Step{Kind: KindBotMessage, Text: fs.Text, ButtonLabel: fs.ButtonText}, nil
	case "closing":
		return Step{Kind: KindClosingMessage, Text: fs.Text, ButtonLabel: fs.ButtonText}, nil
	case "story_reveal":
		return Step{Kind: KindStoryReveal, PromptTemplate: fs.PromptTemplate, ButtonLabel: fs.ButtonText}, nil
	case "category_question":
		cat, err := ParseCategory(fs.Category)
		if err != nil {
			return Step{}, err
		}
		if fs.Correct == nil || fs.Wrong == nil {
			return Step{}, fmt.Errorf("question %d needs both a correct and a wrong choice", fs.CategoryID)
		}
		return question(fs.CategoryID, cat, fs.Text, fs.Visual,
			Choice{Text: fs.Correct.Text, Feedback: fs.Correct.Feedback},
			Choice{Text: fs.Wrong.Text, Feedback: fs.Wrong.Feedback}), nil
	default:
		return Step{}, fmt.Errorf("unknown step type %q", fs.Type)
	}
}
