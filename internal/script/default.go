package script

const storyPromptTemplate = "You are an expert storyteller for 7-year-old children in Malaysia. Your absolute top priorities are following instructions precisely.\n\n" +
	"You will be given a list of 9 words. You must create a short, happy, 3-4 sentence story that uses **every single word from the list exactly once**.\n\n" +
	"**CRITICAL RULES - NO EXCEPTIONS:**\n" +
	"1. **PRESENT TENSE ONLY:** Use simple present tense (e.g., 'the dog runs', 'she is happy'). Do NOT use past tense (e.g., 'ran', 'was happy').\n" +
	"2. **USE EACH WORD ONCE:** Every word in the list must appear in the story one time. No more, no less. Do not repeat words.\n" +
	"3. **FORMATTING:** When you use one of the words from the list, you MUST wrap it in double asterisks. For example, if 'cat' is a word, write it as **cat**.\n\n" +
	"Here is the list of words: {words}\n\n" +
	"Create the story now.\n\n" +
	"After the story, add a new line and then this exact sentence: (The words you chose are now in our story!)"

var defaultSteps = []Step{
	{
		Kind:        KindBotMessage,
		Text:        "Hello! I'm your Story Builder Bot! 👩‍🏫 We're going to make a fun story together! I will ask you to choose special words.\n\nRemember: naming words name people, animals, or things. Action words tell what someone does. Describing words tell what something is like.\n\nAre you ready to build our story?",
		ButtonLabel: "Let's Go! ✨",
	},
	question(1, CategoryNaming, "Choose a naming word (names an animal):", "🐾",
		Choice{"A: cat", "Yes! 'Cat' is a naming word. It names an animal. Well done! 🐱"},
		Choice{"B: jump", "Not quite! 'Jump' is an action word. It tells what someone does. Let's find a naming word that names an animal. Try again! 💪"}),
	question(2, CategoryDescribing, "Choose a describing word (tells what the cat is like):", "✨",
		Choice{"A: fluffy", "Excellent! 'Fluffy' is a describing word. It tells us what the cat is like. Great choice! 👏"},
		Choice{"B: run", "Good try! 'Run' is an action word. It tells what someone does. Let's find a describing word that tells what something is like. You can do it! 🌟"}),
	question(3, CategoryNaming, "Choose a naming word (names a place in school):", "🏫",
		Choice{"A: classroom", "Perfect! 'Classroom' is a naming word. It names a place. You're doing great! 🎯"},
		Choice{"B: happy", "Almost! 'Happy' is a describing word. It tells what someone is like. Let's find a naming word that names a place in school. Try again! ✨"}),
	question(4, CategoryAction, "Choose an action word (tells what the cat does):", "🏃",
		Choice{"A: jumps", "Wonderful! 'Jumps' is an action word. It tells what the cat does. Amazing work! 🌈"},
		Choice{"B: small", "Not this time! 'Small' is a describing word. It tells what something is like. Let's find an action word that tells what someone does. Keep going! 💫"}),
	question(5, CategoryNaming, "Choose a naming word (names a thing you can play with):", "🎾",
		Choice{"A: ball", "Yes! 'Ball' is a naming word. It names a thing. You're a word expert! 🏆"},
		Choice{"B: play", "Good thinking! 'Play' is an action word. It tells what someone does. Let's find a naming word that names a thing. Try once more! 🎯"}),
	question(6, CategoryDescribing, "Choose a describing word (tells what the ball is like):", "🌟",
		Choice{"A: round", "Super! 'Round' is a describing word. It tells us what the ball is like. Fantastic! 🎉"},
		Choice{"B: throw", "Nice try! 'Throw' is an action word. It tells what someone does. Let's find a describing word that tells what something is like. You're almost there! 💪"}),
	question(7, CategoryAction, "Choose an action word (tells what happens to the ball):", "⚡",
		Choice{"A: rolls", "Brilliant! 'Rolls' is an action word. It tells what happens. You know your words! ⭐"},
		Choice{"B: big", "Not quite! 'Big' is a describing word. It tells what something is like. Let's find an action word that tells what happens. You've got this! 🚀"}),
	question(8, CategoryNaming, "Choose a naming word (names a person who helps):", "👋",
		Choice{"A: friend", "Perfect! 'Friend' is a naming word. It names a person. You're amazing! 💝"},
		Choice{"B: kind", "Good effort! 'Kind' is a describing word. It tells what someone is like. Let's find a naming word that names a person. One more try! 🌈"}),
	question(9, CategoryDescribing, "Choose a describing word (tells how everyone feels):", "😊",
		Choice{"A: happy", "Excellent choice! 'Happy' is a describing word. It tells how everyone feels. You did it! 🎊"},
		Choice{"B: laugh", "Almost there! 'Laugh' is an action word. It tells what someone does. Let's find a describing word that tells how someone feels. Last one! 🌟"}),
	{
		Kind:           KindStoryReveal,
		PromptTemplate: storyPromptTemplate,
		ButtonLabel:    "✨ Let's See Our Amazing Story! ✨",
	},
	{
		Kind:        KindClosingMessage,
		Text:        "That was fun! 🎉 Would you like to create another story with different words? Every story is special and magical!",
		ButtonLabel: "🚀 Yes, Let's Go Again!",
	},
}

func question(id int, c Category, prompt, visual string, correct, wrong Choice) Step {
	return Step{
		Kind: KindCategoryQuestion,
		Question: Question{
			CategoryID: id,
			Category:   c,
			Prompt:     prompt,
			Visual:     visual,
			Correct:    correct,
			Wrong:      wrong,
		},
	}
}

var defaultScript = &Script{steps: defaultSteps}

// Default returns the built-in script shared by every session in the process.
func Default() *Script { return defaultScript }
