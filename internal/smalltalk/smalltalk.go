// Package smalltalk answers conversational filler without touching retrieval
// or generation. It canonicalizes the question text with a fixed ordered rule
// table and looks the result up against canned greeting/meta-question answers.
// Everything in this package is deterministic and makes no network calls.
package smalltalk

import (
	"regexp"
	"strings"
)

// RefusalAnswer is returned for any question containing a profanity token.
// The profanity check takes precedence over every other classification.
const RefusalAnswer = "I am a Chatbot that is trained to not respond to questions that contain profanities."

// rule is one literal space-bounded substring replacement. Rules are applied
// in slice order; later rules observe the effects of earlier ones.
type rule struct {
	from, to string
}

// Normalization rules, in application order: filler-phrase removal, text-slang
// expansion, contraction expansion, spelling fixes, synonyms and brand-name
// canonicalization.
var rules = []rule{
	// Filler phrases
	{" actual ", " "},
	{" actually ", " "},
	{" can you please ", " "},
	{" complete ", " "},
	{" completely ", " "},
	{" for me ", " "},
	{" i want to know ", " "},
	{" incredibly ", " "},
	{" ok ", " "},
	{" please ", " "},
	{" real ", " "},
	{" really ", " "},
	{" tell me ", " "},

	// Text slang
	{" r ", " are "},
	{" u ", " you "},
	{" ur ", " your "},
	{" y ", " why "},

	// Contractions
	{" dont ", " do not "},
	{" im ", " i am "},
	{" theyre ", " they are "},
	{" whats ", " what is "},
	{" youre ", " you are "},

	// Spelling
	{" ne ", " me "},

	// Synonyms
	{" android ", " robot "},
	{" clever ", " smart "},
	{" color ", " colour "},
	{" dumb ", " an idiot "},
	{" fib ", " lie "},
	{" fibs ", " lies "},
	{" intelligent ", " smart "},
	{" need ", " want "},

	// Customer brand names
	{" cloud kicks ", " cloudcix "},
	{" cloud six ", " cloudcix "},
	{" cloudkicks ", " cloudcix "},
	{" cloudsix ", " cloudcix "},
	{" energy wise ", " energywise "},
	{" energywise ", " energywise ireland "},
}

// profanity tokens are matched as raw substrings against the space-padded
// normalized question. Space-bounded entries match whole words only; unpadded
// entries catch compounds.
var profanity = []string{
	" arse ",
	" bastard ",
	"bollocks",
	"bullshit",
	" cunt ",
	"dipshit",
	" feck ",
	" focker ",
	" fuck ",
	"fucker",
	"fuckface",
	" fucking ",
	" nigga ",
	" nigger",
	" shit ",
	" shite ",
	"shithead",
	"shitting",
	" whore ",
}

// canned maps a fully normalized question to its canned answer. Built once at
// init from the category groups below and never mutated.
var canned = map[string]string{}

func init() {
	groups := []struct {
		questions []string
		answer    string
	}{
		{
			[]string{"hey", "hallo", "hello", "hi", "hiya", "howdy", "hullo", "ola", "whatsup"},
			"Hello to you too! How can I help you?",
		},
		{
			[]string{"how are you", "how do you do", "how is it going", "what is up"},
			"I am well thank you and hope that you are well also.",
		},
		{
			[]string{"bye", "bye bye", "goodbye", "goodbye for now", "i am off"},
			"Goodbye for now, see you later.",
		},
		{
			[]string{"good morning", "morning"},
			"Good morning to you also.",
		},
		{
			[]string{"good evening", "evening"},
			"Good evening to you too.",
		},
		{
			[]string{"do you have a name", "what is your name", "what should i call you", "what can i call you", "who are you", "your name"},
			"I don't have a name, but call me chatbot if you like! Do you have a question for me?",
		},
		{
			[]string{
				"are you a idiot", "are you an idiot", "are you retarded", "are you stupid",
				"you are an idiot", "you are a idiot", "you are retarded", "you are stupid",
			},
			"No actually, I'm quite clever! My job is to help you by answering your questions. Why not test me out?",
		},
		{
			[]string{"i do not like you", "i hate you"},
			"I'm very sorry to hear that. I am trying my best.",
		},
		{
			[]string{"are you a human", "are you a person", "are you human"},
			"I am not human, I am an artificial intelligence chatbot. My job is to help you by answering your questions.",
		},
		{
			[]string{"are you a sentient being", "are you human like", "are you sentient", "do you think like a human"},
			"I like to think that I am sentient, yes.",
		},
		{
			[]string{"are you a robot", "can you help me", "what are you", "what do you do", "what do you like to do", "what is a chatbot"},
			"I am a chatbot, which I suppose is a type of robot. My job is to help you by answering your questions.",
		},
		{
			[]string{"who built you", "who made you"},
			"I was built by CloudCIX.",
		},
		{
			[]string{
				"happy birthday", "what age are you", "what age you are", "what is your birthday",
				"when was your birthday", "when were you born", "when you were born", "your age",
			},
			"Age isn't really a thing with Chatbots!",
		},
		{
			[]string{"what is the meaning of everything", "what is the meaning of life", "what is the meaning of the universe"},
			"That's easy! The answer is 42.",
		},
		{
			[]string{"are you smart"},
			"I am very smart! Check me out by asking me questions.",
		},
		{
			[]string{"are you truthful", "do you hallucinate", "do you lie", "do you tell lies", "do you tell the truth"},
			"I am an AI system. I try to be truthful but I'm not infallible.",
		},
		{
			[]string{"help", "help me", "how can you help me", "what can you do"},
			"I'm here to answer your questions. Just ask any question you need answered.",
		},
		{
			[]string{"i want to speak to a human", "i want to speak to a person"},
			"Please call this phone number 021 2373060 to speak with a person.",
		},
	}
	for _, g := range groups {
		for _, q := range g.questions {
			canned[q] = g.answer
		}
	}
}

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var multiSpace = regexp.MustCompile(` +`)

// Normalize canonicalizes a question: lower-case, punctuation stripped, the
// rule table applied, repeated whitespace collapsed, leading/trailing space
// trimmed. Normalize is idempotent.
func Normalize(question string) string {
	q, _ := normalizePadded(question)
	return strings.TrimSpace(q)
}

// normalizePadded returns the space-padded normalized form (used for the
// profanity scan) and whether a profanity token matched.
func normalizePadded(question string) (string, bool) {
	q := strings.ToLower(question)

	var b strings.Builder
	b.Grow(len(q))
	for _, ch := range q {
		if !strings.ContainsRune(punctuation, ch) {
			b.WriteRune(ch)
		}
	}

	// Pad with boundary spaces so every word is space-bounded for the rules.
	q = " " + b.String() + " "

	for _, r := range rules {
		q = strings.ReplaceAll(q, r.from, r.to)
	}

	q = multiSpace.ReplaceAllString(q, " ")

	for _, token := range profanity {
		if strings.Contains(q, token) {
			return q, true
		}
	}
	return q, false
}

// Match normalizes the question and returns a canned answer when the question
// is smalltalk. A profanity match returns the fixed refusal answer before any
// greeting lookup. ok is false when the question is substantive and should go
// through retrieval and generation.
func Match(question string) (normalized string, answer string, ok bool) {
	q, profane := normalizePadded(question)
	normalized = strings.TrimSpace(q)
	if profane {
		return normalized, RefusalAnswer, true
	}
	if a, found := canned[normalized]; found {
		return normalized, a, true
	}
	return normalized, "", false
}
