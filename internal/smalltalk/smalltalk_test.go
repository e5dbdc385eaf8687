package smalltalk

import (
	"strings"
	"testing"
)

func TestMatchGreeting(t *testing.T) {
	normalized, answer, ok := Match("hello")
	if !ok {
		t.Fatalf("expected a canned match")
	}
	if normalized != "hello" {
		t.Fatalf("unexpected normalized question: %q", normalized)
	}
	if answer != "Hello to you too! How can I help you?" {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestMatchIsCaseAndPunctuationInsensitive(t *testing.T) {
	cases := []string{"Hello!", "HELLO", "hello...", "  hello  "}
	for _, q := range cases {
		_, answer, ok := Match(q)
		if !ok || answer != "Hello to you too! How can I help you?" {
			t.Fatalf("question %q: ok=%v answer=%q", q, ok, answer)
		}
	}
}

func TestMatchAppliesRuleTiers(t *testing.T) {
	cases := []struct {
		question string
		want     string
	}{
		// slang expansion
		{"how r u", "how are you"},
		// contraction expansion
		{"whats up", "what is up"},
		// filler removal
		{"please tell me what is up", "what is up"},
		// synonym then table hit
		{"are you clever", "are you smart"},
		// brand normalization
		{"cloud kicks pricing", "cloudcix pricing"},
	}
	for _, tc := range cases {
		normalized, _, _ := Match(tc.question)
		if normalized != tc.want {
			t.Fatalf("question %q: normalized to %q, want %q", tc.question, normalized, tc.want)
		}
	}
}

func TestMatchSlangExpandsToCannedEntry(t *testing.T) {
	// "how r u" -> "how are you" which is a canned entry.
	_, answer, ok := Match("how r u?")
	if !ok {
		t.Fatalf("expected a canned match")
	}
	if answer != "I am well thank you and hope that you are well also." {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestProfanityTakesPrecedence(t *testing.T) {
	// Even a question that would otherwise match the greeting table gets the
	// refusal when a profanity token is present.
	_, answer, ok := Match("hello you bastard")
	if !ok {
		t.Fatalf("expected a match")
	}
	if answer != RefusalAnswer {
		t.Fatalf("unexpected answer: %q", answer)
	}
}

func TestProfanityWordBounded(t *testing.T) {
	// "arsenal" must not trip the word-bounded " arse " token.
	_, _, ok := Match("who plays for arsenal")
	if ok {
		t.Fatalf("expected no match for a substantive question")
	}

	// Unbounded tokens catch compounds.
	_, answer, ok := Match("this is bullshittery")
	if !ok || answer != RefusalAnswer {
		t.Fatalf("expected refusal, got ok=%v answer=%q", ok, answer)
	}
}

func TestSubstantiveQuestionDoesNotMatch(t *testing.T) {
	normalized, answer, ok := Match("What is the price of the premium plan?")
	if ok || answer != "" {
		t.Fatalf("expected no match, got ok=%v answer=%q", ok, answer)
	}
	if normalized != "what is the price of the premium plan" {
		t.Fatalf("unexpected normalized question: %q", normalized)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	questions := []string{
		"Hello!",
		"Can you please tell me what the weather is like?",
		"how r u doing today",
		"I REALLY want to know about cloud six",
		"are you a sentient being?",
	}
	for _, q := range questions {
		once := Normalize(q)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", q, once, twice)
		}
	}
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := Normalize("hello    there   friend")
	if strings.Contains(got, "  ") {
		t.Fatalf("whitespace not collapsed: %q", got)
	}
}

func TestCannedTableCoverage(t *testing.T) {
	cases := []struct {
		question string
		answer   string
	}{
		{"goodbye", "Goodbye for now, see you later."},
		{"good morning", "Good morning to you also."},
		{"what is your name", "I don't have a name, but call me chatbot if you like! Do you have a question for me?"},
		{"who built you", "I was built by CloudCIX."},
		{"what is the meaning of life", "That's easy! The answer is 42."},
		{"help", "I'm here to answer your questions. Just ask any question you need answered."},
		{"i want to speak to a human", "Please call this phone number 021 2373060 to speak with a person."},
		{"do you lie", "I am an AI system. I try to be truthful but I'm not infallible."},
	}
	for _, tc := range cases {
		_, answer, ok := Match(tc.question)
		if !ok {
			t.Fatalf("question %q: expected a canned match", tc.question)
		}
		if answer != tc.answer {
			t.Fatalf("question %q: got %q, want %q", tc.question, answer, tc.answer)
		}
	}
}
