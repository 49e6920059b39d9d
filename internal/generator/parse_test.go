package generator

import (
	"reflect"
	"testing"
)

func TestParseQuestionsJSONArray(t *testing.T) {
	result := parseQuestions(`["What is home to you?", "Who inspires you?"]`)
	if result.FellBack {
		t.Fatalf("expected clean JSON parse, fell back: %s", result.Reason)
	}
	want := []string{"What is home to you?", "Who inspires you?"}
	if !reflect.DeepEqual(result.Questions, want) {
		t.Fatalf("expected %v, got %v", want, result.Questions)
	}
}

func TestParseQuestionsEmbeddedArrayWithProse(t *testing.T) {
	content := "Here are your questions:\n[\"One?\", \"Two?\"]\nEnjoy!"
	result := parseQuestions(content)
	if result.FellBack {
		t.Fatalf("expected embedded array to parse, fell back: %s", result.Reason)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %v", result.Questions)
	}
}

func TestParseQuestionsLineFallback(t *testing.T) {
	content := "1. What is your favorite season?\n2) \"Where did you grow up?\"\nJust some prose without a question mark\n\n'How do you relax?'"
	result := parseQuestions(content)
	if !result.FellBack {
		t.Fatalf("expected line fallback")
	}
	want := []string{
		"What is your favorite season?",
		"Where did you grow up?",
		"How do you relax?",
	}
	if !reflect.DeepEqual(result.Questions, want) {
		t.Fatalf("expected %v, got %v", want, result.Questions)
	}
}

func TestParseQuestionsBrokenArrayFallsBackToLines(t *testing.T) {
	content := "[not valid json\nBut is this a question?\n]"
	result := parseQuestions(content)
	if !result.FellBack {
		t.Fatalf("expected fallback for broken array")
	}
	if len(result.Questions) != 1 || result.Questions[0] != "But is this a question?" {
		t.Fatalf("expected the question line recovered, got %v", result.Questions)
	}
}

func TestParseQuestionsDropsEmptyEntries(t *testing.T) {
	result := parseQuestions(`["Keep me?", "", "   "]`)
	if len(result.Questions) != 1 {
		t.Fatalf("expected empty entries dropped, got %v", result.Questions)
	}
}
