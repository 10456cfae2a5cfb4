package domain

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	cases := map[string]string{
		"  Paris ":    "paris",
		"PARIS":       "paris",
		"paris":       "paris",
		"\tNew York ": "new york",
		"":            "",
	}
	for in, want := range cases {
		if got := NormalizeAnswer(in); got != want {
			t.Fatalf("NormalizeAnswer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, a := range []string{"  Paris ", "42", "  Multi Word Answer  ", "jau-normalizuota"} {
		once := NormalizeAnswer(a)
		if twice := NormalizeAnswer(once); twice != once {
			t.Fatalf("normalize not idempotent: %q -> %q -> %q", a, once, twice)
		}
	}
}

func TestVerifyAnswerRoundTrip(t *testing.T) {
	for _, a := range []string{"Paris", "  42  ", "ANSWER with Spaces"} {
		if !VerifyAnswer(a, NormalizeAnswer(a)) {
			t.Fatalf("expected VerifyAnswer(%q, normalize(%q)) to hold", a, a)
		}
	}
	if VerifyAnswer("london", "paris") {
		t.Fatalf("expected mismatch to fail")
	}
	// Exact match only, no whitespace collapsing inside the answer.
	if VerifyAnswer("new  york", "new york") {
		t.Fatalf("expected inner whitespace to be significant")
	}
}
