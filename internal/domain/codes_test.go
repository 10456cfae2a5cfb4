package domain

import (
	"strings"
	"testing"
)

func TestNewGameCodeShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := NewGameCode()
		if len(code) != GameCodeLength {
			t.Fatalf("expected %d chars, got %q", GameCodeLength, code)
		}
		for _, ambiguous := range "O0I1L" {
			if strings.ContainsRune(code, ambiguous) {
				t.Fatalf("code %q contains ambiguous character %q", code, ambiguous)
			}
		}
		for _, r := range code {
			if !strings.ContainsRune(gameCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
	}
}

func TestNewSessionTokenShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := NewSessionToken()
		if len(token) != SessionTokenLength {
			t.Fatalf("expected %d chars, got %q", SessionTokenLength, token)
		}
		for _, r := range token {
			if !strings.ContainsRune(tokenAlphabet, r) {
				t.Fatalf("token %q contains %q outside alphabet", token, r)
			}
		}
		if seen[token] {
			t.Fatalf("token %q repeated within 100 draws", token)
		}
		seen[token] = true
	}
}
