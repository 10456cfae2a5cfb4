package domain

import (
	"math/rand"
	"sync"
	"time"
)

// gameCodeAlphabet excludes visually ambiguous characters (O, 0, I, 1, L)
// so students can transcribe codes read off a projector.
const gameCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

const (
	GameCodeLength     = 6
	SessionTokenLength = 32
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewGameCode produces a 6-character join code. Uniqueness is not checked
// here; the alphabet and length keep collisions rare in classroom scale.
func NewGameCode() string {
	return randomString(gameCodeAlphabet, GameCodeLength)
}

// NewSessionToken produces a 32-character opaque team credential.
func NewSessionToken() string {
	return randomString(tokenAlphabet, SessionTokenLength)
}

func randomString(alphabet string, n int) string {
	rngMu.Lock()
	defer rngMu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}
