package link

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vainnor/freq-bridge/oauth"
)

const codeLength = 6

// PendingLink is an issued, not-yet-confirmed login waiting for a simulator
// client to enter its code.
type PendingLink struct {
	Code     string
	IssuedAt time.Time
	User     *discordgo.User
	Tokens   *oauth.Tokens
}

// PendingStore holds confirmation codes between the OAuth callback and the
// in-sim confirmation. Codes are single-use and expire after the configured
// TTL.
type PendingStore struct {
	mu      sync.Mutex
	pending map[string]*PendingLink
	ttl     time.Duration

	// Overridable for tests
	now func() time.Time
}

func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{
		pending: make(map[string]*PendingLink),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a fresh confirmation code for the given user and tokens.
// A code colliding with a currently pending one is regenerated.
func (s *PendingStore) Issue(user *discordgo.User, tokens *oauth.Tokens) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropExpired()

	var code string
	for {
		var err error
		code, err = generateCode()
		if err != nil {
			return "", fmt.Errorf("error generating confirmation code: %v", err)
		}
		if _, exists := s.pending[code]; !exists {
			break
		}
	}

	s.pending[code] = &PendingLink{
		Code:     code,
		IssuedAt: s.now(),
		User:     user,
		Tokens:   tokens,
	}
	return code, nil
}

// Consume removes and returns the pending link for a code. A code is usable
// at most once; unknown and expired codes report false.
func (s *PendingStore) Consume(code string) (*PendingLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[code]
	if !ok {
		return nil, false
	}
	delete(s.pending, code)

	if s.now().Sub(p.IssuedAt) > s.ttl {
		return nil, false
	}
	return p, true
}

// dropExpired removes stale entries. Caller must hold the lock.
func (s *PendingStore) dropExpired() {
	now := s.now()
	for code, p := range s.pending {
		if now.Sub(p.IssuedAt) > s.ttl {
			delete(s.pending, code)
		}
	}
}

// maxUnbiasedByte is the largest multiple of 26 that fits in a byte. Bytes
// at or above it are rejected so every letter is equally likely.
const maxUnbiasedByte = 234

// generateCode returns a random 6-letter uppercase code drawn uniformly
// from A-Z.
func generateCode() (string, error) {
	code := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(code) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			letter, ok := letterFromByte(b)
			if !ok {
				continue
			}
			code = append(code, letter)
			if len(code) == codeLength {
				break
			}
		}
	}
	return string(code), nil
}

func letterFromByte(b byte) (byte, bool) {
	if b >= maxUnbiasedByte {
		return 0, false
	}
	return 'A' + b%26, true
}
