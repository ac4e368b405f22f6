package link

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/vainnor/freq-bridge/oauth"
)

var (
	// ErrUpstreamAuth reports a failed OAuth code exchange. Nothing is stored.
	ErrUpstreamAuth = errors.New("upstream authorization failed")

	// ErrInvalidOrExpiredCode reports a confirmation code that is unknown,
	// already used, or past its TTL. Nothing is stored.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired confirmation code")
)

type Exchanger interface {
	Exchange(ctx context.Context, authCode string) (*oauth.Tokens, *discordgo.User, error)
}

type LinkStore interface {
	Link(clientID, userID string) error
	Resolve(clientID string) (string, error)
}

type GuildJoiner interface {
	AddMember(guildID, userID, accessToken string) error
}

// Manager drives the two-step account linking flow: Login issues a
// confirmation code to an OAuth-authenticated Discord user, Confirm binds
// that code to a simulator client id.
type Manager struct {
	pending   *PendingStore
	links     LinkStore
	exchanger Exchanger
	joiner    GuildJoiner
	serverIDs []string
}

func NewManager(pending *PendingStore, links LinkStore, exchanger Exchanger, joiner GuildJoiner, serverIDs []string) *Manager {
	return &Manager{
		pending:   pending,
		links:     links,
		exchanger: exchanger,
		joiner:    joiner,
		serverIDs: serverIDs,
	}
}

// Login exchanges the authorization code and issues a confirmation code for
// the resulting identity. The code is shown to the user out-of-band and
// entered from the simulator client.
func (m *Manager) Login(ctx context.Context, authCode string) (*discordgo.User, string, error) {
	tokens, user, err := m.exchanger.Exchange(ctx, authCode)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}

	code, err := m.pending.Issue(user, tokens)
	if err != nil {
		return nil, "", err
	}

	log.Printf("Issued confirmation code for Discord user %s", user.ID)
	return user, code, nil
}

// Confirm consumes a confirmation code on behalf of a simulator client and
// stores the identity link. The subsequent guild join uses the user's own
// access token; a join failure is logged but does not undo the link, and can
// be retried via JoinServers.
func (m *Manager) Confirm(clientID, code string) (*discordgo.User, error) {
	p, ok := m.pending.Consume(code)
	if !ok {
		return nil, ErrInvalidOrExpiredCode
	}

	if err := m.links.Link(clientID, p.User.ID); err != nil {
		return nil, fmt.Errorf("error storing identity link: %v", err)
	}

	m.JoinServers(p.User.ID, p.Tokens.AccessToken)

	return p.User, nil
}

// JoinServers adds the user to every managed guild. Failures are logged
// per guild; already-joined users are a no-op on the platform side.
func (m *Manager) JoinServers(userID, accessToken string) {
	for _, guildID := range m.serverIDs {
		if err := m.joiner.AddMember(guildID, userID, accessToken); err != nil {
			log.Printf("Error adding user %s to guild %s: %v", userID, guildID, err)
		}
	}
}
