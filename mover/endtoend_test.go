package mover

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vainnor/freq-bridge/link"
	"github.com/vainnor/freq-bridge/oauth"
)

type staticExchanger struct{}

func (staticExchanger) Exchange(_ context.Context, _ string) (*oauth.Tokens, *discordgo.User, error) {
	return &oauth.Tokens{AccessToken: "C1"}, &discordgo.User{ID: "U1", Username: "pilot"}, nil
}

type sharedLinks map[string]string

func (s sharedLinks) Link(clientID, userID string) error {
	s[clientID] = userID
	return nil
}

func (s sharedLinks) Resolve(clientID string) (string, error) {
	return fakeLinks(s).Resolve(clientID)
}

type noopJoiner struct{}

func (noopJoiner) AddMember(_, _, _ string) error { return nil }

// Full path: login, confirm, then a frequency change while the user sits in
// the lounge results in exactly one channel resolve and one move.
func TestConfirmedSessionFollowsFrequencyChange(t *testing.T) {
	links := sharedLinks{}
	mgr := link.NewManager(link.NewPendingStore(10*time.Minute), links, staticExchanger{}, noopJoiner{}, []string{"g1"})

	user, code, err := mgr.Login(context.Background(), "auth-code")
	require.NoError(t, err)
	require.Equal(t, "U1", user.ID)

	_, err = mgr.Confirm("S1", code)
	require.NoError(t, err)

	userID, err := links.Resolve("S1")
	require.NoError(t, err)
	require.Equal(t, "U1", userID)

	platform := &fakePlatform{
		voice:   map[string]map[string]string{"g1": {"U1": "ch-lounge"}},
		parents: map[string]string{"ch-lounge": "cat1"},
	}
	m := New(links, platform, testServers)

	m.HandleChangeFrequency("S1", nil, freq(122800))

	require.Equal(t, []string{"122.800"}, platform.resolveCalls)
	require.Len(t, platform.moveCalls, 1)
	assert.Equal(t, moveCall{"g1", "U1", "ch-122.800"}, platform.moveCalls[0])
}
