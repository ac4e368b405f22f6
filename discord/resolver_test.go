package discord

import (
	"errors"
	"strconv"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannelAPI struct {
	channels    []*discordgo.Channel
	listCalls   int
	createCalls int
	denyCalls   int
	denyErr     error
}

func (f *fakeChannelAPI) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	f.listCalls++
	return f.channels, nil
}

func (f *fakeChannelAPI) CreateVoiceChannel(guildID, name, parentID string, bitrate int) (*discordgo.Channel, error) {
	f.createCalls++
	ch := &discordgo.Channel{
		ID:       "ch-" + strconv.Itoa(f.createCalls),
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: parentID,
		Bitrate:  bitrate,
	}
	f.channels = append(f.channels, ch)
	return ch, nil
}

func (f *fakeChannelAPI) DenyVoiceActivation(guildID, channelID string) error {
	f.denyCalls++
	return f.denyErr
}

func TestResolveOrCreateReturnsExistingChannel(t *testing.T) {
	existing := &discordgo.Channel{ID: "ch-0", Name: "122.800", Type: discordgo.ChannelTypeGuildVoice}
	api := &fakeChannelAPI{channels: []*discordgo.Channel{existing}}
	r := NewResolver(api)

	ch, err := r.ResolveOrCreate("g1", "cat1", "122.800", 64000)
	require.NoError(t, err)
	assert.Same(t, existing, ch)
	assert.Equal(t, 0, api.createCalls)
	assert.Equal(t, 0, api.denyCalls)
}

func TestResolveOrCreateCreatesOnce(t *testing.T) {
	api := &fakeChannelAPI{}
	r := NewResolver(api)

	first, err := r.ResolveOrCreate("g1", "cat1", "122.800", 64000)
	require.NoError(t, err)
	assert.Equal(t, "122.800", first.Name)
	assert.Equal(t, "cat1", first.ParentID)
	assert.Equal(t, 64000, first.Bitrate)
	assert.Equal(t, 1, api.denyCalls)

	second, err := r.ResolveOrCreate("g1", "cat1", "122.800", 64000)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, api.createCalls, "second resolve must reuse the created channel")
}

func TestResolveOrCreateIgnoresNonVoiceChannels(t *testing.T) {
	text := &discordgo.Channel{ID: "t1", Name: "122.800", Type: discordgo.ChannelTypeGuildText}
	api := &fakeChannelAPI{channels: []*discordgo.Channel{text}}
	r := NewResolver(api)

	ch, err := r.ResolveOrCreate("g1", "cat1", "122.800", 64000)
	require.NoError(t, err)
	assert.NotSame(t, text, ch)
	assert.Equal(t, 1, api.createCalls)
}

func TestResolveOrCreatePermissionFailureIsNonFatal(t *testing.T) {
	api := &fakeChannelAPI{denyErr: errors.New("missing permission")}
	r := NewResolver(api)

	ch, err := r.ResolveOrCreate("g1", "cat1", "118.000", 64000)
	require.NoError(t, err, "the channel exists and is usable even without the overwrite")
	assert.Equal(t, "118.000", ch.Name)
}

func TestChannelName(t *testing.T) {
	freq := func(f int) *int { return &f }

	tests := []struct {
		name      string
		frequency *int
		suffix    string
		want      string
	}{
		{name: "tower frequency", frequency: freq(122800), want: "122.800"},
		{name: "round frequency keeps trailing zeros", frequency: freq(118000), want: "118.000"},
		{name: "suffix is appended", frequency: freq(122800), suffix: " MHz", want: "122.800 MHz"},
		{name: "no frequency maps to lounge verbatim", frequency: nil, want: "Lounge"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChannelName(tt.frequency, "Lounge", tt.suffix))
		})
	}
}
