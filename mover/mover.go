package mover

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/vainnor/freq-bridge/config"
	"github.com/vainnor/freq-bridge/discord"
)

type LinkStore interface {
	Resolve(clientID string) (string, error)
}

type Platform interface {
	VoiceChannel(guildID, userID string) (string, bool)
	ChannelParent(channelID string) (string, error)
	ResolveOrCreate(guildID, categoryID, name string, bitrate int) (*discordgo.Channel, error)
	MoveMember(guildID, userID, channelID string) error
}

// Mover routes frequency change events to voice channel moves.
type Mover struct {
	links    LinkStore
	platform Platform
	servers  []config.DiscordServer
}

func New(links LinkStore, platform Platform, servers []config.DiscordServer) *Mover {
	return &Mover{
		links:    links,
		platform: platform,
		servers:  servers,
	}
}

// HandleChangeFrequency moves the linked user into the channel named after
// the new frequency. Events are ignored for sessions without a confirmed
// link, for users not currently in voice on any managed guild, and for users
// whose current channel sits outside the managed category.
func (m *Mover) HandleChangeFrequency(clientID string, from, to *int) {
	userID, err := m.links.Resolve(clientID)
	if err != nil {
		// Session never confirmed a link.
		return
	}

	var server *config.DiscordServer
	var currentChannelID string
	for i := range m.servers {
		if chID, ok := m.platform.VoiceChannel(m.servers[i].ServerID, userID); ok {
			server = &m.servers[i]
			currentChannelID = chID
			break
		}
	}
	if server == nil {
		// Do not pull users into voice who were not already in voice.
		return
	}

	parentID, err := m.platform.ChannelParent(currentChannelID)
	if err != nil {
		log.Printf("Error reading category of channel %s in guild %s: %v", currentChannelID, server.ServerID, err)
		return
	}
	if parentID != server.ChannelCategoryID {
		// Do not touch users in unrelated voice activity.
		return
	}

	name := discord.ChannelName(to, server.LoungeChannelName, server.ChannelNameSuffix)

	ch, err := m.platform.ResolveOrCreate(server.ServerID, server.ChannelCategoryID, name, server.ChannelBitrate)
	if err != nil {
		log.Printf("Error resolving channel %s for client %s: %v", name, clientID, err)
		return
	}

	if err := m.platform.MoveMember(server.ServerID, userID, ch.ID); err != nil {
		log.Printf("Error moving user %s to channel %s in guild %s: %v", userID, name, server.ServerID, err)
		return
	}
	log.Printf("Moved user %s to channel %s", userID, name)
}

// MoveToLounge sends the linked user back to the lounge channel. Used by the
// optional eviction hook.
func (m *Mover) MoveToLounge(clientID string) {
	m.HandleChangeFrequency(clientID, nil, nil)
}
