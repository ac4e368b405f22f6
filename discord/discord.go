package discord

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/vainnor/freq-bridge/config"
)

// Session wraps the bot gateway connection and exposes the narrow set of
// guild operations the rest of the process needs.
type Session struct {
	s        *discordgo.Session
	servers  []config.DiscordServer
	resolver *Resolver
}

// Connect opens the bot gateway session. Managed guilds get their lounge
// channel reconciled every time they become available.
func Connect(botToken string, servers []config.DiscordServer) (*Session, error) {
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %v", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildVoiceStates

	d := &Session{s: s, servers: servers}
	d.resolver = NewResolver(d)
	s.AddHandler(d.guildCreate)

	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("error connecting to Discord: %v", err)
	}
	log.Printf("Connected to Discord")
	return d, nil
}

func (d *Session) Close() {
	if err := d.s.Close(); err != nil {
		log.Printf("Error closing Discord session: %v", err)
	}
}

// guildCreate fires when a guild becomes available, including after gateway
// reconnects. Managed guilds get their lounge channel created if absent.
func (d *Session) guildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	for _, server := range d.servers {
		if server.ServerID != g.ID {
			continue
		}
		log.Printf("Guild %s (%s) is available", g.Name, g.ID)
		if _, err := d.resolver.ResolveOrCreate(server.ServerID, server.ChannelCategoryID, server.LoungeChannelName, server.ChannelBitrate); err != nil {
			log.Printf("Error ensuring lounge channel in guild %s: %v", g.ID, err)
		}
		return
	}
}

// GuildChannels lists all channels of a guild.
func (d *Session) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return d.s.GuildChannels(guildID)
}

// CreateVoiceChannel creates a voice channel under the given category.
func (d *Session) CreateVoiceChannel(guildID, name, parentID string, bitrate int) (*discordgo.Channel, error) {
	return d.s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		Bitrate:  bitrate,
		ParentID: parentID,
	})
}

// DenyVoiceActivation denies voice-activity transmission for @everyone on a
// channel, enforcing push-to-talk.
func (d *Session) DenyVoiceActivation(guildID, channelID string) error {
	// The @everyone role id equals the guild id.
	return d.s.ChannelPermissionSet(channelID, guildID, discordgo.PermissionOverwriteTypeRole, 0, discordgo.PermissionVoiceUseVAD)
}

// VoiceChannel reports the voice channel a user currently occupies in a
// guild, from gateway state.
func (d *Session) VoiceChannel(guildID, userID string) (string, bool) {
	g, err := d.s.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}

// ChannelParent returns the category a channel is parented to.
func (d *Session) ChannelParent(channelID string) (string, error) {
	ch, err := d.s.State.Channel(channelID)
	if err != nil {
		ch, err = d.s.Channel(channelID)
		if err != nil {
			return "", err
		}
	}
	return ch.ParentID, nil
}

// ResolveOrCreate finds or creates the named voice channel in a guild.
func (d *Session) ResolveOrCreate(guildID, categoryID, name string, bitrate int) (*discordgo.Channel, error) {
	return d.resolver.ResolveOrCreate(guildID, categoryID, name, bitrate)
}

// MoveMember moves a guild member into a voice channel.
func (d *Session) MoveMember(guildID, userID, channelID string) error {
	return d.s.GuildMemberMove(guildID, userID, &channelID)
}

// AddMember joins a user to a guild using their own access token.
func (d *Session) AddMember(guildID, userID, accessToken string) error {
	return d.s.GuildMemberAdd(guildID, userID, &discordgo.GuildMemberAddParams{
		AccessToken: accessToken,
	})
}
