package discord

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type ChannelAPI interface {
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
	CreateVoiceChannel(guildID, name, parentID string, bitrate int) (*discordgo.Channel, error)
	DenyVoiceActivation(guildID, channelID string) error
}

// Resolver finds or creates frequency voice channels. Creation is guarded by
// a per-(guild,name) lock so concurrent events for the same frequency cannot
// create duplicate channels.
type Resolver struct {
	api ChannelAPI

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewResolver(api ChannelAPI) *Resolver {
	return &Resolver{
		api:   api,
		locks: make(map[string]*sync.Mutex),
	}
}

// ResolveOrCreate returns the voice channel with the exact name in the guild,
// creating it under the category if it does not exist. New channels get a
// push-to-talk permission overwrite; a failure to set it is logged and the
// channel is still returned.
func (r *Resolver) ResolveOrCreate(guildID, categoryID, name string, bitrate int) (*discordgo.Channel, error) {
	lock := r.nameLock(guildID + "/" + name)
	lock.Lock()
	defer lock.Unlock()

	channels, err := r.api.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("error listing channels of guild %s: %v", guildID, err)
	}

	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildVoice && ch.Name == name {
			return ch, nil
		}
	}

	ch, err := r.api.CreateVoiceChannel(guildID, name, categoryID, bitrate)
	if err != nil {
		return nil, fmt.Errorf("error creating channel %s in guild %s: %v", name, guildID, err)
	}
	log.Printf("Created voice channel %s in guild %s", name, guildID)

	if err := r.api.DenyVoiceActivation(guildID, ch.ID); err != nil {
		log.Printf("Error setting permissions on channel %s: %v", name, err)
	}

	return ch, nil
}

func (r *Resolver) nameLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

// ChannelName derives the voice channel name for a frequency in integer Hz
// units, e.g. 122800 becomes "122.800". A nil frequency maps to the lounge.
func ChannelName(frequency *int, loungeName, suffix string) string {
	if frequency == nil {
		return loungeName
	}
	return fmt.Sprintf("%.3f", float64(*frequency)/1000) + suffix
}
