package common

import (
	"errors"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// RecordingSender is an in-memory MessageSender for tests
type RecordingSender struct {
	// RejectReferences fails any send that carries a message reference
	RejectReferences bool

	mu      sync.Mutex
	sent    []*discordgo.MessageSend
	deleted []string
	nextID  int
}

func (r *RecordingSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.RejectReferences && data.Reference != nil {
		return nil, errors.New("HTTP 400 Bad Request, unknown message")
	}

	copied := *data
	r.sent = append(r.sent, &copied)
	r.nextID++
	return &discordgo.Message{ID: strconv.Itoa(r.nextID), ChannelID: channelID}, nil
}

func (r *RecordingSender) ChannelMessageDelete(_ string, messageID string, _ ...discordgo.RequestOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, messageID)
	return nil
}

// Sent returns every message sent so far
func (r *RecordingSender) Sent() []*discordgo.MessageSend {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*discordgo.MessageSend, len(r.sent))
	copy(out, r.sent)
	return out
}

// Deleted returns the IDs of deleted messages
func (r *RecordingSender) Deleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.deleted))
	copy(out, r.deleted)
	return out
}

// LastEmbed returns the first embed of the most recent message, or nil
func (r *RecordingSender) LastEmbed() *discordgo.MessageEmbed {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 || len(r.sent[len(r.sent)-1].Embeds) == 0 {
		return nil
	}
	return r.sent[len(r.sent)-1].Embeds[0]
}
