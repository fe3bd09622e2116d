package common

import (
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MessageSender is the subset of *discordgo.Session used to reply to messages
type MessageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// SendReply sends data as a reply to the message. If Discord rejects the
// reference (e.g. the message was deleted) the reply is sent without it.
func SendReply(sender MessageSender, message *discordgo.Message, data *discordgo.MessageSend) (*discordgo.Message, error) {
	data.Reference = message.Reference()
	data.AllowedMentions = &discordgo.MessageAllowedMentions{
		Parse:       []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		RepliedUser: true,
	}

	sent, err := sender.ChannelMessageSendComplex(message.ChannelID, data)
	if err == nil {
		return sent, nil
	}

	log.WithFields(log.Fields{
		"channel_id": message.ChannelID,
		"message_id": message.ID,
		"error":      err,
	}).Debug("Reply with reference failed, retrying without it")

	data.Reference = nil
	return sender.ChannelMessageSendComplex(message.ChannelID, data)
}

// DeleteAfter removes a sent message once the delay has elapsed
func DeleteAfter(sender MessageSender, sent *discordgo.Message, delay time.Duration) {
	if sent == nil {
		return
	}
	time.AfterFunc(delay, func() {
		if err := sender.ChannelMessageDelete(sent.ChannelID, sent.ID); err != nil {
			log.WithFields(log.Fields{
				"channel_id": sent.ChannelID,
				"message_id": sent.ID,
				"error":      err,
			}).Debug("Failed to delete message")
		}
	})
}

// NewEmbed builds a description-only embed in the given color
func NewEmbed(description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       color,
	}
}
