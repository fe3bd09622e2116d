package common

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

// MemberLookup resolves guild members for argument conversion
type MemberLookup interface {
	Member(guildID, userID string) (*discordgo.Member, error)
	// GuildMembers lists the members cached for the guild
	GuildMembers(guildID string) ([]*discordgo.Member, error)
}

// Context carries one command invocation
type Context struct {
	Sender  MessageSender
	Members MemberLookup
	Message *discordgo.Message

	GuildID     string
	Prefix      string // Prefix the message was invoked with
	InvokedWith string
	Command     *Command
	Args        []string

	DefaultPrefix string
	Color         int

	// SendHelp replies with help for a command; nil lists every command
	SendHelp func(ctx context.Context, c *Context, cmd *Command) error
}

// AuthorID returns the invoking user's ID
func (c *Context) AuthorID() string {
	if c.Message == nil || c.Message.Author == nil {
		return ""
	}
	return c.Message.Author.ID
}

// AuthorIDInt returns the invoking user's ID as a snowflake integer
func (c *Context) AuthorIDInt() (int64, error) {
	return strconv.ParseInt(c.AuthorID(), 10, 64)
}

// GuildIDInt returns the guild ID as a snowflake integer
func (c *Context) GuildIDInt() (int64, error) {
	return strconv.ParseInt(c.GuildID, 10, 64)
}

// QualifiedName returns the invoked command's full name, or "" before lookup
func (c *Context) QualifiedName() string {
	if c.Command == nil {
		return ""
	}
	return c.Command.QualifiedName()
}

// CleanPrefix returns the prefix for display, mentions become the default prefix
func (c *Context) CleanPrefix() string {
	if c.Prefix == "" || (len(c.Prefix) > 2 && c.Prefix[:2] == "<@") {
		return c.DefaultPrefix
	}
	return c.Prefix
}

// Arg returns the i-th argument, or "" and false when absent
func (c *Context) Arg(i int) (string, bool) {
	if i < 0 || i >= len(c.Args) {
		return "", false
	}
	return c.Args[i], true
}

// Reply sends a reply to the invoking message
func (c *Context) Reply(data *discordgo.MessageSend) (*discordgo.Message, error) {
	return SendReply(c.Sender, c.Message, data)
}

// SendEmbed replies with a single embed
func (c *Context) SendEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	if embed.Color == 0 {
		embed.Color = c.Color
	}
	return c.Reply(&discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

// Neutral replies with a plain embed
func (c *Context) Neutral(description string) (*discordgo.Message, error) {
	return c.SendEmbed(NewEmbed(description, c.Color))
}

// Approve replies with a success embed
func (c *Context) Approve(description string) (*discordgo.Message, error) {
	return c.SendEmbed(NewEmbed(description, c.Color))
}

// Warn replies with a warning embed
func (c *Context) Warn(description string) (*discordgo.Message, error) {
	return c.SendEmbed(NewEmbed(description, c.Color))
}

// WarnFor sends a warning and deletes it after delay
func (c *Context) WarnFor(description string, delay time.Duration) error {
	sent, err := c.Warn(description)
	if err != nil {
		return err
	}
	DeleteAfter(c.Sender, sent, delay)
	return nil
}
