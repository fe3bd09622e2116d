package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"harvest/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	guildCommandRate   = 12
	guildCommandWindow = 2500 * time.Millisecond

	cooldownNoticeLifetime = 10 * time.Second
	defaultCommandTimeout  = 30 * time.Second
)

// PrefixSource returns the prefixes in effect for a guild
type PrefixSource interface {
	Prefixes(ctx context.Context, guildID int64) ([]string, error)
}

// GuildInfo answers the guild questions the dispatcher's checks need
type GuildInfo interface {
	GuildOwnerID(guildID string) (string, error)
	HasPermissions(userID, channelID string, permissions int64) (bool, error)
}

// CommandRecorder counts command executions
type CommandRecorder interface {
	RecordCommand(ctx context.Context, command string, failed bool)
}

// DispatcherConfig holds the dispatcher's collaborators
type DispatcherConfig struct {
	Sender        common.MessageSender
	Members       common.MemberLookup
	Guilds        GuildInfo
	Prefixes      PrefixSource
	Metrics       CommandRecorder
	Cooldowns     *Cooldowns
	DefaultPrefix string
	Color         int
	IsOwner       func(userID int64) bool
	Timeout       time.Duration // Per-command deadline
}

// Dispatcher turns guild messages into command invocations
type Dispatcher struct {
	config    DispatcherConfig
	features  []*common.Feature
	commands  []*common.Command
	botUserID atomic.Pointer[string] // Set on every gateway Ready
}

// NewDispatcher registers the features plus the built-in help command
func NewDispatcher(config DispatcherConfig, features ...*common.Feature) *Dispatcher {
	if config.Cooldowns == nil {
		config.Cooldowns = NewCooldowns()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultCommandTimeout
	}
	if config.IsOwner == nil {
		config.IsOwner = func(int64) bool { return false }
	}

	d := &Dispatcher{config: config}
	for _, feature := range append(features, d.helpFeature()) {
		feature.Bind()
		d.features = append(d.features, feature)
		d.commands = append(d.commands, feature.Commands...)
	}
	return d
}

// SetBotUserID records the bot's own ID for mention handling
func (d *Dispatcher) SetBotUserID(id string) {
	d.botUserID.Store(&id)
}

// Lookup finds a top-level command by name or alias, ignoring case
func (d *Dispatcher) Lookup(name string) *common.Command {
	for _, cmd := range d.commands {
		if cmd.Matches(name) {
			return cmd
		}
	}
	return nil
}

func (d *Dispatcher) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	d.HandleMessage(context.Background(), m.Message)
}

// HandleMessage processes one incoming message
func (d *Dispatcher) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	c := &common.Context{
		Sender:        d.config.Sender,
		Members:       d.config.Members,
		Message:       m,
		GuildID:       m.GuildID,
		DefaultPrefix: d.config.DefaultPrefix,
		Color:         d.config.Color,
		SendHelp:      d.sendHelp,
	}

	prefixes := d.guildPrefixes(ctx, m.GuildID)

	if d.isBareMention(m.Content) {
		if _, err := c.Neutral(common.FormatPrefixes(prefixes)); err != nil {
			log.WithFields(log.Fields{
				"guild_id": m.GuildID,
				"error":    err,
			}).Warn("Failed to send prefix reply")
		}
		return
	}

	prefix, ok := MatchPrefix(m.Content, append(d.mentionPrefixes(), prefixes...))
	if !ok {
		return
	}

	fields := strings.Fields(m.Content[len(prefix):])
	if len(fields) == 0 {
		return
	}

	cmd := d.Lookup(fields[0])
	if cmd == nil {
		return
	}

	if !d.allowGuild(m) {
		log.WithFields(log.Fields{
			"guild_id": m.GuildID,
			"user_id":  m.Author.ID,
		}).Debug("Guild command bucket exhausted, dropping command")
		return
	}

	args := fields[1:]
	for len(args) > 0 {
		sub := cmd.Subcommand(args[0])
		if sub == nil {
			break
		}
		cmd, args = sub, args[1:]
	}

	c.Prefix = prefix
	c.InvokedWith = fields[0]
	c.Command = cmd
	c.Args = args

	if !d.passesChecks(c) {
		return
	}

	if cmd.Cooldown != nil {
		key := fmt.Sprintf("cmd:%s:%s", cmd.QualifiedName(), m.Author.ID)
		if retryAfter, ok := d.config.Cooldowns.Take(key, cmd.Cooldown.Rate, cmd.Cooldown.Per); !ok {
			notice := fmt.Sprintf("You are on cooldown for **%s**", common.FormatCooldown(retryAfter))
			if err := c.WarnFor(notice, cooldownNoticeLifetime); err != nil {
				log.WithFields(log.Fields{
					"command": cmd.QualifiedName(),
					"error":   err,
				}).Warn("Failed to send cooldown notice")
			}
			return
		}
	}

	err := d.invoke(ctx, c)
	if d.config.Metrics != nil {
		d.config.Metrics.RecordCommand(ctx, cmd.QualifiedName(), err != nil)
	}
	if err != nil {
		d.handleError(ctx, c, err)
	}
}

// MatchPrefix returns the first candidate the content starts with
func MatchPrefix(content string, candidates []string) (string, bool) {
	for _, prefix := range candidates {
		if prefix != "" && strings.HasPrefix(content, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// BotUserID returns the bot's own ID, or "" before the first Ready
func (d *Dispatcher) BotUserID() string {
	if id := d.botUserID.Load(); id != nil {
		return *id
	}
	return ""
}

func (d *Dispatcher) mentionPrefixes() []string {
	botID := d.BotUserID()
	if botID == "" {
		return nil
	}
	return []string{"<@" + botID + "> ", "<@!" + botID + "> "}
}

func (d *Dispatcher) isBareMention(content string) bool {
	botID := d.BotUserID()
	if botID == "" {
		return false
	}
	content = strings.TrimSpace(content)
	return content == "<@"+botID+">" || content == "<@!"+botID+">"
}

func (d *Dispatcher) guildPrefixes(ctx context.Context, guildID string) []string {
	fallback := []string{d.config.DefaultPrefix}

	id, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil || d.config.Prefixes == nil {
		return fallback
	}

	prefixes, err := d.config.Prefixes.Prefixes(ctx, id)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to load guild prefixes, using default")
		return fallback
	}
	if len(prefixes) == 0 {
		return fallback
	}
	return prefixes
}

// allowGuild applies the per-guild command bucket; the guild owner is exempt
func (d *Dispatcher) allowGuild(m *discordgo.Message) bool {
	if d.config.Guilds != nil {
		ownerID, err := d.config.Guilds.GuildOwnerID(m.GuildID)
		if err == nil && ownerID == m.Author.ID {
			return true
		}
	}

	_, ok := d.config.Cooldowns.Take("guild:"+m.GuildID, guildCommandRate, guildCommandWindow)
	return ok
}

// passesChecks runs owner and permission checks; failures are silent
func (d *Dispatcher) passesChecks(c *common.Context) bool {
	cmd := c.Command

	if cmd.OwnerOnly() {
		authorID, err := c.AuthorIDInt()
		if err != nil || !d.config.IsOwner(authorID) {
			return false
		}
	}

	for check := cmd; check != nil; check = check.Parent() {
		if check.RequiredPermissions == 0 {
			continue
		}
		if d.config.Guilds == nil {
			return false
		}
		allowed, err := d.config.Guilds.HasPermissions(c.AuthorID(), c.Message.ChannelID, check.RequiredPermissions)
		if err != nil {
			log.WithFields(log.Fields{
				"user_id":    c.AuthorID(),
				"channel_id": c.Message.ChannelID,
				"error":      err,
			}).Warn("Failed to resolve member permissions")
			return false
		}
		if !allowed {
			return false
		}
	}
	return true
}

// invoke runs the handler, converting a panic into an error
func (d *Dispatcher) invoke(ctx context.Context, c *common.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"command": c.QualifiedName(),
				"panic":   r,
				"stack":   string(debug.Stack()),
			}).Error("Command handler panicked")
			err = fmt.Errorf("command %s panicked: %v", c.QualifiedName(), r)
		}
	}()

	if c.Command.Handler == nil {
		return d.sendHelp(ctx, c, c.Command)
	}
	return c.Command.Handler(ctx, c)
}

func (d *Dispatcher) handleError(ctx context.Context, c *common.Context, err error) {
	var argErr *common.ArgumentError
	if errors.As(err, &argErr) {
		var sendErr error
		switch argErr.Kind {
		case common.ArgumentMissing:
			sendErr = d.sendHelp(ctx, c, c.Command)
		default:
			_, sendErr = c.Warn(argErr.Message)
		}
		if sendErr != nil {
			log.WithFields(log.Fields{
				"command": c.QualifiedName(),
				"error":   sendErr,
			}).Warn("Failed to answer argument error")
		}
		return
	}

	message := common.HandleError(c, err)
	if message == "" {
		return
	}
	if _, sendErr := c.Warn(message); sendErr != nil {
		log.WithFields(log.Fields{
			"command": c.QualifiedName(),
			"error":   sendErr,
		}).Warn("Failed to send error reply")
	}
}
