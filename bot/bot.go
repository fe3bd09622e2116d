package bot

import (
	"fmt"

	"harvest/bot/common"
	"harvest/bot/features/economy"
	"harvest/bot/features/prefix"
	"harvest/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token         string
	DefaultPrefix string
	PrimaryColor  int
	IsOwner       func(userID int64) bool
}

// Services are the domain services exposed through commands
type Services struct {
	Ledger   service.LedgerService
	Beg      service.BegService
	Settings service.SettingsService
}

type Bot struct {
	config     Config
	session    *discordgo.Session
	dispatcher *Dispatcher
}

// New connects to the gateway and starts handling messages
func New(config Config, services Services, metrics CommandRecorder) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	guilds := &sessionGuilds{session: dg}

	dispatcher := NewDispatcher(DispatcherConfig{
		Sender:        dg,
		Members:       guilds,
		Guilds:        guilds,
		Prefixes:      services.Settings,
		Metrics:       metrics,
		DefaultPrefix: config.DefaultPrefix,
		Color:         config.PrimaryColor,
		IsOwner:       config.IsOwner,
	},
		economy.New(services.Ledger, services.Beg).Feature(),
		prefix.New(services.Settings, config.DefaultPrefix).Feature(),
	)

	bot := &Bot{
		config:     config,
		session:    dg,
		dispatcher: dispatcher,
	}

	dg.AddHandler(bot.onReady)
	dg.AddHandler(dispatcher.onMessageCreate)

	if err := openSession(dg); err != nil {
		return nil, err
	}

	if dg.State != nil && dg.State.User != nil {
		dispatcher.SetBotUserID(dg.State.User.ID)
	}

	return bot, nil
}

// gatewaySession is the part of the session's lifecycle New drives
type gatewaySession interface {
	Open() error
	Close() error
}

// openSession opens the websocket, releasing the session if the handshake fails
func openSession(s gatewaySession) error {
	if err := s.Open(); err != nil {
		if closeErr := s.Close(); closeErr != nil {
			log.WithError(closeErr).Warn("Error closing session after failed open")
		}
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.dispatcher.SetBotUserID(r.User.ID)
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"userID": r.User.ID,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")
}

// sessionGuilds answers guild questions from the state cache, falling back to REST
type sessionGuilds struct {
	session *discordgo.Session
}

var (
	_ GuildInfo           = (*sessionGuilds)(nil)
	_ common.MemberLookup = (*sessionGuilds)(nil)
)

func (g *sessionGuilds) GuildOwnerID(guildID string) (string, error) {
	if guild, err := g.session.State.Guild(guildID); err == nil {
		return guild.OwnerID, nil
	}
	guild, err := g.session.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return guild.OwnerID, nil
}

func (g *sessionGuilds) HasPermissions(userID, channelID string, permissions int64) (bool, error) {
	granted, err := g.session.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to compute permissions: %w", err)
	}
	return granted&permissions == permissions, nil
}

func (g *sessionGuilds) Member(guildID, userID string) (*discordgo.Member, error) {
	if member, err := g.session.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	member, err := g.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	return member, nil
}

// GuildMembers copies the members held in the state cache
func (g *sessionGuilds) GuildMembers(guildID string) ([]*discordgo.Member, error) {
	return stateMembers(g.session.State, guildID)
}

func stateMembers(state *discordgo.State, guildID string) ([]*discordgo.Member, error) {
	if state == nil {
		return nil, discordgo.ErrNilState
	}
	guild, err := state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state: %w", guildID, err)
	}

	state.RLock()
	defer state.RUnlock()
	members := make([]*discordgo.Member, len(guild.Members))
	copy(members, guild.Members)
	return members, nil
}
