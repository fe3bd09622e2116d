package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"harvest/bot/common"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBotID   = "999"
	testGuildID = "1"
	testOwnerID = "10"
	testUserID  = "20"
)

type staticPrefixes map[int64][]string

func (p staticPrefixes) Prefixes(_ context.Context, guildID int64) ([]string, error) {
	if prefixes, ok := p[guildID]; ok {
		return prefixes, nil
	}
	return []string{";"}, nil
}

type fakeGuilds struct {
	ownerID string
	granted map[string]int64
}

func (g *fakeGuilds) GuildOwnerID(string) (string, error) {
	return g.ownerID, nil
}

func (g *fakeGuilds) HasPermissions(userID, _ string, permissions int64) (bool, error) {
	return g.granted[userID]&permissions == permissions, nil
}

type commandCounts struct {
	mu     sync.Mutex
	counts map[string]int
	failed map[string]int
}

func (r *commandCounts) RecordCommand(_ context.Context, command string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
		r.failed = make(map[string]int)
	}
	r.counts[command]++
	if failed {
		r.failed[command]++
	}
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	sender     *common.RecordingSender
	metrics    *commandCounts
	calls      map[string][]string
}

func newDispatcherFixture(prefixes staticPrefixes) *dispatcherFixture {
	f := &dispatcherFixture{
		sender:  &common.RecordingSender{},
		metrics: &commandCounts{},
		calls:   make(map[string][]string),
	}

	record := func(ctx context.Context, c *common.Context) error {
		f.calls[c.QualifiedName()] = c.Args
		return nil
	}

	games := &common.Feature{
		Name: "Games",
		Commands: []*common.Command{
			{Name: "ping", Aliases: []string{"p"}, Handler: record},
			{Name: "slow", Cooldown: &common.Cooldown{Rate: 1, Per: 3 * time.Second}, Handler: record},
			{
				Name:  "needs",
				Usage: "<value>",
				Handler: func(ctx context.Context, c *common.Context) error {
					return common.MissingArgument("value")
				},
			},
			{
				Name: "bad",
				Handler: func(ctx context.Context, c *common.Context) error {
					return common.InvalidArgument("amount", `Converting to "int" failed for parameter "amount".`)
				},
			},
			{
				Name: "broken",
				Handler: func(ctx context.Context, c *common.Context) error {
					return common.NewSystemError(errors.New("connection reset"), "Failed to do the thing")
				},
			},
			{
				Name: "explode",
				Handler: func(ctx context.Context, c *common.Context) error {
					panic("nil map")
				},
			},
			{
				Name:    "group",
				Handler: record,
				Subcommands: []*common.Command{
					{Name: "admin", RequiredPermissions: discordgo.PermissionManageServer, Handler: record},
				},
			},
		},
	}
	owner := &common.Feature{
		Name:      "Owner",
		OwnerOnly: true,
		Commands:  []*common.Command{{Name: "shutdown", Handler: record}},
	}

	if prefixes == nil {
		prefixes = staticPrefixes{}
	}

	f.dispatcher = NewDispatcher(DispatcherConfig{
		Sender:        f.sender,
		Guilds:        &fakeGuilds{ownerID: testOwnerID, granted: map[string]int64{testOwnerID: discordgo.PermissionManageServer}},
		Prefixes:      prefixes,
		Metrics:       f.metrics,
		Cooldowns:     NewCooldowns().WithClock(newFakeClock().Now),
		DefaultPrefix: ";",
		Color:         0x2b2d31,
		IsOwner:       func(id int64) bool { return fmt.Sprint(id) == testOwnerID },
	}, games, owner)
	f.dispatcher.SetBotUserID(testBotID)

	return f
}

func (f *dispatcherFixture) send(authorID, content string) {
	f.dispatcher.HandleMessage(context.Background(), &discordgo.Message{
		ID:        "500",
		ChannelID: "600",
		GuildID:   testGuildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	})
}

func TestMatchPrefix(t *testing.T) {
	prefix, ok := MatchPrefix(";beg", []string{"<@1> ", ";"})
	assert.True(t, ok)
	assert.Equal(t, ";", prefix)

	prefix, ok = MatchPrefix("<@1> beg", []string{"<@1> ", ";"})
	assert.True(t, ok)
	assert.Equal(t, "<@1> ", prefix)

	_, ok = MatchPrefix("beg", []string{";", ""})
	assert.False(t, ok)
}

func TestDispatcher_InvokesCommand(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";ping one two")

	assert.Equal(t, []string{"one", "two"}, f.calls["ping"])
	assert.Equal(t, 1, f.metrics.counts["ping"])
	assert.Zero(t, f.metrics.failed["ping"])
}

func TestDispatcher_CaseInsensitiveNamesAndAliases(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";PING")
	assert.Contains(t, f.calls, "ping")

	delete(f.calls, "ping")
	f.send(testUserID, ";P")
	assert.Contains(t, f.calls, "ping")
}

func TestDispatcher_IgnoresBotsAndUnknownCommands(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.dispatcher.HandleMessage(context.Background(), &discordgo.Message{
		GuildID: testGuildID,
		Content: ";ping",
		Author:  &discordgo.User{ID: "30", Bot: true},
	})
	f.send(testUserID, ";nope")
	f.send(testUserID, "ping")

	assert.Empty(t, f.calls)
	assert.Empty(t, f.sender.Sent())
}

func TestDispatcher_GuildPrefixes(t *testing.T) {
	f := newDispatcherFixture(staticPrefixes{1: {"!", "h."}})

	f.send(testUserID, ";ping")
	assert.Empty(t, f.calls)

	f.send(testUserID, "h.ping")
	assert.Contains(t, f.calls, "ping")
}

func TestDispatcher_MentionPrefix(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, "<@!"+testBotID+"> ping")
	assert.Contains(t, f.calls, "ping")
}

func TestDispatcher_BareMentionRepliesWithPrefixes(t *testing.T) {
	f := newDispatcherFixture(staticPrefixes{1: {"!", "h."}})

	f.send(testUserID, "  <@"+testBotID+">  ")

	embed := f.sender.LastEmbed()
	require.NotNil(t, embed)
	assert.Equal(t, "The current prefixes are: `!`, `h.`", embed.Description)
	assert.Equal(t, 0x2b2d31, embed.Color)
}

func TestDispatcher_Cooldown(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";slow")
	require.Contains(t, f.calls, "slow")
	delete(f.calls, "slow")

	f.send(testUserID, ";slow")
	assert.NotContains(t, f.calls, "slow")

	embed := f.sender.LastEmbed()
	require.NotNil(t, embed)
	assert.Contains(t, embed.Description, "You are on cooldown for **")

	// Other users have their own bucket
	f.send(testOwnerID, ";slow")
	assert.Contains(t, f.calls, "slow")
}

func TestDispatcher_GuildBucket(t *testing.T) {
	f := newDispatcherFixture(nil)

	for i := 0; i < guildCommandRate; i++ {
		f.send(testUserID, ";ping")
	}
	assert.Equal(t, guildCommandRate, f.metrics.counts["ping"])

	f.send(testUserID, ";ping")
	assert.Equal(t, guildCommandRate, f.metrics.counts["ping"], "command over the guild limit is dropped")
	assert.Empty(t, f.sender.Sent())

	f.send(testOwnerID, ";ping")
	assert.Equal(t, guildCommandRate+1, f.metrics.counts["ping"], "guild owner bypasses the limit")
}

func TestDispatcher_MissingArgumentSendsHelp(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";needs")

	embed := f.sender.LastEmbed()
	require.NotNil(t, embed)
	assert.Contains(t, embed.Description, "`;needs <value>`")
	assert.Equal(t, 1, f.metrics.failed["needs"])
}

func TestDispatcher_BadArgumentWarns(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";bad")

	embed := f.sender.LastEmbed()
	require.NotNil(t, embed)
	assert.Equal(t, `Converting to "int" failed for parameter "amount".`, embed.Description)
}

func TestDispatcher_SystemErrorsAreGeneric(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";broken")
	require.NotNil(t, f.sender.LastEmbed())
	assert.Equal(t, common.GenericErrorMessage, f.sender.LastEmbed().Description)

	f.send(testUserID, ";explode")
	assert.Equal(t, common.GenericErrorMessage, f.sender.LastEmbed().Description)
	assert.Equal(t, 1, f.metrics.failed["explode"])
}

func TestDispatcher_PermissionChecks(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";group admin x")
	assert.NotContains(t, f.calls, "group admin")
	assert.Empty(t, f.sender.Sent(), "check failures are silent")

	f.send(testOwnerID, ";group admin x")
	assert.Equal(t, []string{"x"}, f.calls["group admin"])

	f.send(testUserID, ";group other")
	assert.Equal(t, []string{"other"}, f.calls["group"])
}

func TestDispatcher_OwnerOnly(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";shutdown")
	assert.NotContains(t, f.calls, "shutdown")

	f.send(testOwnerID, ";shutdown")
	assert.Contains(t, f.calls, "shutdown")
}

func TestDispatcher_BotUserIDUpdatedWhileHandling(t *testing.T) {
	f := newDispatcherFixture(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			// Reconnects deliver a fresh Ready
			f.dispatcher.SetBotUserID(testBotID)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			f.send(testUserID, "<@"+testBotID+">")
			f.send(testUserID, ";nope")
		}
	}()
	wg.Wait()

	assert.Equal(t, testBotID, f.dispatcher.BotUserID())
	assert.Len(t, f.sender.Sent(), 200)
}

func TestDispatcher_NoMentionHandlingBeforeReady(t *testing.T) {
	f := newDispatcherFixture(nil)
	f.dispatcher = NewDispatcher(DispatcherConfig{
		Sender:        f.sender,
		Prefixes:      staticPrefixes{},
		Cooldowns:     NewCooldowns().WithClock(newFakeClock().Now),
		DefaultPrefix: ";",
	})

	assert.Empty(t, f.dispatcher.BotUserID())
	f.send(testUserID, "<@"+testBotID+">")
	assert.Empty(t, f.sender.Sent())
}
