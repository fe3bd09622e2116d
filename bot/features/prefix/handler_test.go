package prefix

import (
	"context"
	"fmt"
	"testing"

	"harvest/bot/common"
	"harvest/models"
	"harvest/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newContext(sender *common.RecordingSender, args ...string) *common.Context {
	return &common.Context{
		Sender: sender,
		Message: &discordgo.Message{
			ID:        "1",
			ChannelID: "2",
			GuildID:   "3",
			Author:    &discordgo.User{ID: "42"},
		},
		GuildID:       "3",
		Prefix:        ";",
		DefaultPrefix: ";",
		Args:          args,
	}
}

func TestPrefixCommandsRequireManageGuild(t *testing.T) {
	feature := New(new(service.MockSettingsService), ";").Feature().Bind()

	group := feature.Commands[0]
	assert.Zero(t, group.RequiredPermissions)
	for _, sub := range group.Subcommands {
		assert.Equal(t, int64(manageGuild), sub.RequiredPermissions, sub.Name)
	}
}

func TestHandleShow(t *testing.T) {
	settings := new(service.MockSettingsService)
	sender := &common.RecordingSender{}
	settings.On("Prefixes", mock.Anything, int64(3)).Return([]string{";"}, nil)

	require.NoError(t, New(settings, ";").handleShow(context.Background(), newContext(sender)))
	assert.Equal(t, "The current prefix is `;`", sender.LastEmbed().Description)
}

func TestHandleSet(t *testing.T) {
	settings := new(service.MockSettingsService)
	sender := &common.RecordingSender{}

	prefixes := []string{"!"}
	settings.On("Update", mock.Anything, int64(3), models.SettingsUpdate{Prefixes: &prefixes}).
		Return(&models.GuildSettings{GuildID: 3, Prefixes: prefixes}, nil)

	require.NoError(t, New(settings, ";").handleSet(context.Background(), newContext(sender, "!")))
	assert.Equal(t, "The prefix has been set to `!`", sender.LastEmbed().Description)
	settings.AssertExpectations(t)
}

func TestHandleSet_MissingArgument(t *testing.T) {
	settings := new(service.MockSettingsService)

	err := New(settings, ";").handleSet(context.Background(), newContext(&common.RecordingSender{}))

	var argErr *common.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, common.ArgumentMissing, argErr.Kind)
	settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSet_InvalidPrefix(t *testing.T) {
	settings := new(service.MockSettingsService)
	settings.On("Update", mock.Anything, int64(3), mock.Anything).
		Return(nil, fmt.Errorf("%w: prefix must be at most 10 characters", service.ErrInvalidPrefix))

	err := New(settings, ";").handleSet(context.Background(), newContext(&common.RecordingSender{}, "waytoolongprefix"))

	var argErr *common.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, common.ArgumentInvalid, argErr.Kind)
}

func TestHandleAdd(t *testing.T) {
	t.Run("added", func(t *testing.T) {
		settings := new(service.MockSettingsService)
		sender := &common.RecordingSender{}
		settings.On("AddPrefix", mock.Anything, int64(3), "h.").
			Return(&models.GuildSettings{GuildID: 3, Prefixes: []string{"!", "h."}}, nil)

		require.NoError(t, New(settings, ";").handleAdd(context.Background(), newContext(sender, "h.")))
		assert.Equal(t, "The prefix `h.` has been added", sender.LastEmbed().Description)
	})

	t.Run("duplicate", func(t *testing.T) {
		settings := new(service.MockSettingsService)
		sender := &common.RecordingSender{}
		settings.On("AddPrefix", mock.Anything, int64(3), "!").Return(nil, service.ErrPrefixInUse)

		require.NoError(t, New(settings, ";").handleAdd(context.Background(), newContext(sender, "!")))
		assert.Equal(t, "That prefix is already in use!", sender.LastEmbed().Description)
	})
}

func TestHandleRemove(t *testing.T) {
	t.Run("removed", func(t *testing.T) {
		settings := new(service.MockSettingsService)
		sender := &common.RecordingSender{}
		settings.On("RemovePrefix", mock.Anything, int64(3), "!").
			Return(&models.GuildSettings{GuildID: 3, Prefixes: []string{}}, nil)

		require.NoError(t, New(settings, ";").handleRemove(context.Background(), newContext(sender, "!")))
		assert.Equal(t, "The prefix `!` has been removed", sender.LastEmbed().Description)
	})

	t.Run("unknown", func(t *testing.T) {
		settings := new(service.MockSettingsService)
		sender := &common.RecordingSender{}
		settings.On("RemovePrefix", mock.Anything, int64(3), "?").Return(nil, service.ErrPrefixNotFound)

		require.NoError(t, New(settings, ";").handleRemove(context.Background(), newContext(sender, "?")))
		assert.Equal(t, "That prefix is not in use!", sender.LastEmbed().Description)
	})
}

func TestHandleReset(t *testing.T) {
	settings := new(service.MockSettingsService)
	sender := &common.RecordingSender{}
	settings.On("ResetPrefixes", mock.Anything, int64(3)).
		Return(&models.GuildSettings{GuildID: 3, Prefixes: []string{}}, nil)

	require.NoError(t, New(settings, ";").handleReset(context.Background(), newContext(sender)))
	assert.Equal(t, "The prefixes have been reset to the default `;`", sender.LastEmbed().Description)
}
