package prefix

import (
	"harvest/bot/common"
	"harvest/service"

	"github.com/bwmarrin/discordgo"
)

// manageGuild is required for every prefix change
const manageGuild = discordgo.PermissionManageServer

type Feature struct {
	settings      service.SettingsService
	defaultPrefix string
}

func New(settings service.SettingsService, defaultPrefix string) *Feature {
	return &Feature{
		settings:      settings,
		defaultPrefix: defaultPrefix,
	}
}

// Feature returns the prefix configuration commands
func (f *Feature) Feature() *common.Feature {
	return &common.Feature{
		Name:        "Config",
		Description: "Configure the bot for this server.",
		Commands: []*common.Command{
			{
				Name:        "prefix",
				Description: "Show the prefixes the bot responds to in this server.",
				Handler:     f.handleShow,
				Subcommands: []*common.Command{
					{
						Name:                "set",
						Usage:               "<prefix>",
						Description:         "Replace every prefix with a single one.",
						RequiredPermissions: manageGuild,
						Handler:             f.handleSet,
					},
					{
						Name:                "add",
						Usage:               "<prefix>",
						Description:         "Add another prefix.",
						RequiredPermissions: manageGuild,
						Handler:             f.handleAdd,
					},
					{
						Name:                "remove",
						Usage:               "<prefix>",
						Description:         "Remove a prefix.",
						RequiredPermissions: manageGuild,
						Handler:             f.handleRemove,
					},
					{
						Name:                "reset",
						Description:         "Go back to the default prefix.",
						RequiredPermissions: manageGuild,
						Handler:             f.handleReset,
					},
				},
			},
		},
	}
}
