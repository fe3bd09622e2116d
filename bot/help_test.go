package bot

import (
	"testing"

	"harvest/bot/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpOverview_HidesOwnerAndHiddenFeatures(t *testing.T) {
	f := newDispatcherFixture(nil)

	overview := f.dispatcher.HelpOverview(";")

	assert.Contains(t, overview, "Use `;help [command]` for more info on a command.")
	assert.Contains(t, overview, "**Games**")
	assert.Contains(t, overview, "`ping`")
	assert.NotContains(t, overview, "Owner")
	assert.NotContains(t, overview, "shutdown")
	assert.NotContains(t, overview, "**Help**")

	names := make([]string, 0)
	for _, feature := range f.dispatcher.VisibleFeatures() {
		names = append(names, feature.Name)
	}
	assert.Equal(t, []string{"Games"}, names)
}

func TestCommandHelp(t *testing.T) {
	cmd := &common.Command{
		Name:        "balance",
		Aliases:     []string{"bal"},
		Usage:       "[member]",
		Description: "Show a balance.",
	}
	(&common.Feature{Name: "Economy", Commands: []*common.Command{cmd}}).Bind()

	help := CommandHelp("!", cmd)
	assert.Equal(t, "`!balance [member]`\nAliases: `bal`\n\nShow a balance.", help)
}

func TestCommandHelp_Subcommands(t *testing.T) {
	sub := &common.Command{Name: "add", Usage: "<prefix>", Description: "Add another prefix."}
	group := &common.Command{Name: "prefix", Subcommands: []*common.Command{sub}}
	(&common.Feature{Name: "Config", Commands: []*common.Command{group}}).Bind()

	assert.Contains(t, CommandHelp(";", group), "**Subcommands**\n`add <prefix>` Add another prefix.")
	assert.Equal(t, "`;prefix add <prefix>`\n\nAdd another prefix.", CommandHelp(";", sub))
}

func TestHelpCommand(t *testing.T) {
	f := newDispatcherFixture(nil)

	f.send(testUserID, ";help group admin")
	embed := f.sender.LastEmbed()
	require.NotNil(t, embed)
	assert.Contains(t, embed.Description, "`;group admin`")

	f.send(testUserID, ";help shutdown")
	assert.Equal(t, `No command called "shutdown" found.`, f.sender.LastEmbed().Description)

	f.send(testUserID, ";help")
	assert.Contains(t, f.sender.LastEmbed().Description, "**Games**")
}
