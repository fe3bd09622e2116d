package bot

import (
	"context"
	"fmt"
	"strings"

	"harvest/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (d *Dispatcher) helpFeature() *common.Feature {
	return &common.Feature{
		Name:   "Help",
		Hidden: true,
		Commands: []*common.Command{
			{
				Name:        "help",
				Usage:       "[command]",
				Description: "Show the available commands, or details about one.",
				Handler:     d.handleHelp,
			},
		},
	}
}

func (d *Dispatcher) handleHelp(ctx context.Context, c *common.Context) error {
	if len(c.Args) == 0 {
		return d.sendHelp(ctx, c, nil)
	}

	cmd := d.Lookup(c.Args[0])
	for _, name := range c.Args[1:] {
		if cmd == nil {
			break
		}
		cmd = cmd.Subcommand(name)
	}
	if cmd == nil || cmd.OwnerOnly() {
		return common.InvalidArgument("command", fmt.Sprintf("No command called \"%s\" found.", strings.Join(c.Args, " ")))
	}
	return d.sendHelp(ctx, c, cmd)
}

func (d *Dispatcher) sendHelp(_ context.Context, c *common.Context, cmd *common.Command) error {
	var description string
	if cmd == nil {
		description = d.HelpOverview(c.CleanPrefix())
	} else {
		description = CommandHelp(c.CleanPrefix(), cmd)
	}
	_, err := c.SendEmbed(&discordgo.MessageEmbed{Description: description})
	return err
}

// VisibleFeatures returns the features listed in help, in registration order
func (d *Dispatcher) VisibleFeatures() []*common.Feature {
	var visible []*common.Feature
	for _, feature := range d.features {
		if feature.Hidden || feature.OwnerOnly || feature.Name == "" || len(feature.Commands) == 0 {
			continue
		}
		visible = append(visible, feature)
	}
	return visible
}

// HelpOverview lists every visible command grouped by feature
func (d *Dispatcher) HelpOverview(prefix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Use `%shelp [command]` for more info on a command.\n", prefix)

	for _, feature := range d.VisibleFeatures() {
		names := make([]string, len(feature.Commands))
		for i, cmd := range feature.Commands {
			names[i] = "`" + cmd.Name + "`"
		}
		fmt.Fprintf(&b, "\n**%s**\n%s", feature.Name, strings.Join(names, " "))
	}
	return b.String()
}

// CommandHelp renders the signature, aliases, description and subcommands of a command
func CommandHelp(prefix string, cmd *common.Command) string {
	var b strings.Builder

	signature := prefix + cmd.QualifiedName()
	if cmd.Usage != "" {
		signature += " " + cmd.Usage
	}
	fmt.Fprintf(&b, "`%s`", signature)

	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: `%s`", strings.Join(cmd.Aliases, "`, `"))
	}
	if cmd.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", cmd.Description)
	}

	if len(cmd.Subcommands) > 0 {
		b.WriteString("\n\n**Subcommands**")
		for _, sub := range cmd.Subcommands {
			fmt.Fprintf(&b, "\n`%s", sub.Name)
			if sub.Usage != "" {
				fmt.Fprintf(&b, " %s", sub.Usage)
			}
			b.WriteString("`")
			if sub.Description != "" {
				fmt.Fprintf(&b, " %s", sub.Description)
			}
		}
	}
	return b.String()
}
