package common

import (
	"context"
	"strings"
	"time"
)

// HandlerFunc runs one command invocation
type HandlerFunc func(ctx context.Context, c *Context) error

// Cooldown limits how often one user may run a command
type Cooldown struct {
	Rate int           // Uses allowed per window
	Per  time.Duration // Window length
}

// Command describes a prefix command
type Command struct {
	Name        string
	Aliases     []string
	Usage       string // Argument signature shown in help, e.g. "[member]"
	Description string
	Cooldown    *Cooldown

	// RequiredPermissions is a discordgo permission bitmask checked in the channel
	RequiredPermissions int64

	Handler     HandlerFunc
	Subcommands []*Command

	parent  *Command
	feature *Feature
}

// Feature groups commands for help output
type Feature struct {
	Name        string
	Description string
	Hidden      bool // Left out of help listings
	OwnerOnly   bool
	Commands    []*Command
}

// Bind links commands to their feature and parents. Call it once after
// building a feature.
func (f *Feature) Bind() *Feature {
	for _, cmd := range f.Commands {
		cmd.bind(f, nil)
	}
	return f
}

func (c *Command) bind(feature *Feature, parent *Command) {
	c.feature = feature
	c.parent = parent
	for _, sub := range c.Subcommands {
		sub.bind(feature, c)
	}
}

// Feature returns the feature the command belongs to
func (c *Command) Feature() *Feature {
	return c.feature
}

// Parent returns the group command, or nil for top-level commands
func (c *Command) Parent() *Command {
	return c.parent
}

// QualifiedName includes parent names, e.g. "prefix add"
func (c *Command) QualifiedName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.QualifiedName() + " " + c.Name
}

// Matches reports whether name invokes the command, ignoring case
func (c *Command) Matches(name string) bool {
	if strings.EqualFold(c.Name, name) {
		return true
	}
	for _, alias := range c.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// Subcommand returns the subcommand invoked by name, if any
func (c *Command) Subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Matches(name) {
			return sub
		}
	}
	return nil
}

// OwnerOnly reports whether the command's feature is restricted to bot owners
func (c *Command) OwnerOnly() bool {
	return c.feature != nil && c.feature.OwnerOnly
}
