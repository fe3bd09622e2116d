package prefix

import (
	"context"
	"errors"
	"fmt"

	"harvest/bot/common"
	"harvest/models"
	"harvest/service"
)

func (f *Feature) handleShow(ctx context.Context, c *common.Context) error {
	guildID, err := c.GuildIDInt()
	if err != nil {
		return common.NewSystemError(err, "Failed to parse guild ID")
	}

	prefixes, err := f.settings.Prefixes(ctx, guildID)
	if err != nil {
		return common.NewSystemError(err, "Failed to load prefixes")
	}

	_, err = c.Neutral(common.FormatPrefixes(prefixes))
	return err
}

func (f *Feature) handleSet(ctx context.Context, c *common.Context) error {
	guildID, prefix, err := f.prefixArgs(c)
	if err != nil {
		return err
	}

	prefixes := []string{prefix}
	if _, err := f.settings.Update(ctx, guildID, models.SettingsUpdate{Prefixes: &prefixes}); err != nil {
		return f.wrap(err, "Failed to set prefix")
	}

	_, err = c.Approve(fmt.Sprintf("The prefix has been set to `%s`", prefix))
	return err
}

func (f *Feature) handleAdd(ctx context.Context, c *common.Context) error {
	guildID, prefix, err := f.prefixArgs(c)
	if err != nil {
		return err
	}

	_, err = f.settings.AddPrefix(ctx, guildID, prefix)
	if errors.Is(err, service.ErrPrefixInUse) {
		_, err = c.Warn("That prefix is already in use!")
		return err
	}
	if err != nil {
		return f.wrap(err, "Failed to add prefix")
	}

	_, err = c.Approve(fmt.Sprintf("The prefix `%s` has been added", prefix))
	return err
}

func (f *Feature) handleRemove(ctx context.Context, c *common.Context) error {
	guildID, prefix, err := f.prefixArgs(c)
	if err != nil {
		return err
	}

	_, err = f.settings.RemovePrefix(ctx, guildID, prefix)
	if errors.Is(err, service.ErrPrefixNotFound) {
		_, err = c.Warn("That prefix is not in use!")
		return err
	}
	if err != nil {
		return f.wrap(err, "Failed to remove prefix")
	}

	_, err = c.Approve(fmt.Sprintf("The prefix `%s` has been removed", prefix))
	return err
}

func (f *Feature) handleReset(ctx context.Context, c *common.Context) error {
	guildID, err := c.GuildIDInt()
	if err != nil {
		return common.NewSystemError(err, "Failed to parse guild ID")
	}

	if _, err := f.settings.ResetPrefixes(ctx, guildID); err != nil {
		return common.NewSystemError(err, "Failed to reset prefixes")
	}

	_, err = c.Approve(fmt.Sprintf("The prefixes have been reset to the default `%s`", f.defaultPrefix))
	return err
}

// prefixArgs returns the guild and the required prefix argument
func (f *Feature) prefixArgs(c *common.Context) (int64, string, error) {
	prefix, ok := c.Arg(0)
	if !ok {
		return 0, "", common.MissingArgument("prefix")
	}

	guildID, err := c.GuildIDInt()
	if err != nil {
		return 0, "", common.NewSystemError(err, "Failed to parse guild ID")
	}
	return guildID, prefix, nil
}

// wrap turns validation failures into argument errors and anything else into a system error
func (f *Feature) wrap(err error, logMessage string) error {
	if errors.Is(err, service.ErrInvalidPrefix) {
		return common.InvalidArgument("prefix", fmt.Sprintf("Prefixes must be 1 to %d characters with no spaces.", service.MaxPrefixLength))
	}
	return common.NewSystemError(err, logMessage)
}
