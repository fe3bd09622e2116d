package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"harvest/bot/common"
	"harvest/models"
	"harvest/service"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleBeg(ctx context.Context, c *common.Context) error {
	userID, err := c.AuthorIDInt()
	if err != nil {
		return common.NewSystemError(err, "Failed to parse author ID")
	}

	result, err := f.beg.Beg(ctx, userID)
	if err != nil {
		return common.NewSystemError(err, "Failed to beg")
	}

	_, err = c.SendEmbed(begEmbed(result, c.Color))
	return err
}

func (f *Feature) handleOpenAccount(ctx context.Context, c *common.Context) error {
	userID, err := c.AuthorIDInt()
	if err != nil {
		return common.NewSystemError(err, "Failed to parse author ID")
	}

	account, err := f.ledger.OpenAccount(ctx, userID)
	if err != nil && !service.IsDomainError(err) {
		return common.NewSystemError(err, "Failed to open bank account")
	}

	var already *service.AlreadyHasAccountError
	var insufficient *service.InsufficientFundsError
	switch {
	case errors.As(err, &already):
		_, err = c.Neutral(fmt.Sprintf("You already have a bank account with **%s** in it.", common.FormatMoney(already.Bank)))
	case errors.As(err, &insufficient):
		_, err = c.Neutral(fmt.Sprintf("You need **%s** more in your wallet to open a bank account.", common.FormatMoney(insufficient.Shortfall)))
	case account == nil:
		return common.NewSystemError(err, "Open account returned no account")
	default:
		_, err = c.Neutral(openedMessage(account))
	}
	return err
}

func (f *Feature) handleBalance(ctx context.Context, c *common.Context) error {
	target := c.Message.Member
	user := c.Message.Author

	if arg, ok := c.Arg(0); ok {
		member, err := c.ResolveMember("member", arg)
		if err != nil {
			return err
		}
		target, user = member, member.User
	}

	userID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return common.NewSystemError(err, "Failed to parse target ID")
	}

	view, err := f.ledger.GetBalanceView(ctx, userID)
	if errors.Is(err, service.ErrNoAccount) {
		if user.ID == c.AuthorID() {
			_, err = c.Neutral(fmt.Sprintf("You don't have an account yet! Use `%sopenaccount` to open a bank account.", c.CleanPrefix()))
		} else {
			_, err = c.Neutral(fmt.Sprintf("%s doesn't have an account yet!", common.UserMention(user.ID)))
		}
		return err
	}
	if err != nil {
		return common.NewSystemError(err, "Failed to load balance")
	}

	_, err = c.SendEmbed(balanceEmbed(view, common.DisplayName(target, user), avatarURL(user), c.Color))
	return err
}

func (f *Feature) handleLeaderboard(ctx context.Context, c *common.Context) error {
	entries, err := f.ledger.Leaderboard(ctx, LeaderboardSize)
	if err != nil {
		return common.NewSystemError(err, "Failed to load leaderboard")
	}

	if len(entries) == 0 {
		_, err = c.Neutral("Nobody has any money yet.")
		return err
	}

	_, err = c.SendEmbed(leaderboardEmbed(entries, c.Color))
	return err
}

func openedMessage(account *models.Account) string {
	return fmt.Sprintf("🏦 Bank account opened! %s has been moved into your bank.\nWallet: **%s**, Bank: **%s**",
		common.FormatMoney(models.OpenAccountCost),
		common.FormatMoney(account.Wallet),
		common.FormatMoney(account.Bank))
}

func avatarURL(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	return user.AvatarURL("")
}
