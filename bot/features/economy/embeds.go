package economy

import (
	"fmt"
	"strconv"
	"strings"

	"harvest/bot/common"
	"harvest/models"
	"harvest/service"

	"github.com/bwmarrin/discordgo"
)

func begEmbed(result *service.BegResult, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: result.Outcome.Message,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Wallet balance: " + common.FormatMoney(result.NewWallet),
		},
	}
}

func balanceEmbed(view *models.BalanceView, displayName, iconURL string, color int) *discordgo.MessageEmbed {
	description := fmt.Sprintf("💰 **Wallet:** %s\n🏛️ **Bank:**   %s\n🔢 **Total:**  %s\n\n",
		common.FormatMoney(view.Wallet),
		common.FormatMoney(view.Bank),
		common.FormatMoney(view.Total))

	return &discordgo.MessageEmbed{
		Description: description,
		Color:       color,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    displayName + "'s Balance",
			IconURL: iconURL,
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("#%s of %d", view.Ordinal, view.TotalPlayers),
		},
	}
}

func leaderboardEmbed(entries []*models.LeaderboardEntry, color int) *discordgo.MessageEmbed {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = fmt.Sprintf("`%d.` %s **$%s**",
			entry.Position,
			common.UserMention(strconv.FormatInt(entry.UserID, 10)),
			common.FormatBalance(entry.Total))
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Leaderboard",
		Description: strings.Join(lines, "\n"),
		Color:       color,
	}
}
