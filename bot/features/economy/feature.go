package economy

import (
	"time"

	"harvest/bot/common"
	"harvest/service"
)

// LeaderboardSize is how many accounts the leaderboard shows
const LeaderboardSize = 10

type Feature struct {
	ledger service.LedgerService
	beg    service.BegService
}

func New(ledger service.LedgerService, beg service.BegService) *Feature {
	return &Feature{
		ledger: ledger,
		beg:    beg,
	}
}

// Feature returns the economy commands
func (f *Feature) Feature() *common.Feature {
	return &common.Feature{
		Name:        "Economy",
		Description: "Earn money and keep track of it.",
		Commands: []*common.Command{
			{
				Name:        "beg",
				Description: "Beg for money. You might get some, or lose some.",
				Cooldown:    &common.Cooldown{Rate: 1, Per: 3 * time.Second},
				Handler:     f.handleBeg,
			},
			{
				Name:        "openaccount",
				Aliases:     []string{"openacc"},
				Description: "Open a bank account by moving $400 from your wallet.",
				Cooldown:    &common.Cooldown{Rate: 1, Per: 10 * time.Second},
				Handler:     f.handleOpenAccount,
			},
			{
				Name:        "balance",
				Aliases:     []string{"bal"},
				Usage:       "[member]",
				Description: "Show a member's wallet, bank and total balance with their rank.",
				Cooldown:    &common.Cooldown{Rate: 1, Per: 3 * time.Second},
				Handler:     f.handleBalance,
			},
			{
				Name:        "leaderboard",
				Aliases:     []string{"lb"},
				Description: "Show the richest players.",
				Cooldown:    &common.Cooldown{Rate: 1, Per: 5 * time.Second},
				Handler:     f.handleLeaderboard,
			},
		},
	}
}
