package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/matchkey/internal/domain/model"
)

func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("team1", "", "first team name")
	cmd.Flags().String("team2", "", "second team name")
	cmd.Flags().String("date", "", "match date, e.g. 2025-06-01 or 01/06/2025")
	cmd.Flags().String("time", "", "kick-off time, e.g. 18:30 or 18h30")
	_ = cmd.MarkFlagRequired("team1")
	_ = cmd.MarkFlagRequired("team2")
}

func matchFromFlags(cmd *cobra.Command) model.Match {
	team1, _ := cmd.Flags().GetString("team1")
	team2, _ := cmd.Flags().GetString("team2")
	date, _ := cmd.Flags().GetString("date")
	tm, _ := cmd.Flags().GetString("time")
	return model.Match{Team1: team1, Team2: team2, Date: date, Time: tm}
}
