package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/analystexe/jobmatch/internal/analysis"
	"github.com/analystexe/jobmatch/internal/history"
	"github.com/analystexe/jobmatch/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analysis requests, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		showHistory(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", history.DefaultListLimit, "number of entries to show")
}

func showHistory(cmd *cobra.Command) {
	config, zl := commandSetup()

	store, err := history.Open(historyPath(config))
	if err != nil {
		zl.Fatal("opening the history store", zap.Error(err))
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := store.List(context.Background(), limit)
	if err != nil {
		zl.Fatal("listing the history", zap.Error(err))
	}

	if len(entries) == 0 {
		fmt.Println("История пуста.")
		return
	}

	for _, entry := range entries {
		fmt.Println(formatHistoryEntry(entry))
	}
}

func formatHistoryEntry(entry history.Entry) string {
	when := entry.CreatedAt.Local().Format("2006-01-02 15:04")

	if entry.Status != history.StatusOK {
		return fmt.Sprintf("%s  %s  ошибка: %s", when, shortID(entry.RequestID), entry.Error)
	}

	score := "?"
	if entry.ResultJSON != "" {
		var result analysis.Result
		if err := json.Unmarshal([]byte(entry.ResultJSON), &result); err == nil {
			score = fmt.Sprintf("%v/10 (%s)", result.Score, render.ScoreClass(result.Score))
		}
	}

	return fmt.Sprintf("%s  %s  %s  %s", when, shortID(entry.RequestID), score, textPreview(entry.VacancyText))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
