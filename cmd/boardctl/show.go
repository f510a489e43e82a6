package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/board"
	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the board grouped by workflow stage",
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	b := board.New(board.NewClient(serverURL, authToken))
	if err := b.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	total := 0
	for _, stage := range workflow.All() {
		projects := b.Column(stage)
		total += len(projects)

		fmt.Printf("\n%s (%d%%) - %d project(s)\n", stage.Label(), stage.Progress(), len(projects))
		fmt.Println(strings.Repeat("─", 60))
		for _, p := range projects {
			purpose := p.Purpose
			if len(purpose) > 48 {
				purpose = purpose[:45] + "..."
			}
			fmt.Printf("  #%-5d %s\n", p.ID, purpose)
		}
	}

	fmt.Printf("\n%d project(s) on the board\n", total)
	return nil
}
