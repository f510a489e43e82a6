package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/brightpath/opsconsole/backend/internal/board"
	"github.com/brightpath/opsconsole/backend/internal/workflow"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <project-id> <status>",
	Short: "Move a project to another workflow stage",
	Long: `Move a project card onto another column. The move shows
immediately and is rolled back if the server rejects it.

Stages: JUST_STARTED, TEN_PERCENT, THIRTY_PERCENT, FIFTY_PERCENT,
SEVENTY_PERCENT, ALMOST_COMPLETED, COMPLETED`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func runMove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid project id %q", args[0])
	}
	projectID := uint(id)

	target, err := workflow.Parse(args[1])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	b := board.New(board.NewClient(serverURL, authToken))
	if err := b.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	before, ok := b.Project(projectID)
	if !ok {
		return fmt.Errorf("project %d is not on your board", projectID)
	}

	settled := make(chan error, 1)
	if !b.Drop(ctx, projectID, target, func(err error) { settled <- err }) {
		fmt.Printf("project %d is already in %s\n", projectID, target.Label())
		return nil
	}

	fmt.Printf("moving #%d: %s -> %s ...\n", projectID, before.Status.Label(), target.Label())

	select {
	case err := <-settled:
		if err != nil {
			after, _ := b.Project(projectID)
			fmt.Printf("rejected, rolled back to %s\n", after.Status.Label())
			return err
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	fmt.Printf("done: #%d is now in %s\n", projectID, target.Label())
	return nil
}
