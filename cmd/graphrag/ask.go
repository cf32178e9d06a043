package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askStrategy string

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the knowledge graph",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().StringVar(&askStrategy, "strategy", "", "community_first, global_first or hybrid (default from config)")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	res, err := a.rag.Ask(ctx, strings.Join(args, " "), askStrategy)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, res.Answer)
	fmt.Fprintln(os.Stdout)
	fmt.Fprintf(os.Stdout, "Strategy:   %s (requested %s)\n", res.StrategyUsed, res.StrategyRequested)
	fmt.Fprintf(os.Stdout, "Confidence: %.2f\n", res.Confidence)
	if len(res.Sources) > 0 {
		fmt.Fprintf(os.Stdout, "Sources:    %s\n", strings.Join(res.Sources, ", "))
	}
	for _, ref := range res.RelevantCommunities {
		fmt.Fprintf(os.Stdout, "  community %d  %.2f  %s\n", ref.CommunityID, ref.RelevanceScore, ref.Reason)
	}
	return nil
}
