// Package main provides the one-shot query command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/triptech-ai/pathio-guide/internal/retrieval"
)

// newQueryCmd creates the query subcommand.
func newQueryCmd() *cobra.Command {
	var (
		lat float64
		lng float64
	)

	cmd := &cobra.Command{
		Use:   "query <message>",
		Short: "Run a single turn through the pipeline and print the result",
		Long: `Query runs one utterance through the full retrieval pipeline against a
fresh session and prints the outcome. With --json the raw turn result is
emitted, which is handy for inspecting what the ranker and filters kept.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cleanup, err := buildEngine(cmd.Context())
			if err != nil {
				return fmt.Errorf("build engine: %w", err)
			}
			defer cleanup()

			var loc *retrieval.Location
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				loc = &retrieval.Location{Latitude: lat, Longitude: lng}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			sess := &retrieval.Session{ID: uuid.NewString()}
			res, err := engine.Answer(ctx, sess, strings.Join(args, " "), loc)
			if err != nil {
				return fmt.Errorf("answer: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Println(res.Reply)
			for i, p := range res.Places {
				fmt.Printf("%d. %s", i+1, p.Name)
				if p.Category != "" {
					fmt.Printf(" [%s]", p.Category)
				}
				if p.Tambon != "" {
					fmt.Printf(" ตำบล%s", p.Tambon)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "user latitude for nearby search")
	cmd.Flags().Float64Var(&lng, "lng", 0, "user longitude for nearby search")
	return cmd
}
