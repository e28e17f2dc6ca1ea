// Package main provides the interactive chat command.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/triptech-ai/pathio-guide/internal/retrieval"
)

// newChatCmd creates the chat subcommand.
func newChatCmd() *cobra.Command {
	var (
		lat float64
		lng float64
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the Pathio place finder",
		Long: `Chat starts an interactive session with the place finder. Each line you
type is one conversational turn; the session keeps its context (last results,
focused place, banned categories) until you exit.

Pass --lat and --lng to enable nearby search for the whole session.
Type "exit" or press Ctrl-D to leave.`,
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

			sess := &retrieval.Session{ID: uuid.NewString()}

			bot := color.New(color.FgCyan, color.Bold)
			meta := color.New(color.Faint)

			bot.Println("ไกด์ปะทิวพร้อมแล้วค่ะ ถามหาที่กิน ที่เที่ยว ที่พักได้เลย")
			meta.Println("(พิมพ์ exit เพื่อออก)")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Suffix = " กำลังหา..."
				sp.Start()

				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				res, err := engine.Answer(ctx, sess, line, loc)
				cancel()
				sp.Stop()

				if err != nil {
					color.Red("เกิดข้อผิดพลาด: %v", err)
					continue
				}

				bot.Println(res.Reply)
				if len(res.Places) > 1 {
					for i, p := range res.Places {
						line := fmt.Sprintf("  %d. %s", i+1, p.Name)
						if p.Tambon != "" {
							line += " (ตำบล" + p.Tambon + ")"
						}
						if p.DistanceKm != nil {
							line += fmt.Sprintf(" ~%.1f กม.", *p.DistanceKm)
						}
						meta.Println(line)
					}
				}
				if len(res.Bans) > 0 {
					meta.Printf("  [ตัดหมวดออกแล้ว: %s]\n", strings.Join(res.Bans, ", "))
				}
			}

			bot.Println("ไว้เจอกันใหม่นะคะ")
			return scanner.Err()
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "user latitude for nearby search")
	cmd.Flags().Float64Var(&lng, "lng", 0, "user longitude for nearby search")
	return cmd
}
