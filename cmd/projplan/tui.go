package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aristath/projplan/internal/project"
	"github.com/aristath/projplan/internal/tui"
)

func tuiCmd(a *app) *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "tui [FILE|PROJECT]",
		Short: "Explore a project interactively (the built-in sample by default)",
		Args:  cobra.MaximumNArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			// Logs would corrupt the alternate screen
			a.quietLog = true
		},
		RunE: a.run(func(ctx context.Context, out io.Writer, args []string) error {
			s, err := a.scenario(scenario)
			if err != nil {
				return err
			}
			p := project.Sample()
			if len(args) == 1 {
				if p, err = a.loadProject(ctx, args[0]); err != nil {
					return err
				}
			}

			model := tui.New(ctx, tui.Options{
				Runner:   a.runner,
				Bus:      a.bus,
				Project:  p,
				Rates:    a.cfg.Rates(),
				Scenario: s,
			})

			// Start Bubble Tea program in a goroutine so we can handle shutdown
			prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

			errChan := make(chan error, 1)
			go func() {
				_, err := prog.Run()
				errChan <- err
			}()

			select {
			case err := <-errChan:
				// Normal TUI exit (user pressed 'q')
				if err != nil && ctx.Err() == nil {
					return fmt.Errorf("tui: %w", err)
				}
				return nil
			case <-ctx.Done():
				log.Println("Shutdown signal received, cleaning up...")
				prog.Quit()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				select {
				case err := <-errChan:
					if err != nil {
						log.Printf("TUI exit error: %v", err)
					}
				case <-shutdownCtx.Done():
					log.Println("Shutdown timeout exceeded, forcing exit")
				}
				return nil
			}
		}),
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario shown first: best, expected or worst")
	return cmd
}
