package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/webscout-ai/webscout/internal/agent"
)

func newAskCmd() *cobra.Command {
	var (
		conversationID string
		noStream       bool
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Run a single agent turn from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")

			if noStream {
				res, err := a.runner.Run(ctx, prompt, conversationID)
				if err != nil {
					return err
				}
				fmt.Println(res.Content)
				return nil
			}

			res, err := a.runner.RunStream(ctx, prompt, conversationID, func(ev agent.TurnEvent) {
				switch ev.Type {
				case agent.TurnEventDelta:
					fmt.Print(ev.Content)
				case agent.TurnEventToolStart:
					fmt.Fprintf(os.Stderr, "[searching the web...]\n")
				}
			})
			if err != nil {
				return err
			}
			fmt.Println()
			log.Debug().Str("conversation_id", res.ConversationID).Msg("turn complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation id")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "print the full answer at once instead of streaming")

	return cmd
}
