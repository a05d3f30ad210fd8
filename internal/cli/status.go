package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the acting party's negotiation dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := resolveActor(cmd)
			if err != nil {
				return err
			}

			svc := wire.NegotiationService()
			fmt.Printf("Negotiations for %s\n\n", color.New(color.FgHiBlue).Sprint(actor))

			for _, role := range []corenegotiation.Role{corenegotiation.RoleInitiator, corenegotiation.RoleCounterparty} {
				summaries, err := svc.ListNegotiations(cmd.Context(), primary.NegotiationFilters{
					UserID: actor,
					Role:   string(role),
				})
				if err != nil {
					return fmt.Errorf("failed to list negotiations: %w", err)
				}

				heading := "Opened by you"
				if role == corenegotiation.RoleCounterparty {
					heading = "Opened with you"
				}
				fmt.Printf("%s: %d\n", heading, len(summaries))

				counts := map[string]int{}
				for _, s := range summaries {
					counts[s.Status]++
				}
				for _, status := range []corenegotiation.Status{
					corenegotiation.StatusPending,
					corenegotiation.StatusCounterOffered,
					corenegotiation.StatusAccepted,
					corenegotiation.StatusRejected,
					corenegotiation.StatusExpired,
					corenegotiation.StatusCancelled,
				} {
					if n := counts[string(status)]; n > 0 {
						fmt.Printf("  %s: %d\n", statusColored(string(status)), n)
					}
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().String("actor", "", "Acting party (defaults to config)")
	return cmd
}
