package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ctxutil"
	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/wire"
)

var negotiationCmd = &cobra.Command{
	Use:     "negotiation",
	Aliases: []string{"neg"},
	Short:   "Manage price and custom-order negotiations",
	Long:    "Open, respond to, and inspect negotiations between buyers and artisans",
}

var negotiationProposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Open a negotiation (or return the one already open)",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		kind, _ := cmd.Flags().GetString("kind")
		item, _ := cmd.Flags().GetString("item")
		variant, _ := cmd.Flags().GetString("variant")
		artisan, _ := cmd.Flags().GetString("artisan")
		title, _ := cmd.Flags().GetString("title")
		spec, _ := cmd.Flags().GetString("spec")
		offer, _ := cmd.Flags().GetFloat64("offer")
		quantity, _ := cmd.Flags().GetInt("quantity")
		reason, _ := cmd.Flags().GetString("reason")
		expiresIn, _ := cmd.Flags().GetInt("expires-in")

		if kind == string(corenegotiation.KindPrice) && item == "" {
			return fmt.Errorf("price negotiations require --item")
		}

		ctx := ctxutil.WithActorID(cmd.Context(), actor)
		resp, err := wire.NegotiationService().Propose(ctx, primary.ProposeRequest{
			InitiatorID:    actor,
			Kind:           kind,
			SubjectRef:     item,
			Variant:        variant,
			CounterpartyID: artisan,
			SubjectTitle:   title,
			SubjectSpec:    spec,
			Offer:          offer,
			Quantity:       quantity,
			Reason:         reason,
			ExpiresInDays:  expiresIn,
		})
		if err != nil {
			return fmt.Errorf("failed to propose: %w", err)
		}

		if resp.IsNew {
			fmt.Printf("✓ Opened negotiation %s\n", resp.Negotiation.ID)
		} else {
			fmt.Printf("Negotiation %s is already open for this subject; returning it\n", resp.Negotiation.ID)
		}
		printNegotiation(resp.Negotiation)
		return nil
	},
}

var negotiationRespondCmd = &cobra.Command{
	Use:   "respond [negotiation-id]",
	Short: "Accept, reject, counter or cancel an open negotiation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		action, _ := cmd.Flags().GetString("action")
		value, _ := cmd.Flags().GetFloat64("value")
		message, _ := cmd.Flags().GetString("message")

		ctx := ctxutil.WithActorID(cmd.Context(), actor)
		n, err := wire.NegotiationService().Respond(ctx, primary.RespondRequest{
			NegotiationID: args[0],
			ActorID:       actor,
			Action:        action,
			CounterValue:  value,
			Message:       message,
		})
		if err != nil {
			return fmt.Errorf("failed to %s: %w", action, err)
		}

		fmt.Printf("✓ Negotiation %s is now %s\n", n.ID, statusColored(n.Status))
		printNegotiation(n)
		return nil
	},
}

var negotiationShowCmd = &cobra.Command{
	Use:   "show [negotiation-id]",
	Short: "Show a negotiation with its full history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := wire.NegotiationService().GetNegotiation(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("negotiation not found: %w", err)
		}
		printNegotiation(n)
		return nil
	},
}

var negotiationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List negotiations for the acting party",
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		role, _ := cmd.Flags().GetString("role")
		status, _ := cmd.Flags().GetString("status")
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")

		summaries, err := wire.NegotiationService().ListNegotiations(cmd.Context(), primary.NegotiationFilters{
			UserID: actor,
			Role:   role,
			Status: status,
			Kind:   kind,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list negotiations: %w", err)
		}

		if len(summaries) == 0 {
			fmt.Println("No negotiations found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSUBJECT\tSTATUS\tOFFER\tOTHER PARTY\tEXPIRES")
		fmt.Fprintln(w, "--\t----\t-------\t------\t-----\t-----------\t-------")
		for _, s := range summaries {
			offer := fmt.Sprintf("%.2f", s.CurrentOffer)
			if s.FinalValue != nil {
				offer = fmt.Sprintf("%.2f (final)", *s.FinalValue)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.Kind, s.SubjectTitle, s.Status, offer, s.OtherPartyID,
				s.ExpiresAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
		return nil
	},
}

// printNegotiation renders one negotiation with its history.
func printNegotiation(n *primary.Negotiation) {
	fmt.Printf("Negotiation: %s (%s)\n", n.ID, n.Kind)
	fmt.Printf("Subject: %s", n.SubjectTitle)
	if n.Variant != "" {
		fmt.Printf(" [%s]", n.Variant)
	}
	fmt.Println()
	if n.SubjectSpec != "" {
		fmt.Printf("Spec: %s\n", n.SubjectSpec)
	}
	fmt.Printf("Parties: %s -> %s\n", n.InitiatorID, n.CounterpartyID)
	if n.ReferenceValue != nil {
		fmt.Printf("Reference: %.2f\n", *n.ReferenceValue)
	}
	fmt.Printf("Offer: %.2f (x%d)\n", n.CurrentOffer, n.Quantity)
	if n.FinalValue != nil {
		fmt.Printf("Final: %.2f\n", *n.FinalValue)
	}
	fmt.Printf("Status: %s\n", statusColored(n.Status))
	fmt.Printf("Expires: %s\n", n.ExpiresAt.Format("2006-01-02 15:04"))

	if len(n.History) == 0 {
		return
	}
	fmt.Println("History:")
	for _, e := range n.History {
		line := fmt.Sprintf("  %d. %s by %s (%s)", e.Seq, e.Action, e.ActorID, e.ActorRole)
		switch p := e.Payload.(type) {
		case corenegotiation.ProposePayload:
			line += fmt.Sprintf(": offered %.2f", p.Offer)
		case corenegotiation.CounterPayload:
			line += fmt.Sprintf(": %.2f -> %.2f", p.From, p.To)
			if p.Message != "" {
				line += fmt.Sprintf(" (%q)", p.Message)
			}
		case corenegotiation.AcceptPayload:
			line += fmt.Sprintf(": settled at %.2f", p.Value)
		case corenegotiation.RejectPayload:
			if p.Reason != "" {
				line += fmt.Sprintf(": %q", p.Reason)
			}
		case corenegotiation.CancelPayload:
			if p.Reason != "" {
				line += fmt.Sprintf(": %q", p.Reason)
			}
		}
		fmt.Printf("%s  %s\n", line, e.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// statusColored renders a negotiation status with the conventional color.
func statusColored(status string) string {
	switch corenegotiation.Status(status) {
	case corenegotiation.StatusAccepted:
		return color.New(color.FgGreen).Sprint(status)
	case corenegotiation.StatusPending, corenegotiation.StatusCounterOffered:
		return color.New(color.FgYellow).Sprint(status)
	case corenegotiation.StatusRejected, corenegotiation.StatusExpired, corenegotiation.StatusCancelled:
		return color.New(color.FgRed).Sprint(status)
	}
	return status
}

func init() {
	// propose flags
	negotiationProposeCmd.Flags().String("actor", "", "Acting party (defaults to config)")
	negotiationProposeCmd.Flags().StringP("kind", "k", "price", "Negotiation kind (price or custom_order)")
	negotiationProposeCmd.Flags().StringP("item", "i", "", "Catalog item ID (price kind)")
	negotiationProposeCmd.Flags().String("variant", "", "Item variant (size, glaze, ...)")
	negotiationProposeCmd.Flags().String("artisan", "", "Artisan ID (custom_order kind)")
	negotiationProposeCmd.Flags().StringP("title", "t", "", "Title of the bespoke work (custom_order kind)")
	negotiationProposeCmd.Flags().String("spec", "", "Description of the bespoke work")
	negotiationProposeCmd.Flags().Float64P("offer", "o", 0, "Opening offer")
	negotiationProposeCmd.Flags().IntP("quantity", "q", 1, "Quantity")
	negotiationProposeCmd.Flags().StringP("reason", "r", "", "Why this offer")
	negotiationProposeCmd.Flags().Int("expires-in", 0, "Expiry window in days (0 = kind default)")

	// respond flags
	negotiationRespondCmd.Flags().String("actor", "", "Acting party (defaults to config)")
	negotiationRespondCmd.Flags().StringP("action", "a", "", "Response action: accept, reject, counter, cancel")
	negotiationRespondCmd.Flags().Float64P("value", "v", 0, "Counter-offer value (counter only)")
	negotiationRespondCmd.Flags().StringP("message", "m", "", "Optional message or reason")
	negotiationRespondCmd.MarkFlagRequired("action")

	// list flags
	negotiationListCmd.Flags().String("actor", "", "Acting party (defaults to config)")
	negotiationListCmd.Flags().String("role", string(corenegotiation.RoleInitiator), "Which side to list: initiator or counterparty")
	negotiationListCmd.Flags().String("status", "", "Filter by status")
	negotiationListCmd.Flags().String("kind", "", "Filter by kind")
	negotiationListCmd.Flags().Int("limit", 0, "Limit results")

	// Register subcommands
	negotiationCmd.AddCommand(negotiationProposeCmd)
	negotiationCmd.AddCommand(negotiationRespondCmd)
	negotiationCmd.AddCommand(negotiationShowCmd)
	negotiationCmd.AddCommand(negotiationListCmd)
}

// NegotiationCmd returns the negotiation command
func NegotiationCmd() *cobra.Command {
	return negotiationCmd
}
