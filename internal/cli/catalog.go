package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/haggle/internal/db"
	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/wire"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and manage catalog items",
	Long:  "List, show and add the catalog items price negotiations run against",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items",
	RunE: func(cmd *cobra.Command, args []string) error {
		seller, _ := cmd.Flags().GetString("seller")
		publishedOnly, _ := cmd.Flags().GetBool("published")
		limit, _ := cmd.Flags().GetInt("limit")

		items, err := wire.CatalogService().ListItems(cmd.Context(), primary.CatalogFilters{
			SellerID:      seller,
			PublishedOnly: publishedOnly,
			Limit:         limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list catalog items: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No catalog items found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSELLER\tPRICE\tNEGOTIABLE")
		fmt.Fprintln(w, "--\t----\t------\t-----\t----------")
		for _, item := range items {
			negotiable := "yes"
			if !item.Negotiable {
				negotiable = "no"
			}
			price := fmt.Sprintf("%.2f", item.EffectivePrice())
			if item.DiscountPrice != nil {
				price += fmt.Sprintf(" (was %.2f)", item.Price)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.SellerID, price, negotiable)
		}
		w.Flush()
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [item-id]",
	Short: "Show catalog item details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		item, err := wire.CatalogService().GetItem(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("catalog item not found: %w", err)
		}

		fmt.Printf("Item: %s\n", item.ID)
		fmt.Printf("Name: %s\n", item.Name)
		if item.Description != "" {
			fmt.Printf("Description: %s\n", item.Description)
		}
		fmt.Printf("Seller: %s\n", item.SellerID)
		fmt.Printf("Price: %.2f\n", item.Price)
		if item.DiscountPrice != nil {
			fmt.Printf("Discount price: %.2f\n", *item.DiscountPrice)
		}
		if item.MinPrice != nil {
			fmt.Printf("Minimum acceptable: %.2f\n", *item.MinPrice)
		}
		fmt.Printf("Published: %v\n", item.Published)
		fmt.Printf("Negotiable: %v\n", item.Negotiable)
		return nil
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a catalog item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seller, err := resolveActor(cmd)
		if err != nil {
			return err
		}

		description, _ := cmd.Flags().GetString("description")
		price, _ := cmd.Flags().GetFloat64("price")
		discount, _ := cmd.Flags().GetFloat64("discount")
		minPrice, _ := cmd.Flags().GetFloat64("min-price")
		published, _ := cmd.Flags().GetBool("published")
		negotiable, _ := cmd.Flags().GetBool("negotiable")

		req := primary.CreateItemRequest{
			SellerID:    seller,
			Name:        args[0],
			Description: description,
			Price:       price,
			Published:   published,
			Negotiable:  negotiable,
		}
		if discount > 0 {
			req.DiscountPrice = &discount
		}
		if minPrice > 0 {
			req.MinPrice = &minPrice
		}

		item, err := wire.CatalogService().CreateItem(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to add catalog item: %w", err)
		}

		fmt.Printf("✓ Added catalog item %s: %s at %.2f\n", item.ID, item.Name, item.EffectivePrice())
		return nil
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog with demo fixtures",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.GetDB()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.SeedFixtures(database); err != nil {
			return fmt.Errorf("failed to seed fixtures: %w", err)
		}
		fmt.Println("✓ Seeded demo catalog items")
		return nil
	},
}

func init() {
	// catalog list flags
	catalogListCmd.Flags().String("seller", "", "Filter by seller")
	catalogListCmd.Flags().Bool("published", false, "Only published items")
	catalogListCmd.Flags().Int("limit", 0, "Limit results")

	// catalog add flags
	catalogAddCmd.Flags().String("actor", "", "Selling artisan (defaults to config)")
	catalogAddCmd.Flags().StringP("description", "d", "", "Item description")
	catalogAddCmd.Flags().Float64P("price", "p", 0, "List price")
	catalogAddCmd.Flags().Float64("discount", 0, "Discounted price")
	catalogAddCmd.Flags().Float64("min-price", 0, "Lowest offer the seller will entertain")
	catalogAddCmd.Flags().Bool("published", true, "Publish the item")
	catalogAddCmd.Flags().Bool("negotiable", true, "Allow price negotiations")

	// Register subcommands
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogSeedCmd)
}

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	return catalogCmd
}
