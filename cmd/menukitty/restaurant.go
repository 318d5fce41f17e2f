// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/auth"
	"github.com/thatcatcamp/menukitty/internal/db"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
)

var restaurantCmd = &cobra.Command{
	Use:     "restaurant",
	Aliases: []string{"restaurants"},
	Short:   "Manage restaurants",
	Long:    "Create, list, and delete restaurants and reset their admin PINs",
}

var restaurantCreateCmd = &cobra.Command{
	Use:   "create <slug>",
	Short: "Create a new restaurant",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()

		name, _ := cmd.Flags().GetString("name")
		pin, _ := cmd.Flags().GetString("pin")
		if pin == "" {
			pin = promptPIN()
		}

		r, err := restaurants.Create(db.GetDB(), args[0], name, pin)
		if err != nil {
			fatal("creating restaurant: %v", err)
		}

		fmt.Printf("Restaurant created: %s (ID: %d)\n", r.Slug, r.ID)
		fmt.Printf("Storefront: /r/%s/\n", r.Slug)
		fmt.Printf("Admin:      /r/%s/admin\n", r.Slug)
	},
}

var restaurantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all restaurants",
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()

		list, err := restaurants.List(db.GetDB())
		if err != nil {
			fatal("listing restaurants: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tNAME\tLANGUAGE\tCREATED")
		for _, r := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				r.ID, r.Slug, r.Name, r.DefaultLanguage, r.CreatedAt.Format("2006-01-02"))
		}
		w.Flush()
	},
}

var restaurantDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a restaurant",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()

		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Printf("Delete restaurant '%s' (%s)? (type 'yes' to confirm): ", r.Slug, r.Name)
			var confirmation string
			fmt.Scanln(&confirmation)
			if confirmation != "yes" {
				fmt.Println("Deletion cancelled.")
				return
			}
		}

		if err := restaurants.Delete(db.GetDB(), r.ID); err != nil {
			fatal("deleting restaurant: %v", err)
		}
		fmt.Printf("Restaurant deleted: %s\n", r.Slug)
	},
}

var restaurantSetPINCmd = &cobra.Command{
	Use:   "set-pin <slug>",
	Short: "Reset a restaurant's admin PIN",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()

		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}
		pin, _ := cmd.Flags().GetString("pin")
		if pin == "" {
			pin = promptPIN()
		}
		if err := restaurants.SetPIN(db.GetDB(), r.ID, pin); err != nil {
			fatal("setting PIN: %v", err)
		}
		fmt.Printf("PIN updated for %s\n", r.Slug)
	},
}

// promptPIN reads a PIN from stdin and checks its format.
func promptPIN() string {
	fmt.Print("Admin PIN (4-8 digits): ")
	var pin string
	fmt.Scanln(&pin)
	if err := auth.ValidatePIN(pin); err != nil {
		fatal("%v", err)
	}
	return pin
}

func init() {
	restaurantCreateCmd.Flags().String("name", "", "Display name (defaults to the slug)")
	restaurantCreateCmd.Flags().String("pin", "", "Admin PIN (prompted when empty)")
	restaurantDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	restaurantSetPINCmd.Flags().String("pin", "", "New admin PIN (prompted when empty)")

	restaurantCmd.AddCommand(restaurantCreateCmd)
	restaurantCmd.AddCommand(restaurantListCmd)
	restaurantCmd.AddCommand(restaurantDeleteCmd)
	restaurantCmd.AddCommand(restaurantSetPINCmd)
	rootCmd.AddCommand(restaurantCmd)
}
