// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/db"
	"github.com/thatcatcamp/menukitty/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "menukitty",
	Short: "MenuKitty - Multi-tenant restaurant menus",
	Long: `MenuKitty hosts menu storefronts for many restaurants from one server.

Each restaurant gets a public menu under /r/<slug> and a PIN-protected admin
portal where its background color, brand colors and text sizes are edited.
Theme changes reach every open page within seconds.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads the config file and sets up logging from it.
func initConfig() error {
	if err := config.InitConfig(config.DefaultPath()); err != nil {
		return err
	}
	logging.Setup(config.GetString("log.level"), config.GetString("log.format"), os.Stderr)
	return nil
}

// initSystemDB loads config, then opens and migrates the database.
func initSystemDB() error {
	if err := initConfig(); err != nil {
		return err
	}
	return db.InitDB(config.GetString("database.type"), config.GetString("database.path"))
}

// fatal prints err and exits.
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// mustInitDB is initSystemDB for commands that cannot continue without it.
func mustInitDB() {
	if err := initSystemDB(); err != nil {
		fatal("%v", err)
	}
}
