// SPDX-License-Identifier: MIT
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/db"
	"github.com/thatcatcamp/menukitty/internal/media"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage restaurant images",
}

var mediaImportCmd = &cobra.Command{
	Use:   "import <slug> <dir>",
	Short: "Import every image in a directory",
	Long:  "Import the jpg, png, gif and webp files of a directory. Files already imported under the same name are skipped.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()

		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}

		store := media.NewStore(db.GetDB(), int64(config.GetInt("media.max_upload_mb"))<<20, config.GetInt("media.thumbnail_size"))
		n, err := store.ImportDir(cmd.Context(), r.ID, args[1])
		if err != nil {
			fatal("import stopped after %d files: %v", n, err)
		}
		fmt.Printf("Imported %d images into %s\n", n, r.Slug)
	},
}

var mediaListCmd = &cobra.Command{
	Use:   "list <slug>",
	Short: "List a restaurant's images",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()

		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}
		list, err := media.NewStore(db.GetDB(), 0, 0).List(cmd.Context(), r.ID)
		if err != nil {
			fatal("%v", err)
		}
		for _, m := range list {
			fmt.Printf("%s  %-10s %5dx%-5d %10s  %s\n", m.ID, m.MimeType, m.Width, m.Height, formatBytes(m.Size), m.Filename)
		}
	},
}

func init() {
	mediaCmd.AddCommand(mediaImportCmd)
	mediaCmd.AddCommand(mediaListCmd)
	rootCmd.AddCommand(mediaCmd)
}
