// SPDX-License-Identifier: MIT
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/backup"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/db"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
	Long:  "Take, list and prune database snapshots, and export single restaurants",
}

func backupManager() *backup.BackupManager {
	return backup.NewBackupManager(config.GetString("backups.path"), config.GetInt("backups.retention"))
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Take a snapshot now and prune old ones",
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()
		s := backup.NewScheduler(backupManager(), db.GetDB(), config.GetString("backups.schedule"))
		path, err := s.RunNow(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Backup written: %s\n", path)
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available backups",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fatal("%v", err)
		}
		list, err := backupManager().List()
		if err != nil {
			fatal("failed to list backups: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("No backups found")
			return
		}

		var total int64
		fmt.Println("Available backups:")
		for i, b := range list {
			total += b.Size
			fmt.Printf("%d. %s (%s, %s)\n", i+1, b.Name, b.CreatedAt.Local().Format("2006-01-02 15:04:05"), formatBytes(b.Size))
		}
		fmt.Printf("\n%d backups, %s total\n", len(list), formatBytes(total))
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest backups.retention snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fatal("%v", err)
		}
		n, err := backupManager().Prune()
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Removed %d old backups\n", n)
	},
}

var backupExportCmd = &cobra.Command{
	Use:   "export <slug>",
	Short: "Export one restaurant as a gzip JSON archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()
		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}
		path, err := backup.NewRestaurantExporter(db.GetDB(), config.GetString("backups.path")).CreateExport(cmd.Context(), r)
		if err != nil {
			fatal("export failed: %v", err)
		}
		fmt.Printf("Export written: %s\n", path)
	},
}

// formatBytes converts bytes to human-readable format
func formatBytes(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	size := float64(bytes)

	for _, unit := range units {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}

	return fmt.Sprintf("%.2f TB", size)
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupNowCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupPruneCmd)
	backupCmd.AddCommand(backupExportCmd)
}
