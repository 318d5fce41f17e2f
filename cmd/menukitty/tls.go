// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/tls"
)

var tlsCmd = &cobra.Command{
	Use:   "tls",
	Short: "TLS certificate management",
	Long:  "Inspect the ACME certificates of the storefront host names",
}

var tlsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show certificate status",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fatal("%v", err)
		}
		if !config.GetBool("server.tls_enabled") {
			fmt.Println("TLS is disabled. Enable it with: menukitty config set server.tls_enabled true")
			return
		}

		tlsCfg, err := tls.LoadConfig()
		if err != nil {
			fatal("failed to load TLS config: %v", err)
		}
		manager, err := tls.NewManager(tlsCfg)
		if err != nil {
			fatal("failed to create TLS manager: %v", err)
		}

		statuses, err := manager.CertificateStatus(cmd.Context())
		if err != nil {
			fatal("failed to get certificate status: %v", err)
		}
		printCertificates(statuses, time.Now())
	},
}

func printCertificates(statuses []tls.CertificateStatus, now time.Time) {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	due := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	pending := lipgloss.NewStyle().Faint(true)

	fmt.Println(lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%-30s %-20s %-12s %s", "Domain", "Issuer", "Expires", "Days Left")))
	for _, st := range statuses {
		if st.Pending {
			fmt.Println(pending.Render(fmt.Sprintf("%-30s %-20s %-12s %s", st.Domain, "-", "-", "not yet provisioned")))
			continue
		}
		style := ok
		if st.NeedsRenewal(now) {
			style = due
		}
		fmt.Println(style.Render(fmt.Sprintf("%-30s %-20s %-12s %d",
			st.Domain, st.Issuer, st.NotAfter.Format("2006-01-02"), st.DaysUntilExpiry)))
	}
}

func init() {
	tlsCmd.AddCommand(tlsStatusCmd)
	rootCmd.AddCommand(tlsCmd)
}
