// SPDX-License-Identifier: MIT
package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/textproto"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/email"
)

var mailtestCmd = &cobra.Command{
	Use:   "mailtest <email>",
	Short: "Send a test message with the configured SMTP settings",
	Long: `Print the email.* settings and send a test message to the given address.
Feedback notifications use the same settings.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		host := config.GetString("email.smtp_host")
		port := config.GetString("email.smtp_port")

		label := lipgloss.NewStyle().Width(18).Faint(true)
		for _, kv := range [][2]string{
			{"email.smtp_host", orNotSet(host)},
			{"email.smtp_port", orNotSet(port) + " " + portMode(port)},
			{"email.from", orNotSet(config.GetString("email.from"))},
			{"email.password", maskPassword(config.GetString("email.password"))},
		} {
			fmt.Println(label.Render(kv[0]) + kv[1])
		}
		fmt.Println()

		svc, err := email.NewEmailService()
		if err != nil {
			return fmt.Errorf("%w (set values with: menukitty config set email.smtp_host smtp.example.com)", err)
		}

		fmt.Printf("Sending test email to %s...\n", args[0])
		if err := svc.SendTest(args[0]); err != nil {
			if hint := mailHint(err, net.JoinHostPort(host, port)); hint != "" {
				fmt.Println(hint)
			}
			return err
		}
		fmt.Println("Test email sent. If it does not arrive within a few minutes, check the spam folder.")
		return nil
	},
}

func portMode(port string) string {
	switch port {
	case "587":
		return "(STARTTLS)"
	case "465":
		return "(implicit TLS)"
	}
	return "(unusual port, expected 587 or 465)"
}

// mailHint explains the common SMTP failures from the error chain.
func mailHint(err error, addr string) string {
	var (
		proto  *textproto.Error
		record tls.RecordHeaderError
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	switch {
	case errors.As(err, &record):
		return "The port and TLS method do not match. Use 587 for STARTTLS or 465 for implicit TLS."
	case errors.As(err, &proto) && proto.Code == 535:
		return "Authentication failed. Check email.from and email.password; Gmail needs an App Password."
	case errors.As(err, &proto) && proto.Code >= 550 && proto.Code <= 554:
		return "The server refused the message. email.from must be an authorized sending address."
	case errors.As(err, &dnsErr):
		return fmt.Sprintf("Cannot resolve %s. Check email.smtp_host.", dnsErr.Name)
	case errors.As(err, &opErr) && opErr.Timeout():
		return fmt.Sprintf("Connection to %s timed out.", addr)
	case errors.As(err, &opErr):
		return fmt.Sprintf("Cannot reach %s. Check the host name and outbound firewall rules.", addr)
	}
	return ""
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskPassword keeps the first and last two characters of longer secrets.
func maskPassword(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 4:
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

func init() {
	rootCmd.AddCommand(mailtestCmd)
}
