// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage MenuKitty configuration",
	Long:  "View and modify the config file ($MENUKITTY_CONFIG or ~/.menukitty/config.yaml)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.DefaultPath())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.IsSet(args[0]) {
			return fmt.Errorf("unknown key %q", args[0])
		}
		fmt.Println(displayValue(args[0], config.GetString(args[0])))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[0], displayValue(args[0], args[1]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Run: func(cmd *cobra.Command, args []string) {
		flat := flatten("", config.GetAll())
		keys := make([]string, 0, len(flat))
		width := 0
		for k := range flat {
			keys = append(keys, k)
			width = max(width, len(k))
		}
		sort.Strings(keys)

		key := lipgloss.NewStyle().Width(width + 2).Bold(true)
		for _, k := range keys {
			fmt.Println(key.Render(k) + displayValue(k, fmt.Sprint(flat[k])))
		}
	},
}

// displayValue masks secrets.
func displayValue(key, value string) string {
	if strings.Contains(key, "secret") || strings.Contains(key, "password") {
		return maskPassword(value)
	}
	return value
}

// flatten turns nested viper maps into dotted keys.
func flatten(prefix string, in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range in {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for nk, nv := range flatten(k, nested) {
				out[nk] = nv
			}
			continue
		}
		out[k] = v
	}
	return out
}

func init() {
	configCmd.AddCommand(configPathCmd, configGetCmd, configSetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}
