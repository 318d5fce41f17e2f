// SPDX-License-Identifier: MIT
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"
	"github.com/thatcatcamp/menukitty/internal/broadcast"
	"github.com/thatcatcamp/menukitty/internal/config"
	"github.com/thatcatcamp/menukitty/internal/db"
	"github.com/thatcatcamp/menukitty/internal/palette"
	"github.com/thatcatcamp/menukitty/internal/restaurants"
	"github.com/thatcatcamp/menukitty/internal/themes"
	"github.com/thatcatcamp/menukitty/internal/themesync"
	"golang.org/x/sync/errgroup"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect and change restaurant themes",
}

var themeShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a restaurant's theme and derived palette",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()
		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}
		svc := themes.NewService(themes.NewStore(db.GetDB()), nil)
		view, err := svc.Theme(cmd.Context(), r)
		if err != nil {
			fatal("%v", err)
		}

		fmt.Printf("Restaurant: %s\n", r.Slug)
		fmt.Printf("Background: %s\n", view.AppBg)
		if view.HasBackgroundImage() {
			fmt.Printf("Image:      %s\n", view.ImageURL())
		}
		fmt.Println()
		printPalette(view.AppBg)
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set <slug> <color>",
	Short: "Save a restaurant's background color",
	Long: `Save a restaurant's background color. Open pages are told at once when
broadcast.redis_addr is configured; otherwise they pick it up on their next poll.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		mustInitDB()
		ctx := cmd.Context()
		r, err := restaurants.GetBySlug(db.GetDB(), args[0])
		if err != nil {
			fatal("%v", err)
		}

		var pub broadcast.Publisher
		if addr := config.GetString("broadcast.redis_addr"); addr != "" {
			relay, err := broadcast.NewRedisRelay(broadcast.RedisConfig{
				Addr:     addr,
				Password: config.GetString("broadcast.redis_password"),
				DB:       config.GetInt("broadcast.redis_db"),
				Prefix:   config.GetString("broadcast.channel_prefix"),
			}, broadcast.NewHub())
			if err != nil {
				fatal("%v", err)
			}
			defer relay.Close()
			pub = relay
		}

		svc := themes.NewService(themes.NewStore(db.GetDB()), pub)
		current, err := svc.Theme(ctx, r)
		if err != nil {
			fatal("%v", err)
		}
		in := themes.ThemeInput{AppBg: args[1], BackgroundImageMediaID: current.BackgroundImageMediaID}
		if clear, _ := cmd.Flags().GetBool("clear-image"); clear {
			in.BackgroundImageMediaID = nil
		}
		if img, _ := cmd.Flags().GetString("image"); img != "" {
			in.BackgroundImageMediaID = &img
		}

		view, err := svc.SaveTheme(ctx, r, in)
		if err != nil {
			fatal("saving theme: %v", err)
		}
		fmt.Printf("Theme saved for %s: %s\n", r.Slug, view.AppBg)
	},
}

var themePaletteCmd = &cobra.Command{
	Use:   "palette <color>",
	Short: "Preview the palette derived from a background color",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, _ := json.MarshalIndent(themes.SchemeFor(args[0]), "", "  ")
			fmt.Println(string(out))
			return
		}
		printPalette(args[0])
	},
}

var themePresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the preset backgrounds",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range themes.ListPresets() {
			fmt.Printf("%s %-12s %s\n", swatch(p.AppBg, p.AppBg), p.Name, p.AppBg)
		}
	},
}

var themeWatchCmd = &cobra.Command{
	Use:   "watch <restaurant-url>",
	Short: "Follow a restaurant's theme and write it as CSS",
	Long: `Follow a restaurant's theme the way a storefront page does: paint the cached
color, fetch the real theme, then refetch on every push event and poll.
Each applied theme is written to --out as a stylesheet.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfig(); err != nil {
			fatal("%v", err)
		}
		if err := watchTheme(cmd, args[0]); err != nil {
			fatal("%v", err)
		}
	},
}

var themePushCmd = &cobra.Command{
	Use:   "push <restaurant-url> <color>",
	Short: "Log in to a running server and save a background color",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		pin, _ := cmd.Flags().GetString("pin")
		if pin == "" {
			pin = promptPIN()
		}

		ctx := cmd.Context()
		client := themesync.NewClient(args[0])
		if err := client.Login(ctx, pin); err != nil {
			fatal("login failed: %v", err)
		}
		current, err := client.FetchTheme(ctx)
		if err != nil {
			fatal("%v", err)
		}

		syncer := themesync.New(themesync.Config{Fetcher: client, Document: themes.NewCSSDocument()})
		editor := themesync.NewEditor(syncer, client, nil)
		view, err := editor.Save(ctx, themes.ThemeInput{AppBg: args[1], BackgroundImageMediaID: current.BackgroundImageMediaID})
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Theme saved: %s\n", view.AppBg)
	},
}

func watchTheme(cmd *cobra.Command, baseURL string) error {
	out, _ := cmd.Flags().GetString("out")
	cachePath, _ := cmd.Flags().GetString("cache")

	var cache themesync.Cache
	if cachePath != "" {
		c, err := themesync.OpenDBCache(cachePath)
		if err != nil {
			return err
		}
		cache = c
	}

	client := themesync.NewClient(baseURL)
	doc := themes.NewCSSDocument()
	syncer := themesync.New(themesync.Config{
		Fetcher:      client,
		Cache:        cache,
		Document:     doc,
		RetryDelay:   config.GetDuration("theme.retry_delay"),
		PollInterval: config.GetDuration("theme.poll_interval"),
	})
	syncer.OnApply(func(view themes.ThemeView) {
		fmt.Printf("%s applied %s\n", swatch(view.AppBg, view.AppBg), view.AppBg)
		if out == "" {
			return
		}
		if err := os.WriteFile(out, []byte(doc.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
		}
	})

	wsURL, err := client.WebSocketURL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-syncer.Mount(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return syncer.Run(ctx) })
	g.Go(func() error { return themesync.ForSyncer(wsURL, syncer).Run(ctx) })
	return g.Wait()
}

// printPalette prints every derived role with a swatch blended over bg.
func printPalette(bg string) {
	scheme := themes.SchemeFor(bg)
	hex := palette.NormalizeToHex(bg)
	mode := "dark"
	if palette.IsLight(hex) {
		mode = "light"
	}

	title := lipgloss.NewStyle().Bold(true)
	fmt.Println(title.Render(fmt.Sprintf("%s (%s background)", hex, mode)))
	for _, role := range scheme.Roles() {
		fmt.Printf("%s %-18s %s\n", swatch(role.Value, hex), role.Name, role.Value)
	}
}

// swatch renders a small block of value. rgba() values are blended over bg
// since a terminal cannot show transparency.
func swatch(value, bg string) string {
	c, ok := blend(value, bg)
	if !ok {
		return "    "
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("    ")
}

func blend(value, bg string) (string, bool) {
	v := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	var r, g, b int
	var a float64
	if n, _ := fmt.Sscanf(v, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); n == 4 {
		base, err := colorful.Hex(palette.NormalizeToHex(bg))
		if err != nil {
			return "", false
		}
		top := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		return base.BlendRgb(top, a).Clamped().Hex(), true
	}
	return palette.ToHex(value)
}

func init() {
	themeSetCmd.Flags().String("image", "", "Background image media id")
	themeSetCmd.Flags().Bool("clear-image", false, "Remove the background image")
	themePaletteCmd.Flags().Bool("json", false, "Print the palette as JSON")
	themeWatchCmd.Flags().String("out", "", "Write the applied theme as CSS to this file")
	themeWatchCmd.Flags().String("cache", "", "SQLite file that keeps the last color across restarts")
	themePushCmd.Flags().String("pin", "", "Admin PIN (prompted when empty)")

	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themePaletteCmd)
	themeCmd.AddCommand(themePresetsCmd)
	themeCmd.AddCommand(themeWatchCmd)
	themeCmd.AddCommand(themePushCmd)
	rootCmd.AddCommand(themeCmd)
}
