// Command gamemodectl is the control CLI for the gamemoded daemon.
//
// Usage:
//
//	gamemodectl status                  - Show daemon status
//	gamemodectl list                    - List registered game clients
//	gamemodectl check <path>            - Show how the filter lists treat a client path
//	gamemodectl reload                  - Ask the daemon to reload gamemode.ini
//	gamemodectl register <pid> <path>   - Register a game client
//	gamemodectl unregister <pid>        - Unregister a game client
//	gamemodectl version                 - Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gamemode/gamemoded/internal/buildinfo"
	"github.com/gamemode/gamemoded/internal/daemoncfg"
	"github.com/gamemode/gamemoded/pkg/client"
)

const _requestTimeout = 3 * time.Second

func main() {
	settings, err := daemoncfg.New().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "daemon settings: %v\n", err)
		os.Exit(1)
	}
	cli := client.New(settings.Socket.Path)

	root := &cobra.Command{
		Use:   "gamemodectl",
		Short: "Control CLI for the gamemoded daemon",
		Long: `gamemodectl talks to the gamemoded daemon over its Unix control socket.
It can inspect daemon status, list registered games, test the whitelist and
blacklist against a client path, and trigger a config reload.`,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), _requestTimeout)
			defer cancel()
			st, err := cli.Status(ctx)
			if err != nil {
				return err
			}
			color.New(color.Bold).Println("GAMEMODED STATUS:")
			fmt.Printf("  clients registered:  %d\n", st.Clients)
			fmt.Printf("  config generation:   %d\n", st.ConfigGen)
			fmt.Printf("  reaper frequency:    %ds\n", st.ReaperFrequency)
			fmt.Printf("  whitelist entries:   %d\n", st.WhitelistSize)
			fmt.Printf("  blacklist entries:   %d\n", st.BlacklistSize)
			fmt.Printf("  uptime:              %s\n", st.Uptime.Round(time.Second))
			fmt.Printf("  version:             %s (%s)\n", st.Version, st.Commit)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered game clients",
		Example: "gamemodectl list",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), _requestTimeout)
			defer cancel()
			clients, err := cli.Clients(ctx)
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				color.Yellow("No game clients registered.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Session", "PID", "Path", "Registered"})
			table.SetHeaderColor(
				tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
				tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
				tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
				tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
			)
			table.SetBorder(false)

			for _, c := range clients {
				table.Append([]string{
					c.ID,
					strconv.Itoa(c.PID),
					c.Path,
					c.RegisteredAt.Format(time.RFC3339),
				})
			}

			color.New(color.Bold).Println("REGISTERED GAME CLIENTS:")
			table.Render()
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:     "check <path>",
		Short:   "Show how the filter lists treat a client path",
		Example: "gamemodectl check /usr/bin/steam",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), _requestTimeout)
			defer cancel()
			res, err := cli.Check(ctx, args[0])
			if err != nil {
				return err
			}
			if res.Whitelisted && !res.Blacklisted {
				color.New(color.FgGreen, color.Bold).Printf("✓ %s would be admitted\n", res.Client)
			} else {
				color.New(color.FgRed, color.Bold).Printf("✗ %s would be refused\n", res.Client)
			}
			fmt.Printf("  whitelisted: %v\n", res.Whitelisted)
			fmt.Printf("  blacklisted: %v\n", res.Blacklisted)
			return nil
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to reload gamemode.ini",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), _requestTimeout)
			defer cancel()
			gen, err := cli.Reload(ctx)
			if err != nil {
				return err
			}
			color.New(color.FgGreen, color.Bold).Printf("✓ Config reloaded (generation %d)\n", gen)
			return nil
		},
	}

	registerCmd := &cobra.Command{
		Use:     "register <pid> <path>",
		Short:   "Register a game client with the daemon",
		Example: "gamemodectl register 4242 /usr/bin/steam",
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid pid: %w", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), _requestTimeout)
			defer cancel()
			id, err := cli.Register(ctx, pid, args[1])
			if err != nil {
				return err
			}
			color.New(color.FgGreen, color.Bold).Printf("✓ Registered pid %d (session %s)\n", pid, id)
			return nil
		},
	}

	unregisterCmd := &cobra.Command{
		Use:     "unregister <pid>",
		Short:   "Unregister a game client",
		Example: "gamemodectl unregister 4242",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid pid: %w", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), _requestTimeout)
			defer cancel()
			if err := cli.Unregister(ctx, pid); err != nil {
				return err
			}
			color.New(color.FgGreen, color.Bold).Printf("✓ Unregistered pid %d\n", pid)
			return nil
		},
	}

	root.AddCommand(statusCmd, listCmd, checkCmd, reloadCmd, registerCmd, unregisterCmd, versionCmd)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
