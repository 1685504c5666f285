package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/infoclient/internal/config"
	"github.com/muurk/infoclient/internal/protocol"
	"github.com/muurk/infoclient/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the infoclient config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the built-in defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return usageError{err}
		}
		if err := config.CreateDefaultConfig(path); err != nil {
			return usageError{err}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective discovery defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return usageError{fmt.Errorf("failed to load config: %w", err)}
		}
		data, err := yaml.Marshal(registry.Defaults)
		if err != nil {
			return fmt.Errorf("failed to marshal defaults: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := settingsPath()
		if err != nil {
			return usageError{err}
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var respondersCmd = &cobra.Command{
	Use:   "responders",
	Short: "List devices recorded with --record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return usageError{fmt.Errorf("failed to load config: %w", err)}
		}
		if len(registry.Responders) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No responders recorded. Run 'infoclient --record' to record replies.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderTable(
			[]string{"IP", "NICKNAME", "REPLIES", "OPERATION", "LAST ID", "LAST SEEN"},
			responderRows(registry),
		))
		return nil
	},
}

var respondersNameCmd = &cobra.Command{
	Use:   "name IP NICKNAME",
	Short: "Label a recorded responder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry()
		if err != nil {
			return usageError{fmt.Errorf("failed to load config: %w", err)}
		}
		if !registry.SetNickname(args[0], args[1]) {
			return usageError{fmt.Errorf("no responder recorded for %s", args[0])}
		}
		if err := registry.Save(); err != nil {
			return usageError{fmt.Errorf("failed to save config: %w", err)}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Named %s %q\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	respondersCmd.AddCommand(respondersNameCmd)
}

func settingsPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// responderRows returns one table row per responder, most recent first
func responderRows(registry *config.Registry) [][]string {
	ips := make([]string, 0, len(registry.Responders))
	for ip := range registry.Responders {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool {
		a, b := registry.Responders[ips[i]], registry.Responders[ips[j]]
		if !a.LastSeen.Equal(b.LastSeen) {
			return a.LastSeen.After(b.LastSeen)
		}
		return ips[i] < ips[j]
	})

	rows := make([][]string, 0, len(ips))
	for _, ip := range ips {
		r := registry.Responders[ip]
		rows = append(rows, []string{
			ip,
			r.Nickname,
			strconv.Itoa(r.Replies),
			protocol.OperationName(r.Operation),
			strconv.FormatUint(uint64(r.LastID), 10),
			r.LastSeen.Local().Format(time.DateTime),
		})
	}
	return rows
}
