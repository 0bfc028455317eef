package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/routeglass/routeglass/pkg/collect"
	"github.com/routeglass/routeglass/pkg/inventory"
	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/util"
)

var (
	fetchTimeout time.Duration
	fetchSaveRaw string
	fetchAsk     bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <device> <directive> <target>",
	Short: "Query a device and normalize the response",
	Long: `Renders the directive's command for target, runs it on the device over
SSH and prints the normalized route table.

Examples:
  routeglass fetch edge1 huawei_bgp_route_table 10.0.0.0/8
  routeglass fetch core1 juniper_bgp_community_table 65000:100 --json`,
	Args: cobra.ExactArgs(3),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		inv, err := inventory.Load(app.inventoryPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		switch len(args) {
		case 0:
			return inv.DeviceNames(), cobra.ShellCompDirectiveNoFileComp
		case 1:
			return inv.DirectiveIDs(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceName, directiveID, target := args[0], args[1], args[2]

		inv, err := inventory.Load(app.inventoryPath)
		if err != nil {
			return err
		}
		dev, err := inv.Device(deviceName)
		if err != nil {
			return err
		}
		command, err := inv.CommandFor(dev, directiveID, target)
		if err != nil {
			return err
		}

		cfg := collect.ConfigFromDevice(dev)
		if fetchAsk || (cfg.Password == "" && cfg.KeyFile == "") {
			pw, err := promptPassword(cfg.Username, deviceName)
			if err != nil {
				return err
			}
			cfg.Password = pw
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
		defer cancel()

		executor := collect.NewSSHExecutor(cfg)
		defer executor.Close()

		log := util.WithDevice(deviceName).WithField("directive", directiveID)
		log.Debugf("running %q", command)
		raw, runErr := executor.Run(ctx, command)
		if runErr != nil && raw.Stdout == "" {
			return fmt.Errorf("%s: %w", deviceName, runErr)
		}
		if runErr != nil {
			// devices often exit non-zero after printing a usable table
			log.Warnf("command finished with error: %v", runErr)
		}

		if fetchSaveRaw != "" {
			if err := os.WriteFile(fetchSaveRaw, []byte(raw.Stdout), 0644); err != nil {
				return fmt.Errorf("saving raw output: %w", err)
			}
		}

		out := app.pipeline.Run(raw, plugin.Query{Device: dev, Directive: directiveID, Command: command})
		return printOutput(cmd.OutOrStdout(), out, app.jsonOutput)
	},
}

func init() {
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 60*time.Second, "Overall time limit for the query")
	fetchCmd.Flags().StringVar(&fetchSaveRaw, "save-raw", "", "Also write the raw device output to this file")
	fetchCmd.Flags().BoolVar(&fetchAsk, "ask-password", false, "Prompt for the SSH password")
}

func promptPassword(user, device string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s: no credentials configured and stdin is not a terminal", device)
	}
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", user, device)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
