package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/plugin/builtin"
)

var (
	parsePlatform   string
	parseDirective  string
	parseDevice     string
	parseCommand    string
	parseStructured bool
	parseStderrFile string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Normalize saved device output",
	Long: `Runs saved device output through the plugin pipeline as if it had just
been returned by a device of the given platform.

Examples:
  routeglass parse -p huawei -d huawei_bgp_route_table show-bgp.txt
  ssh edge1 'show ip bgp 10.0.0.0/8 | json' | routeglass parse -p arista_eos -d arista_bgp_route_table -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stdout, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		var stderr []byte
		if parseStderrFile != "" {
			if stderr, err = os.ReadFile(parseStderrFile); err != nil {
				return fmt.Errorf("reading stderr file: %w", err)
			}
		}

		directive := parseDirective
		if directive == "" {
			directive = builtin.DefaultDirective(parsePlatform)
		}
		q := plugin.Query{
			Device: plugin.StaticDevice{
				DeviceName:     parseDevice,
				DevicePlatform: parsePlatform,
				Structured:     parseStructured,
			},
			Directive: directive,
			Command:   parseCommand,
		}
		out := app.pipeline.Run(plugin.Raw{Stdout: string(stdout), Stderr: string(stderr)}, q)
		return printOutput(cmd.OutOrStdout(), out, app.jsonOutput)
	},
}

func init() {
	parseCmd.Flags().StringVarP(&parsePlatform, "platform", "p", "", "Device platform (huawei, juniper, arista_eos, ...)")
	parseCmd.Flags().StringVarP(&parseDirective, "directive", "d", "", "Directive the output answers (default: the platform's route table)")
	parseCmd.Flags().StringVar(&parseDevice, "device", "saved", "Device name used in diagnostics")
	parseCmd.Flags().StringVar(&parseCommand, "command", "", "Command text that produced the output")
	parseCmd.Flags().BoolVar(&parseStructured, "structured", true, "Device has structured output enabled")
	parseCmd.Flags().StringVar(&parseStderrFile, "stderr-file", "", "Saved stderr of the same command")
	parseCmd.MarkFlagRequired("platform")
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
