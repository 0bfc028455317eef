package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/routeglass/routeglass/pkg/cli"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List output plugins in run order",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := cli.NewTableTo(cmd.OutOrStdout(), "#", "PLUGIN", "PLATFORMS", "DIRECTIVES", "STRUCTURED")
		for i, p := range app.registry.Plugins() {
			d := p.Descriptor()
			structured := "-"
			if d.RequireStructured {
				structured = "required"
			}
			t.Row(strconv.Itoa(i+1), d.Name, listOrAny(d.Platforms), listOrAny(d.Directives), structured)
		}
		t.Flush()
		return nil
	},
}

func listOrAny(items []string) string {
	if len(items) == 0 {
		return "any"
	}
	return strings.Join(items, ",")
}
