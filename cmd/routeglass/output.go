package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/routeglass/routeglass/pkg/cli"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/plugin"
)

// printOutput renders the pipeline result. A route table is printed as a
// table (or JSON with --json); anything else means no parser claimed the
// response, which is reported as an error.
func printOutput(w io.Writer, out plugin.Output, jsonOut bool) error {
	switch v := out.(type) {
	case *model.RouteTable:
		if v == nil {
			return fmt.Errorf("no routes produced")
		}
		if jsonOut {
			return writeJSON(w, v)
		}
		cli.PrintRouteTable(w, v)
		return nil
	case plugin.Empty:
		return fmt.Errorf("response could not be parsed (%s)", v)
	case plugin.Raw:
		if jsonOut {
			return writeJSON(w, v)
		}
		fmt.Fprintln(os.Stderr, yellow("No parser applies to this query; showing cleaned output."))
		fmt.Fprint(w, v.Stdout)
		if v.Stderr != "" {
			fmt.Fprint(os.Stderr, v.Stderr)
		}
		return nil
	default:
		return fmt.Errorf("unexpected pipeline result %s", plugin.KindOf(out))
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
