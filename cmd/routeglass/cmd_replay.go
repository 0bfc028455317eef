package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/routeglass/routeglass/pkg/cli"
	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/plugin/builtin"
)

var (
	replayDevice    string
	replayPlatform  string
	replayPlugin    string
	replayDirective string
	replayKind      string
	replayLast      string
	replayLimit     int
	replayFromRedis bool
	replayList      bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-run recorded parse failures",
	Long: `Reads diagnostic events that carry a raw response and runs each one
through the current plugins again. Use it after fixing a parser to check
which past failures now normalize.

Events come from --diag-file, or from the Redis list with --from-redis.

Examples:
  routeglass replay --diag-file /var/log/routeglass/diag.jsonl --last 24h
  routeglass replay --from-redis --platform juniper --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := diag.Filter{
			Device:    replayDevice,
			Platform:  replayPlatform,
			Plugin:    replayPlugin,
			Directive: replayDirective,
			Kind:      replayKind,
			Limit:     replayLimit,
		}
		if replayLast != "" {
			d, err := time.ParseDuration(replayLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", replayLast)
			}
			filter.StartTime = time.Now().Add(-d)
		}

		events, err := loadEvents(cmd, filter)
		if err != nil {
			return err
		}
		if app.jsonOutput && replayList {
			return writeJSON(cmd.OutOrStdout(), events)
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No diagnostic events found")
			return nil
		}

		if replayList {
			t := cli.NewTableTo(cmd.OutOrStdout(), "TIMESTAMP", "DEVICE", "PLATFORM", "DIRECTIVE", "KIND", "ERROR")
			for _, e := range events {
				t.Row(e.Timestamp.Format("2006-01-02 15:04:05"), e.Device, e.Platform, e.Directive, e.Kind, e.Error)
			}
			t.Flush()
			return nil
		}

		// replays must not append to the log they are reading
		registry, err := builtin.DefaultRegistry(builtin.Options{Dialect: app.dialect, Sink: diag.NewLogSink(false)})
		if err != nil {
			return err
		}
		pipeline := plugin.NewPipeline(registry, plugin.WithSink(diag.NewLogSink(false)))

		results := replayEvents(pipeline, events)
		if app.jsonOutput {
			return writeJSON(cmd.OutOrStdout(), results)
		}

		t := cli.NewTableTo(cmd.OutOrStdout(), "ID", "DEVICE", "PLATFORM", "DIRECTIVE", "WAS", "NOW")
		fixed := 0
		for _, r := range results {
			now := red(r.Result)
			if r.Routes >= 0 {
				now = green(fmt.Sprintf("%d routes", r.Routes))
				fixed++
			}
			t.Row(r.ID, r.Device, r.Platform, r.Directive, r.Was, now)
		}
		t.Flush()
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d events now normalize\n", fixed, len(results))
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayDevice, "device", "", "Filter by device")
	replayCmd.Flags().StringVar(&replayPlatform, "platform", "", "Filter by platform")
	replayCmd.Flags().StringVar(&replayPlugin, "plugin", "", "Filter by plugin")
	replayCmd.Flags().StringVar(&replayDirective, "directive", "", "Filter by directive")
	replayCmd.Flags().StringVar(&replayKind, "kind", "", "Filter by error kind (structural, field_format, ...)")
	replayCmd.Flags().StringVar(&replayLast, "last", "", "Only events from the last duration (e.g., 24h)")
	replayCmd.Flags().IntVar(&replayLimit, "limit", 100, "Maximum events to replay")
	replayCmd.Flags().BoolVar(&replayFromRedis, "from-redis", false, "Read events from the Redis list instead of the diag file")
	replayCmd.Flags().BoolVar(&replayList, "list", false, "List matching events without replaying them")
}

func loadEvents(cmd *cobra.Command, filter diag.Filter) ([]*diag.Event, error) {
	if replayFromRedis {
		if app.redisAddr == "" {
			return nil, fmt.Errorf("--from-redis needs --redis-addr or the redis_addr setting")
		}
		rs, err := diag.NewRedisSink(cmd.Context(), diag.RedisConfig{Addr: app.redisAddr, Key: app.redisKey})
		if err != nil {
			return nil, err
		}
		defer rs.Close()
		return rs.Recent(cmd.Context(), 0, filter)
	}
	if app.diagFile == "" {
		return nil, fmt.Errorf("no diagnostic file; set --diag-file or the diag_file setting")
	}
	if _, err := os.Stat(app.diagFile); err != nil {
		return nil, fmt.Errorf("diagnostic file: %w", err)
	}
	return diag.ReadFile(app.diagFile, filter)
}

// replayResult is the outcome of running one recorded event again.
type replayResult struct {
	ID        string `json:"id"`
	Device    string `json:"device"`
	Platform  string `json:"platform"`
	Directive string `json:"directive"`
	Was       string `json:"was"`
	Result    string `json:"result"`
	// Routes is -1 when the event still fails.
	Routes int `json:"routes"`
}

func replayEvents(p *plugin.Pipeline, events []*diag.Event) []replayResult {
	results := make([]replayResult, 0, len(events))
	for _, e := range events {
		q := plugin.Query{
			// recorded events came from parsers, which require structured output
			Device:    plugin.StaticDevice{DeviceName: e.Device, DevicePlatform: e.Platform, Structured: true},
			Directive: e.Directive,
		}
		out := p.Run(plugin.Raw{Stdout: e.Stdout, Stderr: e.Stderr}, q)

		r := replayResult{
			ID:        e.ID,
			Device:    e.Device,
			Platform:  e.Platform,
			Directive: e.Directive,
			Was:       e.Kind,
			Result:    plugin.KindOf(out).String(),
			Routes:    -1,
		}
		if rt, ok := out.(*model.RouteTable); ok && rt != nil {
			r.Routes = rt.Count
		}
		results = append(results, r)
	}
	return results
}
