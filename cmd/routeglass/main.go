// Routeglass - BGP looking-glass output normalizer
//
// Runs a directive on a router (or reads saved output) and turns the vendor
// response into one canonical route table, whatever the dialect:
//
//	routeglass fetch <device> <directive> <target>    # query a device over SSH
//	routeglass parse -p huawei output.txt             # parse saved output
//	routeglass replay --last 24h                      # re-run recorded failures
//	routeglass plugins                                # list output plugins
//
// Failures never abort silently: every unparseable response is recorded as
// a diagnostic event (log, JSON-lines file, optional Redis list) with the
// raw output attached so it can be replayed after a parser fix.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/routeglass/routeglass/pkg/cli"
	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/plugin/builtin"
	"github.com/routeglass/routeglass/pkg/settings"
	"github.com/routeglass/routeglass/pkg/util"
	"github.com/routeglass/routeglass/pkg/version"
)

// App holds flag values and the objects built from them for one run.
type App struct {
	inventoryPath string
	policy        string
	diagFile      string
	redisAddr     string
	redisKey      string
	logFile       string
	logLevel      string
	metricsAddr   string
	verbose       bool
	jsonLogs      bool
	jsonOutput    bool

	settings *settings.Settings
	dialect  dialect.Options
	sink     diag.Sink
	registry *plugin.Registry
	pipeline *plugin.Pipeline
	metrics  *prometheus.Registry
	closers  []io.Closer
}

var app = &App{}

func main() {
	if err := execute(rootCmd, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs cmd and releases sinks, log files and the metrics server on
// every exit path; cobra skips post-run hooks when RunE fails.
func execute(cmd *cobra.Command, args []string) error {
	defer app.teardown()
	cmd.SetArgs(args)
	return cmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:               "routeglass",
	Short:             "Normalize router BGP output into a canonical route table",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Routeglass queries routers for BGP routes and normalizes the vendor
response (Huawei text, Junos XML, Arista JSON) into one route table.

Responses that cannot be parsed are recorded as diagnostic events with the
raw output attached; use 'routeglass replay' to re-run them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if isSettingsOrHelp(cmd) {
			return nil
		}
		return app.setup(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&app.inventoryPath, "inventory", "I", "", "Device inventory YAML")
	flags.StringVar(&app.policy, "policy", "", "Entry error policy: fail-fast or skip-invalid")
	flags.StringVar(&app.diagFile, "diag-file", "", "Append diagnostic events to this JSON-lines file")
	flags.StringVar(&app.redisAddr, "redis-addr", "", "Also push diagnostic events to this Redis")
	flags.StringVar(&app.redisKey, "redis-key", "", "Redis list for diagnostic events")
	flags.StringVar(&app.logFile, "log-file", "", "Write logs to a rotated file")
	flags.StringVar(&app.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&app.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Verbose output")
	flags.BoolVar(&app.jsonLogs, "json-logs", false, "Log in JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Route Queries:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)
	for _, cmd := range []*cobra.Command{fetchCmd, parseCmd, replayCmd} {
		cmd.GroupID = "query"
		addOutputFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{pluginsCmd, settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&app.jsonOutput, "json", false, "JSON output")
}

func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "settings", "version", "help", "completion":
			return true
		}
	}
	return false
}

// setup merges settings under flags, then builds logging, diagnostics,
// metrics and the plugin pipeline.
func (a *App) setup(cmd *cobra.Command) error {
	var err error
	a.settings, err = settings.Load()
	if err != nil {
		util.Warnf("Could not load settings: %v", err)
		a.settings = &settings.Settings{}
	}
	a.applySettings()

	if err := a.setupLogging(); err != nil {
		return err
	}

	sink, err := a.buildSink(cmd)
	if err != nil {
		return err
	}
	a.sink = sink
	a.closers = append(a.closers, sink)

	policy, err := dialect.ParsePolicy(a.policy)
	if err != nil {
		return err
	}
	a.dialect = dialect.Options{
		Policy: policy,
		OnSkip: func(index int, err error) {
			util.WithField("entry", index).Warnf("skipped invalid route entry: %v", err)
		},
	}
	a.registry, err = builtin.DefaultRegistry(builtin.Options{Dialect: a.dialect, Sink: sink})
	if err != nil {
		return fmt.Errorf("building plugin registry: %w", err)
	}

	a.metrics = prometheus.NewRegistry()
	a.pipeline = plugin.NewPipeline(a.registry, plugin.WithSink(sink), plugin.WithRegisterer(a.metrics))
	if a.metricsAddr != "" {
		a.serveMetrics()
	}
	return nil
}

func (a *App) applySettings() {
	s := a.settings
	if a.inventoryPath == "" {
		a.inventoryPath = s.GetInventoryPath()
	}
	if a.policy == "" {
		a.policy = s.Policy
	}
	if a.diagFile == "" {
		a.diagFile = s.DiagFile
	}
	if a.redisAddr == "" {
		a.redisAddr = s.RedisAddr
	}
	if a.redisKey == "" {
		a.redisKey = s.RedisKey
	}
	if a.logFile == "" {
		a.logFile = s.LogFile
	}
	if a.logLevel == "" {
		a.logLevel = s.GetLogLevel()
	}
	if a.verbose {
		a.logLevel = "debug"
	}
}

func (a *App) setupLogging() error {
	if err := util.SetLogLevel(a.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}
	if a.jsonLogs {
		util.SetJSONFormat()
	}
	if a.logFile != "" {
		closer, err := util.SetLogFile(util.LogFileConfig{
			Path:       a.logFile,
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closer)
	}
	return nil
}

func (a *App) buildSink(cmd *cobra.Command) (diag.Sink, error) {
	sinks := []diag.Sink{diag.NewLogSink(a.verbose)}

	if a.diagFile != "" {
		fs, err := diag.NewFileSink(a.diagFile, diag.RotationConfig{MaxSizeMB: 100, MaxBackups: 10})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fs)
	}

	if a.redisAddr != "" {
		rs, err := diag.NewRedisSink(cmd.Context(), diag.RedisConfig{Addr: a.redisAddr, Key: a.redisKey})
		if err != nil {
			// diagnostics must not block queries
			util.Warnf("Redis diagnostics disabled: %v", err)
		} else {
			sinks = append(sinks, rs)
		}
	}
	return diag.NewMultiSink(sinks...), nil
}

func (a *App) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Warnf("metrics server: %v", err)
		}
	}()
	a.closers = append(a.closers, srv)
}

func (a *App) teardown() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			util.Debugf("close: %v", err)
		}
	}
	a.closers = nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("routeglass dev build")
		} else {
			fmt.Printf("routeglass %s\n", version.Info())
		}
	},
}

// Color helpers delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
