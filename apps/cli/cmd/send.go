package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/reqctl/packages/core/config"
	"github.com/abdul-hamid-achik/reqctl/packages/curl"
	"github.com/abdul-hamid-achik/reqctl/packages/history"
	"github.com/abdul-hamid-achik/reqctl/packages/output"
	"github.com/abdul-hamid-achik/reqctl/packages/request"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build one HTTP request and dispatch it through curl",
	Long: `Build one HTTP request from flags and dispatch it through curl,
forwarding curl's output and exit code verbatim.

Examples:
  reqctl send --url http://localhost/api/users --method GET
  reqctl send --url http://localhost/api/users --method POST --body user.json --content-type json
  reqctl send --url http://localhost/api/upload --method POST --file report.pdf
  reqctl send --url http://localhost/api/import --method POST --file data.csv --body meta.json
  reqctl send --url http://localhost/api/users --method POST --body fields.txt --content-type multipart
  reqctl send --url http://localhost/api/debugged --method GET --debug --verbose
  reqctl send --url http://localhost/api/users --method POST --body user.json --content-type json --schema user.schema.json
  reqctl send --url http://localhost/api/users --method POST --body user.json --content-type json --watch`,
	Args: cobra.NoArgs,
	RunE: sendCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	urlFlag         string
	methodFlag      string
	debugFlag       bool
	verboseFlag     bool
	bodyFlag        string
	contentTypeFlag string
	fileFlag        string
	cookieFlag      string

	headerFlags   []string
	timeoutFlag   int
	insecureFlag  bool
	proxyFlag     string
	dryRunFlag    bool
	noColorFlag   bool
	schemaFlag    string
	requestIDFlag bool
	watchFlag     bool
	curlFlag      string
	configFlag    string
	noHistoryFlag bool
)

func init() {
	// Request flags
	sendCmd.Flags().StringVar(&urlFlag, "url", getEnvString("REQCTL_URL", ""), "Target endpoint (required) (env: REQCTL_URL)")
	sendCmd.Flags().StringVar(&methodFlag, "method", getEnvString("REQCTL_METHOD", ""), "HTTP verb, passed to curl unvalidated (required) (env: REQCTL_METHOD)")
	sendCmd.Flags().BoolVar(&debugFlag, "debug", false, "Append XDEBUG_SESSION query parameter to the URL")
	sendCmd.Flags().StringVar(&bodyFlag, "body", "", "Path to payload/form-data file")
	sendCmd.Flags().StringVar(&contentTypeFlag, "content-type", "", "Payload encoding hint: json, urlencoded, multipart")
	sendCmd.Flags().StringVar(&fileFlag, "file", "", "Path to file to upload as a multipart 'file' part")
	sendCmd.Flags().StringVar(&cookieFlag, "cookie", "", "Path to cookie file, read by curl")
	sendCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Extra request header ('Key: Value', repeatable)")
	sendCmd.Flags().IntVar(&timeoutFlag, "timeout", 0, "Transfer timeout in seconds (curl --max-time)")
	sendCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("REQCTL_INSECURE", false), "Disable SSL certificate validation (env: REQCTL_INSECURE)")
	sendCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("REQCTL_PROXY", ""), "Proxy URL (env: REQCTL_PROXY)")
	sendCmd.Flags().StringVar(&schemaFlag, "schema", "", "JSON schema to validate the body file against before dispatch")
	sendCmd.Flags().BoolVar(&requestIDFlag, "request-id", false, "Send a generated UUID as X-Request-Id")

	// Output flags
	sendCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("REQCTL_VERBOSE", false), "Wire tracing (curl -v) plus a pre-dispatch summary (env: REQCTL_VERBOSE)")
	sendCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("REQCTL_NO_COLOR", false), "Disable colored output (env: REQCTL_NO_COLOR)")
	sendCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print the curl command without executing it")

	// Execution flags
	sendCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-dispatch when the body or upload file changes")
	sendCmd.Flags().StringVar(&curlFlag, "curl", getEnvString("REQCTL_CURL", ""), "Transport binary override (env: REQCTL_CURL)")
	sendCmd.Flags().StringVar(&configFlag, "config", getEnvString("REQCTL_CONFIG", ""), "Path to config file (env: REQCTL_CONFIG)")
	sendCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Skip recording this invocation in history")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func sendCommand(cmd *cobra.Command, args []string) error {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	cfg, err := buildRequestConfig(fileConfig)
	if err != nil {
		return err
	}

	formatter := output.NewConsoleFormatter(
		output.WithNoColor(noColorFlag || fileConfig.GetNoColor()),
		output.WithWriter(cmd.OutOrStdout()),
	)

	// Cobra prints usage after a RunE error; the formatter owns the
	// error line itself.
	if err := cfg.Validate(); err != nil {
		formatter.Error(err)
		cmd.SilenceErrors = true
		return err
	}

	if cfg.SchemaFile != "" {
		if err := request.ValidateBodySchema(cfg.BodyFile, cfg.SchemaFile); err != nil {
			formatter.Error(err)
			cmd.SilenceErrors = true
			return err
		}
	}

	shape, err := request.BuildShape(cfg)
	if err != nil {
		formatter.Error(err)
		cmd.SilenceErrors = true
		return err
	}

	curlArgs := curl.Args(cfg, shape)
	binary := fileConfig.GetCurl()
	if curlFlag != "" {
		binary = curlFlag
	}

	if dryRunFlag {
		formatter.DryRun(binary, curlArgs)
		return nil
	}

	if cfg.Verbose {
		formatter.Summary(cfg, shape, cfg.FinalURL())
	}

	var store *history.Store
	if fileConfig.GetHistory() && !noHistoryFlag {
		store = openHistory(fileConfig)
		if store != nil {
			defer store.Close()
		}
	}

	runner := curl.NewRunner(binary)
	runner.Stdout = cmd.OutOrStdout()
	runner.Stderr = cmd.ErrOrStderr()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Shape and argv are rebuilt per dispatch so watch mode picks up
	// edits to multipart field-spec files.
	dispatch := func() int {
		shape, err := request.BuildShape(cfg)
		if err != nil {
			formatter.Error(err)
			return -1
		}
		res, runErr := runner.Run(ctx, curl.Args(cfg, shape))
		if runErr != nil && res.ExitCode < 0 {
			formatter.Error(runErr)
		}
		recordInvocation(store, cfg, shape, res)
		return res.ExitCode
	}

	if !watchFlag {
		code := dispatch()
		if code != 0 {
			// Forward curl's exit code verbatim; -1 (start failure)
			// maps onto the validation exit code. os.Exit skips the
			// deferred cleanup, so release resources here.
			if code < 0 {
				code = ExitValidationError
			}
			if store != nil {
				_ = store.Close()
			}
			cancel()
			os.Exit(code)
		}
		return nil
	}

	return watchAndRedispatch(cmd, cfg, formatter, dispatch, cancel)
}

// buildRequestConfig assembles the immutable per-invocation config from
// flags, with config-file values as defaults.
func buildRequestConfig(fileConfig *config.Config) (*request.Config, error) {
	ct, err := request.ParseContentType(contentTypeFlag)
	if err != nil {
		return nil, err
	}

	headers := headerFlags
	if len(fileConfig.Headers) > 0 {
		keys := make([]string, 0, len(fileConfig.Headers))
		for k := range fileConfig.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		defaults := make([]string, 0, len(keys))
		for _, k := range keys {
			defaults = append(defaults, k+": "+fileConfig.Headers[k])
		}
		headers = append(defaults, headers...)
	}

	timeout := time.Duration(timeoutFlag) * time.Second
	if timeoutFlag == 0 && fileConfig.Timeout > 0 {
		timeout = time.Duration(fileConfig.Timeout) * time.Second
	}

	cfg := &request.Config{
		URL:          urlFlag,
		Method:       methodFlag,
		Debug:        debugFlag,
		Verbose:      verboseFlag || fileConfig.GetVerbose(),
		BodyFile:     bodyFlag,
		ContentType:  ct,
		UploadFile:   fileFlag,
		CookieFile:   cookieFlag,
		Headers:      headers,
		Timeout:      timeout,
		Insecure:     insecureFlag || fileConfig.GetInsecure(),
		Proxy:        proxyFlag,
		SchemaFile:   schemaFlag,
		DebugSession: fileConfig.DebugSession,
	}
	if cfg.Proxy == "" {
		cfg.Proxy = fileConfig.Proxy
	}
	if requestIDFlag {
		cfg.RequestID = uuid.NewString()
	}

	return cfg, nil
}

// openHistory opens the invocation log; failures degrade to a warning.
func openHistory(fileConfig *config.Config) *history.Store {
	path := fileConfig.HistoryDB
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
			return nil
		}
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	return store
}

func recordInvocation(store *history.Store, cfg *request.Config, shape request.Shape, res curl.Result) {
	if store == nil {
		return
	}
	id := cfg.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	err := store.Record(&history.Entry{
		ID:          id,
		CreatedAt:   time.Now().UTC(),
		Method:      cfg.Method,
		URL:         cfg.FinalURL(),
		ContentType: shape.Classification(),
		BodyFile:    cfg.BodyFile,
		UploadFile:  cfg.UploadFile,
		ExitCode:    res.ExitCode,
		Duration:    res.Duration,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record history: %v\n", err)
	}
}

// watchAndRedispatch performs the initial dispatch, then re-runs it
// whenever the body or upload file changes. A failing dispatch keeps
// the watcher alive.
func watchAndRedispatch(cmd *cobra.Command, cfg *request.Config, formatter *output.ConsoleFormatter, dispatch func() int, cancel context.CancelFunc) error {
	watched := watchTargets(cfg)
	if len(watched) == 0 {
		return fmt.Errorf("--watch requires --body or --file")
	}

	dispatch()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range watched {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	isWatched := func(name string) bool {
		for _, file := range watched {
			if filepath.Clean(name) == filepath.Clean(file) {
				return true
			}
		}
		return false
	}

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer

	for {
		select {
		case <-sigCh:
			cancel()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && isWatched(event.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-dispatching...\n\n", event.Name)
					if err := cfg.Validate(); err != nil {
						formatter.Error(err)
						return
					}
					if code := dispatch(); code != 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "curl exited with code %d\n", code)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.Error(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func watchTargets(cfg *request.Config) []string {
	var targets []string
	if cfg.BodyFile != "" {
		targets = append(targets, cfg.BodyFile)
	}
	if cfg.UploadFile != "" {
		targets = append(targets, cfg.UploadFile)
	}
	return targets
}
