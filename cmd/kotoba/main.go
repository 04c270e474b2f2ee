// Package main is the kotoba CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/analysis"
	"github.com/hyperjump/kotoba/internal/cli"
	"github.com/hyperjump/kotoba/internal/config"
	"github.com/hyperjump/kotoba/internal/glossary"
	"github.com/hyperjump/kotoba/internal/metrics"
	"github.com/hyperjump/kotoba/internal/modelcache"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/search"
	"github.com/hyperjump/kotoba/internal/server"
	"github.com/hyperjump/kotoba/internal/storage"
	"github.com/hyperjump/kotoba/internal/translate"
	"github.com/hyperjump/kotoba/internal/vector"
	"github.com/hyperjump/kotoba/internal/watcher"
	"github.com/hyperjump/kotoba/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotoba/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if it exists; when neither exists the built-in
// defaults are used. Returns the config and the path actually loaded ("" for
// built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// A missing .env is normal; the API key may already be in the environment.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "retrieve":
		runRetrieve()
	case "import":
		runImport()
	case "build":
		runBuild()
	case "status":
		runStatus()
	case "translate":
		runTranslate()
	case "version", "--version", "-v":
		fmt.Printf("kotoba version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	m := metrics.New()
	components, err := initializeComponents(cfg, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if err := components.Engine.Initialize(context.Background()); err != nil {
		if !errors.Is(err, vector.ErrEmptyCorpus) {
			logger.Fatal("Failed to initialize model", zap.Error(err))
		}
		logger.Warn("Glossary is empty; retrieval is unavailable until terms are imported")
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Watch.EnabledOrDefault() {
		watchSvc = newWatcher(cfg, components, logger)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	opts := []server.Option{server.WithMetrics(m)}
	if tr, err := newTranslator(cfg, components.Engine, logger, m); err == nil {
		opts = append(opts, server.WithTranslator(tr))
	} else {
		logger.Warn("Translation disabled", zap.String("api_key_env", cfg.Translate.APIKeyEnv), zap.Error(err))
	}

	srv := server.NewServer(
		components.Engine,
		components.Importer,
		components.Storage,
		cfg,
		logger,
		opts...,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// newWatcher refreshes the model when the term database changes and imports
// glossary files dropped into the configured inbox directories.
func newWatcher(cfg *config.Config, c *Components, logger *zap.Logger) *watcher.Watcher {
	refresh := func() {
		changed, err := c.Engine.Refresh(context.Background())
		switch {
		case err != nil:
			logger.Warn("model refresh failed", zap.Error(err))
		case changed:
			logger.Info("Model refreshed after database change")
		}
	}
	opts := []watcher.WatcherOption{
		watcher.WithLogger(logger),
		watcher.WithDebounce(cfg.Watch.Debounce()),
	}
	if len(cfg.Watch.Directories) > 0 {
		opts = append(opts, watcher.WithInbox(cfg.Watch.Directories, cfg.Watch.Extensions, func(path string) {
			if _, err := c.Importer.ImportFile(context.Background(), path); err != nil {
				logger.Warn("watch import failed", zap.String("path", path), zap.Error(err))
				return
			}
			refresh()
		}))
	}
	return watcher.NewWatcher(storage.DatabaseFiles(cfg.Storage.DatabasePath), refresh, opts...)
}

func printRetrieveUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotoba retrieve [flags] <text>\n\n")
	fmt.Fprintf(fs.Output(), "Text is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotoba retrieve deep learning models
  kotoba retrieve -k 10 "Convolutional neural networks (CNN)"
  kotoba retrieve --output json machine learning
`)
}

// buildQuery joins all positional args with spaces so multi-word input works
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that appear after the positional text to the front
// so that flag.Parse sees them; the flag package stops at the first non-flag.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runRetrieve() {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read the local database and model directly)")
	k := fs.Int("k", 0, "number of terms (0 = retrieval.default_k)")
	outputFormat := fs.String("output", "text", "output format: text, compact (term<TAB>score per line), or json")
	fs.Usage = func() { printRetrieveUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	text := buildQuery(fs.Args())
	if text == "" {
		printRetrieveUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	query := &models.RetrieveQuery{Query: text, K: *k}

	var response *models.RetrieveResponse
	if *serverURL != "" {
		response = new(models.RetrieveResponse)
		if err := postJSON(*serverURL+"/api/v1/retrieve", query, response); err != nil {
			fmt.Fprintf(os.Stderr, "Retrieve failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := query.Validate(cfg.Retrieval.DefaultK, cfg.Retrieval.MaxK); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid query: %v\n", err)
			os.Exit(1)
		}
		components, logger := mustComponents(cfg)
		defer logger.Sync()
		defer components.Close()

		start := time.Now()
		ctx := context.Background()
		if err := components.Engine.Initialize(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load model: %v\n", err)
			os.Exit(1)
		}
		matches, err := components.Engine.Retrieve(ctx, query.Query, query.K)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Retrieve failed: %v\n", err)
			os.Exit(1)
		}
		response = &models.RetrieveResponse{
			Query:      query.Query,
			Normalized: analysis.Normalize(query.Query),
			Matches:    matches,
			QueryTime:  time.Since(start).Milliseconds(),
		}
	}
	if err := cli.WriteMatches(os.Stdout, response, format, cfg.Retrieval.DefinitionPreview); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	sample := fs.Bool("sample", false, "import the built-in sample glossary")
	noBuild := fs.Bool("no-build", false, "skip rebuilding the model after import")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 && !*sample {
		fmt.Printf("Usage: kotoba import [flags] <glossary-file-or-directory>...\n")
		fmt.Printf("Supported formats: %s\n", strings.Join(glossary.Extensions, ", "))
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, logger := mustComponents(cfg)
	defer logger.Sync()
	defer components.Close()
	ctx := context.Background()

	var results []*glossary.Result
	if *sample {
		res, err := components.Importer.ImportSample(ctx)
		if err != nil {
			fmt.Printf("Sample import failed: %v\n", err)
			os.Exit(1)
		}
		results = append(results, res)
	}
	for _, path := range fs.Args() {
		files, err := glossaryFiles(path)
		if err != nil {
			fmt.Printf("Failed to read %s: %v\n", path, err)
			os.Exit(1)
		}
		for _, f := range files {
			res, err := components.Importer.ImportFile(ctx, f)
			if err != nil {
				fmt.Printf("Import failed: %v\n", err)
				os.Exit(1)
			}
			results = append(results, res)
		}
	}

	inserted := 0
	for _, res := range results {
		inserted += res.Inserted
		fmt.Printf("%s: %d parsed, %d inserted, %d duplicates\n", res.Source, res.Parsed, res.Inserted, res.Duplicates)
	}
	if *noBuild || inserted == 0 {
		return
	}
	model, err := components.Engine.Rebuild(ctx)
	if model == nil {
		fmt.Printf("Model rebuild failed: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Model built but not cached: %v\n", err)
	}
	fmt.Printf("Model rebuilt: %d terms, %d features\n", model.Matrix.Rows(), model.Vocabulary.Size())
}

// glossaryFiles expands path to the supported glossary files it names. A
// directory contributes its supported files, non-recursively.
func glossaryFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		p := filepath.Join(path, e.Name())
		if !e.IsDir() && glossary.Supported(p) {
			files = append(files, p)
		}
	}
	return files, nil
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	clearCache := fs.Bool("clear", false, "remove the cached model before building")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, logger := mustComponents(cfg)
	defer logger.Sync()
	defer components.Close()

	if *clearCache {
		if err := components.Cache.Clear(); err != nil {
			fmt.Printf("Failed to clear model cache: %v\n", err)
			os.Exit(1)
		}
	}
	model, err := components.Engine.Rebuild(context.Background())
	if model == nil {
		fmt.Printf("Build failed: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Model built but not cached: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Model %s built: %d terms, %d features -> %s\n",
		model.BuildID, model.Matrix.Rows(), model.Vocabulary.Size(), components.Cache.Dir())
}

// statusResponse is the shape of GET /api/v1/status.
type statusResponse struct {
	Terms          int64                  `json:"terms"`
	Model          search.Status          `json:"model"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read the local database and model directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		components, logger := mustComponents(cfg)
		defer logger.Sync()
		defer components.Close()
		ctx := context.Background()

		count, err := components.Storage.CountTerms(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count terms failed: %v\n", err)
			os.Exit(1)
		}
		status.Terms = count
		if man, err := components.Cache.Manifest(); err == nil {
			status.Model = search.Status{
				Initialized: true,
				BuildID:     man.BuildID,
				BuiltAt:     man.BuiltAt,
				Source:      search.SourceCache,
				Fingerprint: man.Fingerprint,
				Terms:       man.Terms,
				Features:    man.Features,
			}
		}
		status.Config = map[string]interface{}{
			"database_path": cfg.Storage.DatabasePath,
			"model_dir":     cfg.Storage.ModelDir,
			"default_k":     cfg.Retrieval.DefaultK,
			"max_k":         cfg.Retrieval.MaxK,
		}
		paths := append(storage.DatabaseFiles(cfg.Storage.DatabasePath), cfg.Storage.ModelDir)
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, &status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "terms:              %d   # glossary terms in the database\n", status.Terms)
	if status.Model.Initialized {
		fmt.Fprintf(w, "model_build_id:     %s\n", status.Model.BuildID)
		fmt.Fprintf(w, "model_built_at:     %s\n", status.Model.BuiltAt.Format(time.RFC3339))
		fmt.Fprintf(w, "model_terms:        %d\n", status.Model.Terms)
		fmt.Fprintf(w, "model_features:     %d   # distinct 1-3 grams\n", status.Model.Features)
		if status.Model.Terms != int(status.Terms) {
			fmt.Fprintln(w, "# model is out of date; run `kotoba build`")
		}
	} else {
		fmt.Fprintln(w, "model:              none   # run `kotoba build`")
	}
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + model on disk\n", *status.DiskUsageBytes)
	}
	if len(status.Config) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		for _, key := range []string{"database_path", "model_dir", "default_k", "max_k"} {
			if v, ok := status.Config[key]; ok {
				fmt.Fprintf(w, "%-19s %v\n", key+":", v)
			}
		}
	}
}

func runTranslate() {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = translate in-process)")
	k := fs.Int("k", 0, "number of glossary terms in the prompt (0 = translate.top_k)")
	outputFormat := fs.String("output", "text", "output format: text, compact (translation only), or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	text := buildQuery(fs.Args())
	if text == "" {
		fmt.Println("Usage: kotoba translate [flags] <text>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	req := &models.TranslateRequest{Text: text, K: *k}

	var response *models.TranslateResponse
	if *serverURL != "" {
		response = new(models.TranslateResponse)
		if err := postJSON(*serverURL+"/api/v1/translate", req, response); err != nil {
			fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		if req.K == 0 {
			req.K = cfg.Translate.TopK
		}
		if err := req.Validate(cfg.Retrieval.DefaultK, cfg.Retrieval.MaxK); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
			os.Exit(1)
		}
		components, logger := mustComponents(cfg)
		defer logger.Sync()
		defer components.Close()

		ctx := context.Background()
		if err := components.Engine.Initialize(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load model: %v\n", err)
			os.Exit(1)
		}
		tr, err := newTranslator(cfg, components.Engine, logger, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Translation unavailable: %v (set %s)\n", err, cfg.Translate.APIKeyEnv)
			os.Exit(1)
		}
		start := time.Now()
		res, err := tr.Translate(ctx, req.Text, req.K)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
			os.Exit(1)
		}
		response = &models.TranslateResponse{
			Text:        req.Text,
			Translation: res.Translation,
			Terms:       res.Terms,
			QueryTime:   time.Since(start).Milliseconds(),
		}
	}
	if err := cli.WriteTranslation(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// newTranslator wires the chat-completions client to the engine. It fails
// with translate.ErrMissingAPIKey when the key variable is unset.
func newTranslator(cfg *config.Config, engine *search.Engine, logger *zap.Logger, m *metrics.Metrics) (*translate.Service, error) {
	client, err := translate.NewClient(translate.ClientConfig{
		BaseURL:     cfg.Translate.BaseURL,
		APIKey:      cfg.Translate.APIKey(),
		Model:       cfg.Translate.Model,
		Temperature: cfg.Translate.Temperature,
		MaxTokens:   cfg.Translate.MaxTokens,
		Timeout:     cfg.Translate.Timeout(),
		MaxRetries:  cfg.Translate.MaxRetries,
	}, translate.WithClientLogger(logger))
	if err != nil {
		return nil, err
	}
	return translate.NewService(engine, client,
		translate.WithLogger(logger),
		translate.WithMetrics(m),
		translate.WithTargetLanguage(cfg.Translate.TargetLanguage),
		translate.WithDefinitionPreview(cfg.Retrieval.DefinitionPreview),
	), nil
}

func postJSON(endpoint string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func getJSON(endpoint string, out interface{}) error {
	resp, err := http.Get(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Cache    *modelcache.Cache
	Engine   *search.Engine
	Importer *glossary.Importer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	cache := modelcache.New(cfg.Storage.ModelDir, modelcache.WithLogger(logger))
	engine := search.NewEngine(store, cache,
		search.WithLogger(logger),
		search.WithMetrics(m),
	)
	return &Components{
		Storage:  store,
		Cache:    cache,
		Engine:   engine,
		Importer: glossary.NewImporter(store, glossary.WithLogger(logger)),
	}, nil
}

// mustComponents creates the logger and components for one-shot commands,
// exiting on failure.
func mustComponents(cfg *config.Config) (*Components, *zap.Logger) {
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, logger
}

func printUsage() {
	fmt.Print(`kotoba - glossary term retrieval for translation prompts

Usage:
  kotoba <command> [flags] [args]

Commands:
  server      Start the HTTP API (rebuilds the model when the database changes)
  retrieve    Print the glossary terms most similar to a text
  import      Import glossary files (.tsv .txt .md .csv .xlsx .pdf .docx) or --sample
  build       Rebuild the term model from the database
  status      Show term count, model and disk usage
  translate   Translate a text with the most similar glossary terms in the prompt
  version     Print the version
  help        Show this help

Run 'kotoba <command> -h' for command flags.
Config: /usr/local/etc/kotoba/config.yaml (or ./config.yaml); API keys may be set in .env.
`)
}
