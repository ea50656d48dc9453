package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ZaguanLabs/xlitfix"
	"github.com/ZaguanLabs/xlitfix/cache"
	"github.com/ZaguanLabs/xlitfix/config"
	"github.com/ZaguanLabs/xlitfix/corpus"
	"github.com/ZaguanLabs/xlitfix/dictionary"
	"github.com/ZaguanLabs/xlitfix/provider"
)

// pipelineFlags are the flags shared by correct and html.
type pipelineFlags struct {
	configPath string
	lang       string
	dictPath   string
	dictDSN    string
	dictTable  string
	model      bool
	modelName  string
	apiKey     string
	rpm        int
	retries    int
	cacheTTL   int
	redisURL   string
	cacheFile  string
	logLevel   string
	logFormat  string
	quiet      bool
	jsonOut    bool
	output     string
}

func (p *pipelineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.configPath, "config", "", "Config file (default: CONFIG_PATH or ./xlitfix.yaml)")
	fs.StringVar(&p.lang, "lang", "", "Source language tag (e.g., tam_Taml, hin_Deva)")
	fs.StringVar(&p.dictPath, "dict", "", "Dictionary file (.json, .txt, .tsv, .csv)")
	fs.StringVar(&p.dictDSN, "dict-dsn", "", "PostgreSQL DSN to load the dictionary from")
	fs.StringVar(&p.dictTable, "dict-table", "", "Dictionary table (with --dict-dsn)")
	fs.BoolVar(&p.model, "model", false, "Send unresolved sentences to the transliteration model")
	fs.StringVar(&p.modelName, "model-name", "", "OpenAI model to use")
	fs.StringVar(&p.apiKey, "api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	fs.IntVar(&p.rpm, "rpm", 0, "Model requests per minute")
	fs.IntVar(&p.retries, "max-retries", 0, "Model retries on transient errors")
	fs.IntVar(&p.cacheTTL, "cache-ttl", 0, "Model cache TTL in seconds")
	fs.StringVar(&p.redisURL, "redis-url", "", "Redis URL for the model cache (default: in-memory)")
	fs.StringVar(&p.cacheFile, "cache-file", "", "Import the model cache from and export it to this file")
	fs.StringVar(&p.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&p.logFormat, "log-format", "", "Log format (text, json)")
	fs.BoolVar(&p.quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&p.jsonOut, "json", false, "Print the run summary as JSON")
	fs.StringVar(&p.output, "output", "", "Output file (default: stdout)")
	fs.StringVar(&p.output, "o", "", "Output file (short for --output)")
}

// apply overlays the flags that were set explicitly onto cfg.
func (p *pipelineFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lang":
			cfg.Language = xlitfix.NormalizeTag(p.lang)
		case "dict":
			cfg.Dictionary.Path, cfg.Dictionary.DSN = p.dictPath, ""
		case "dict-dsn":
			cfg.Dictionary.DSN, cfg.Dictionary.Path = p.dictDSN, ""
		case "dict-table":
			cfg.Dictionary.Table = p.dictTable
		case "model":
			cfg.Model.Enabled = p.model
		case "model-name":
			cfg.Model.Name = p.modelName
		case "api-key":
			cfg.Model.APIKey = p.apiKey
		case "rpm":
			cfg.Model.RequestsPerMinute = p.rpm
		case "max-retries":
			cfg.Model.MaxRetries = p.retries
		case "cache-ttl":
			cfg.Cache.TTL = p.cacheTTL
		case "redis-url":
			cfg.Cache.RedisURL = p.redisURL
		case "cache-file":
			cfg.Cache.File = p.cacheFile
		case "log-level":
			cfg.Log.Level = p.logLevel
		case "log-format":
			cfg.Log.Format = p.logFormat
		}
	})
}

// pipeline is the set of components a correcting command runs with.
type pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	replacer *xlitfix.Replacer
	xlit     *xlitfix.Transliterator
	cache    xlitfix.TransliterationCache
	closers  []func() error
}

// Close exports the cache file, if any, and releases connections. It is
// safe to call more than once.
func (p *pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// newPipeline loads the dictionary and assembles replacer, model and cache
// from cfg.
func newPipeline(ctx context.Context, cfg *config.Config, stderr io.Writer, opts ...xlitfix.TransliteratorOption) (*pipeline, error) {
	if cfg.Language == "" {
		return nil, fmt.Errorf("--lang is required")
	}

	p := &pipeline{cfg: cfg, logger: config.NewLogger(cfg.Log, stderr)}

	dict, err := loadDictionary(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var ropts []xlitfix.ReplacerOption
	ropts = append(ropts, xlitfix.WithLogger(p.logger))
	if cfg.Dictionary.MaxNodes > 0 {
		ropts = append(ropts, xlitfix.WithIndexOptions(dictionary.WithMaxNodes(cfg.Dictionary.MaxNodes)))
	}
	p.replacer, err = xlitfix.NewReplacer(cfg.Language, dict, ropts...)
	if err != nil {
		return nil, err
	}

	topts := []xlitfix.TransliteratorOption{
		xlitfix.WithPipelineLogger(p.logger),
		xlitfix.WithTargetLang(cfg.Model.TargetLang),
	}
	if cfg.Model.Enabled {
		model, cacheOpts, err := p.buildModel()
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		topts = append(topts, xlitfix.WithModel(model))
		topts = append(topts, cacheOpts...)
	}
	topts = append(topts, opts...)

	p.xlit = xlitfix.NewTransliterator(p.replacer, topts...)
	return p, nil
}

func (p *pipeline) buildModel() (xlitfix.Model, []xlitfix.TransliteratorOption, error) {
	cfg := p.cfg

	if cfg.Model.APIKey == "" {
		return nil, nil, fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
	}

	var model xlitfix.Model = provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:  cfg.Model.APIKey,
		Model:   cfg.Model.Name,
		BaseURL: cfg.Model.BaseURL,
	})
	model = xlitfix.NewRateLimitedModel(model, xlitfix.RateLimitConfig{
		RequestsPerMinute:  cfg.Model.RequestsPerMinute,
		SentencesPerMinute: cfg.Model.SentencesPerMinute,
	})
	retry := xlitfix.DefaultRetryConfig()
	retry.MaxRetries = cfg.Model.MaxRetries
	model = xlitfix.NewRetryableModel(model, retry)
	model = &timeoutModel{model: model, timeout: cfg.Model.Timeout}

	var opts []xlitfix.TransliteratorOption
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			URL:       cfg.Cache.RedisURL,
			TTL:       cfg.Cache.TTL,
			KeyPrefix: cfg.Cache.KeyPrefix,
			Logger:    p.logger,
		})
		if err != nil {
			return nil, nil, err
		}
		p.closers = append(p.closers, rc.Close)
		p.cache = rc
		opts = append(opts, xlitfix.WithCache(rc), xlitfix.WithParallelLookup(8))
	} else if cfg.Cache.TTL > 0 {
		mc := cache.NewInMemoryCache(cfg.Cache.TTL)
		p.cache = mc
		opts = append(opts, xlitfix.WithCache(mc))
	}

	if cfg.Cache.File != "" && p.cache != nil {
		if err := p.importCache(); err != nil {
			return nil, nil, err
		}
		p.closers = append(p.closers, p.exportCache)
	}

	return model, opts, nil
}

func (p *pipeline) importCache() error {
	if _, err := os.Stat(p.cfg.Cache.File); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	res, err := cache.NewImporter(p.cache).ImportFromFile(p.cfg.Cache.File)
	if err != nil {
		return fmt.Errorf("importing cache: %w", err)
	}
	p.logger.Info("cache imported", "file", p.cfg.Cache.File, "entries", res.Imported, "failed", res.Failed)
	return nil
}

func (p *pipeline) exportCache() error {
	n, err := cache.NewExporter(p.cache).ExportToFile(p.cfg.Cache.File, map[string]string{
		"lang":        p.cfg.Language,
		"target_lang": p.cfg.Model.TargetLang,
	})
	if err != nil {
		return fmt.Errorf("exporting cache: %w", err)
	}
	p.logger.Info("cache exported", "file", p.cfg.Cache.File, "entries", n)
	return nil
}

// timeoutModel bounds each model call.
type timeoutModel struct {
	model   xlitfix.Model
	timeout time.Duration
}

func (m *timeoutModel) Transliterate(ctx context.Context, req xlitfix.TransliterateRequest) ([]string, error) {
	if m.timeout <= 0 {
		return m.model.Transliterate(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.model.Transliterate(ctx, req)
}

func loadDictionary(ctx context.Context, cfg *config.Config) (*dictionary.Dictionary, error) {
	switch {
	case cfg.Dictionary.DSN != "":
		pool, err := pgxpool.New(ctx, cfg.Dictionary.DSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to dictionary database: %w", err)
		}
		defer pool.Close()
		return dictionary.NewPostgresSource(pool, cfg.Dictionary.Table).Load(ctx, cfg.Language)
	case cfg.Dictionary.Path != "":
		return dictionary.LoadFile(cfg.Dictionary.Path)
	default:
		return nil, fmt.Errorf("a dictionary is required (--dict or --dict-dsn)")
	}
}

// loadConfig loads the config file and overlays explicitly set flags.
func loadConfig(fs *flag.FlagSet, pf *pipelineFlags) (*config.Config, error) {
	cfg, err := config.Load(pf.configPath)
	if err != nil {
		return nil, err
	}
	pf.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runSummary is the machine-readable result of a correct run.
type runSummary struct {
	RunID       string        `json:"run_id"`
	Language    string        `json:"language"`
	Records     int           `json:"records"`
	ModelCalls  int           `json:"model_outputs"`
	CacheHits   int           `json:"cache_hits"`
	ModelFailed int           `json:"model_failed"`
	Missing     int           `json:"missing_words"`
	MissingLog  string        `json:"missing_log,omitempty"`
	Stats       xlitfix.Stats `json:"stats"`
	ElapsedMs   int64         `json:"elapsed_ms"`
}

func runCorrect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("correct", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var pf pipelineFlags
	pf.register(fs)
	format := fs.String("format", "", "Input format: csv or jsonl (default: by extension)")
	outFormat := fs.String("output-format", "", "Output format: csv or jsonl (default: input format)")
	idColumn := fs.String("id-column", "", "Id column")
	textColumn := fs.String("text-column", "", "Text column")
	batchSize := fs.Int("batch-size", 0, "Sentences per batch")
	workers := fs.Int("workers", 0, "Batches processed concurrently")
	sampleSize := fs.Int("sample-size", 0, "Only process the first N records")
	missingDir := fs.String("missing-dir", "", "Directory for the <lang>.csv missing-word log")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, &pf)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "id-column":
			cfg.Corpus.IDColumn = *idColumn
		case "text-column":
			cfg.Corpus.TextColumn = *textColumn
		case "batch-size":
			cfg.Batch.Size = *batchSize
		case "workers":
			cfg.Batch.Workers = *workers
		case "sample-size":
			cfg.Batch.SampleSize = *sampleSize
		case "missing-dir":
			cfg.MissingDir = *missingDir
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer p.Close()

	in, inputName, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	inFmt, err := formatOf(*format, inputName)
	if err != nil {
		return err
	}
	reader, err := newReader(in, inFmt, cfg.Corpus)
	if err != nil {
		return err
	}
	reader = corpus.Limit(reader, cfg.Batch.SampleSize)

	outFmt := *outFormat
	if outFmt == "" {
		outFmt, err = formatOf("", pf.output)
		if err != nil || pf.output == "" {
			outFmt = inFmt
		}
	}
	out, closeOut, err := openOutput(pf.output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()
	writer, err := newWriter(out, outFmt)
	if err != nil {
		return err
	}

	summary := runSummary{RunID: uuid.NewString(), Language: cfg.Language}
	log := p.logger.With("run_id", summary.RunID, "lang", cfg.Language)
	if !pf.quiet {
		log.Info("correcting corpus", "input", inputName, "batch_size", cfg.Batch.Size, "workers", cfg.Batch.Workers)
	}

	missing := corpus.NewMissingLog()
	start := time.Now()

	for {
		records, err := readRound(reader, cfg.Batch.Size, cfg.Batch.Workers)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			break
		}

		batches := make([][]string, len(records))
		for i, recs := range records {
			batches[i] = corpus.Texts(recs)
		}

		results, err := xlitfix.ProcessParallel(ctx, p.xlit, batches, cfg.Batch.Workers)
		if err != nil {
			return fmt.Errorf("processing batches: %w", err)
		}

		for i, res := range results {
			summary.ModelCalls += res.ModelCount
			summary.CacheHits += res.CachedCount
			summary.ModelFailed += res.FailedCount
			for j, rec := range records[i] {
				missing.Add(res.Missing[j]...)
				if err := writer.Write(corpus.Result{
					Record:         rec,
					Transliterated: res.Corrected[j],
					MissingWords:   res.Missing[j],
				}); err != nil {
					return fmt.Errorf("writing result: %w", err)
				}
			}
			summary.Records += len(records[i])
		}

		if !pf.quiet {
			log.Debug("round done", "records", summary.Records)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	summary.Missing = missing.Len()
	if cfg.MissingDir != "" {
		path, err := missing.WriteFile(cfg.MissingDir, cfg.Language)
		if err != nil {
			return err
		}
		summary.MissingLog = path
	}
	summary.Stats = p.replacer.Stats()
	summary.ElapsedMs = time.Since(start).Milliseconds()

	if err := p.Close(); err != nil {
		return err
	}

	if pf.jsonOut {
		enc := json.NewEncoder(stderr)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if !pf.quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Records:         %d\n", summary.Records)
		fmt.Fprintf(stderr, "  Desync retries:  %d\n", summary.Stats.DesyncRetries)
		fmt.Fprintf(stderr, "  Repair failures: %d\n", summary.Stats.RepairFailures)
		fmt.Fprintf(stderr, "  Model outputs:   %d\n", summary.ModelCalls)
		fmt.Fprintf(stderr, "  From cache:      %d\n", summary.CacheHits)
		fmt.Fprintf(stderr, "  Missing words:   %d\n", summary.Missing)
		if summary.MissingLog != "" {
			fmt.Fprintf(stderr, "  Missing log:     %s\n", summary.MissingLog)
		}
	}

	return nil
}

// readRound reads up to workers batches of size records each.
func readRound(r corpus.Reader, size, workers int) ([][]corpus.Record, error) {
	var round [][]corpus.Record
	for len(round) < workers {
		batch, err := corpus.ReadBatch(r, size)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading corpus: %w", err)
		}
		round = append(round, batch)
	}
	return round, nil
}

func newReader(r io.Reader, format string, cols config.CorpusConfig) (corpus.Reader, error) {
	if format == "jsonl" {
		return corpus.NewJSONLReader(r, cols.IDColumn, cols.TextColumn), nil
	}
	return corpus.NewCSVReader(r, cols.IDColumn, cols.TextColumn)
}

func newWriter(w io.Writer, format string) (corpus.Writer, error) {
	switch format {
	case "jsonl":
		return corpus.NewJSONLWriter(w), nil
	case "csv":
		return corpus.NewCSVWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
