package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/ZaguanLabs/xlitfix"
	"github.com/ZaguanLabs/xlitfix/processor"
	"github.com/ZaguanLabs/xlitfix/script"
)

// htmlOutput represents the JSON output of the html command.
type htmlOutput struct {
	Content     string   `json:"content"`
	TotalNodes  int      `json:"total_nodes"`
	ModelCount  int      `json:"model_count"`
	CachedCount int      `json:"cached_count"`
	Missing     []string `json:"missing_words"`
	ElapsedMs   int64    `json:"elapsed_ms"`
}

func runHTML(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var pf pipelineFlags
	pf.register(fs)
	dryRun := fs.Bool("dry-run", false, "List the text that would be corrected without correcting it")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(fs, &pf)
	if err != nil {
		return err
	}
	if cfg.Language == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}
	_, profile, err := script.ParseLanguage(xlitfix.NormalizeTag(cfg.Language))
	if err != nil {
		return err
	}

	in, inputName, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputName, err)
	}

	proc := processor.NewHTMLProcessor(profile)
	if *dryRun {
		return runDryRun(proc, string(data), inputName, cfg.Language, stdout, pf.jsonOut)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, stderr, xlitfix.WithProcessor(proc))
	if err != nil {
		return err
	}
	defer p.Close()

	if !pf.quiet {
		fmt.Fprintf(stderr, "Correcting %s (%s)...\n", inputName, cfg.Language)
	}

	start := time.Now()
	result, err := p.xlit.ProcessHTML(ctx, string(data))
	if err != nil {
		return fmt.Errorf("correction failed: %w", err)
	}
	elapsed := time.Since(start)

	if err := p.Close(); err != nil {
		return err
	}

	out, closeOut, err := openOutput(pf.output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	if pf.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(htmlOutput{
			Content:     result.Content,
			TotalNodes:  result.TotalNodes,
			ModelCount:  result.ModelCount,
			CachedCount: result.CachedCount,
			Missing:     result.Missing,
			ElapsedMs:   elapsed.Milliseconds(),
		})
	}

	fmt.Fprint(out, result.Content)

	if !pf.quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Nodes found:   %d\n", result.TotalNodes)
		fmt.Fprintf(stderr, "  Model outputs: %d\n", result.ModelCount)
		fmt.Fprintf(stderr, "  From cache:    %d\n", result.CachedCount)
		fmt.Fprintf(stderr, "  Missing words: %d\n", len(result.Missing))
	}

	return nil
}

// runDryRun shows what would be corrected without building the pipeline.
func runDryRun(proc *processor.HTMLProcessor, input, inputName, lang string, stdout io.Writer, jsonOut bool) error {
	_, nodes, err := proc.Extract(input)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	if jsonOut {
		type dryRunOutput struct {
			InputFile string   `json:"input_file"`
			Language  string   `json:"language"`
			NodeCount int      `json:"node_count"`
			Texts     []string `json:"texts"`
		}

		texts := make([]string, len(nodes))
		for i, n := range nodes {
			texts[i] = n.Text
		}

		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dryRunOutput{
			InputFile: inputName,
			Language:  lang,
			NodeCount: len(nodes),
			Texts:     texts,
		})
	}

	fmt.Fprintf(stdout, "Dry run: %s (%s)\n", inputName, lang)
	fmt.Fprintf(stdout, "Found %d text nodes to correct:\n\n", len(nodes))

	for i, node := range nodes {
		fmt.Fprintf(stdout, "%3d. %q\n", i+1, truncate(node.Text, 60))
		if attr := node.Metadata["attribute"]; attr != "" {
			fmt.Fprintf(stdout, "     Attribute: %s on <%s>\n", attr, node.Metadata["tag"])
		}
	}

	return nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
