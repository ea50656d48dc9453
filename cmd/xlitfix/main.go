// Command xlitfix corrects machine-transliterated corpora with a dictionary.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZaguanLabs/xlitfix"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = xlitfix.FullVersion()
	commit    = xlitfix.GitCommit
	buildDate = xlitfix.BuildDate
)

const usage = `Usage: xlitfix <command> [flags] [input]

Commands:
  correct     correct a CSV or JSONL corpus and log missing words
  html        correct the source-script text of an HTML document
  words       list the unique source-script words of a corpus
  dict-diff   list corpus words a dictionary does not cover
  dict-merge  merge dictionaries, later files winning
  version     print version information

Run 'xlitfix <command> -h' for command flags.
`

// errUsage is returned when no command or an unknown command is given.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: command required", errUsage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "correct":
		return runCorrect(rest, stdout, stderr)
	case "html":
		return runHTML(rest, stdout, stderr)
	case "words":
		return runWords(rest, stdout, stderr)
	case "dict-diff":
		return runDictDiff(rest, stdout, stderr)
	case "dict-merge":
		return runDictMerge(rest, stdout, stderr)
	case "version", "--version", "-version":
		printVersion(stdout)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", xlitfix.Name, version)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", buildDate)
	}
}

// openInput opens the named file, or stdin for "" and "-".
func openInput(path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	f, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, "", fmt.Errorf("reading file: %w", err)
	}
	return f, path, nil
}

// openOutput creates the named file, or returns stdout for "".
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path) // #nosec G304 - CLI tool writes user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// formatOf picks csv or jsonl from an explicit format or the file extension.
func formatOf(format, path string) (string, error) {
	if format == "" {
		switch {
		case strings.HasSuffix(path, ".jsonl"), strings.HasSuffix(path, ".ndjson"):
			format = "jsonl"
		default:
			format = "csv"
		}
	}
	switch format {
	case "csv", "jsonl":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want csv or jsonl)", format)
	}
}
