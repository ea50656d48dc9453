package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ZaguanLabs/xlitfix"
	"github.com/ZaguanLabs/xlitfix/config"
	"github.com/ZaguanLabs/xlitfix/corpus"
	"github.com/ZaguanLabs/xlitfix/dictionary"
	"github.com/ZaguanLabs/xlitfix/normalize"
	"github.com/ZaguanLabs/xlitfix/script"
)

// corpusFlags are the flags of the word-listing commands.
type corpusFlags struct {
	lang       string
	format     string
	idColumn   string
	textColumn string
	output     string
}

func (c *corpusFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.lang, "lang", "", "Source language tag; keeps only words in its script")
	fs.StringVar(&c.format, "format", "", "Input format: csv or jsonl (default: by extension)")
	fs.StringVar(&c.idColumn, "id-column", corpus.DefaultIDColumn, "Id column")
	fs.StringVar(&c.textColumn, "text-column", corpus.DefaultTextColumn, "Text column")
	fs.StringVar(&c.output, "output", "", "Output file (default: stdout)")
	fs.StringVar(&c.output, "o", "", "Output file (short for --output)")
}

// scriptWords reads the corpus named by fs.Arg(0) and returns its unique
// words, normalized and limited to the language's script when a language is
// given.
func (c *corpusFlags) scriptWords(fs *flag.FlagSet) ([]string, error) {
	in, name, err := openInput(fs.Arg(0))
	if err != nil {
		return nil, err
	}
	defer in.Close()

	format, err := formatOf(c.format, name)
	if err != nil {
		return nil, err
	}
	reader, err := newReader(in, format, config.CorpusConfig{IDColumn: c.idColumn, TextColumn: c.textColumn})
	if err != nil {
		return nil, err
	}

	var texts []string
	for {
		batch, err := corpus.ReadBatch(reader, 1024)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading corpus: %w", err)
		}
		texts = append(texts, corpus.Texts(batch)...)
	}

	if c.lang == "" {
		return corpus.UniqueWords(texts), nil
	}

	n, err := normalize.New(xlitfix.NormalizeTag(c.lang))
	if err != nil {
		return nil, err
	}
	for i, t := range texts {
		texts[i] = normalize.Terminators(n.Profile(), n.Normalize(t))
	}
	return filterScript(corpus.UniqueWords(texts), n.Profile()), nil
}

func filterScript(words []string, p script.Profile) []string {
	out := words[:0]
	for _, w := range words {
		if p.Matches(w) {
			out = append(out, w)
		}
	}
	return out
}

func runWords(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("words", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cf corpusFlags
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	words, err := cf.scriptWords(fs)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cf.output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	return corpus.WriteWords(out, "word", words)
}

func runDictDiff(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("dict-diff", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cf corpusFlags
	cf.register(fs)
	dictPath := fs.String("dict", "", "Dictionary file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dictPath == "" {
		fs.Usage()
		return fmt.Errorf("--dict is required")
	}
	if cf.lang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}

	dict, err := dictionary.LoadFile(*dictPath)
	if err != nil {
		return err
	}
	n, err := normalize.New(xlitfix.NormalizeTag(cf.lang))
	if err != nil {
		return err
	}
	dict = dict.Canonicalize(n.Normalize)

	words, err := cf.scriptWords(fs)
	if err != nil {
		return err
	}
	uncovered := dictionary.Uncovered(dict, words)

	fmt.Fprintf(stderr, "%d of %d words not in the dictionary\n", len(uncovered), len(words))

	out, closeOut, err := openOutput(cf.output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	return corpus.WriteWords(out, "word", uncovered)
}

func runDictMerge(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("dict-merge", flag.ContinueOnError)
	fs.SetOutput(stderr)

	lang := fs.String("lang", "", "Normalize merged keys for this source language")
	output := fs.String("output", "", "Output file (default: stdout)")
	fs.StringVar(output, "o", "", "Output file (short for --output)")
	jsonOut := fs.Bool("json", false, "Print merge statistics as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("at least one dictionary file is required")
	}

	dicts := make([]*dictionary.Dictionary, fs.NArg())
	for i, path := range fs.Args() {
		d, err := dictionary.LoadFile(path)
		if err != nil {
			return err
		}
		dicts[i] = d
	}

	merged := dictionary.Merge(dicts...)
	if *lang != "" {
		n, err := normalize.New(xlitfix.NormalizeTag(*lang))
		if err != nil {
			return err
		}
		merged = merged.Canonicalize(n.Normalize)
	}

	stats := dictionary.Diff(dicts[0], merged).Stats()
	if *jsonOut {
		enc := json.NewEncoder(stderr)
		if err := enc.Encode(struct {
			Entries int                  `json:"entries"`
			Diff    dictionary.DiffStats `json:"diff_from_first"`
		}{merged.Len(), stats}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(stderr, "Merged %d files: %d entries\n", fs.NArg(), merged.Len())
		fmt.Fprintf(stderr, "  Added:     %d\n", stats.Added)
		fmt.Fprintf(stderr, "  Changed:   %d\n", stats.Changed)
		fmt.Fprintf(stderr, "  Removed:   %d\n", stats.Removed)
		fmt.Fprintf(stderr, "  Unchanged: %d\n", stats.Unchanged)
	}

	out, closeOut, err := openOutput(*output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	return dictionary.WriteJSON(out, merged)
}
