package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/dgallion1/lexchunk/internal/chunker"
	"github.com/dgallion1/lexchunk/internal/chunkstore"
	"github.com/dgallion1/lexchunk/internal/doctree"
	"github.com/dgallion1/lexchunk/internal/export"
	"github.com/dgallion1/lexchunk/internal/metadata"
	"github.com/dgallion1/lexchunk/internal/normalize"
	"github.com/dgallion1/lexchunk/internal/pipeline"
	"github.com/dgallion1/lexchunk/internal/source"
	"github.com/dgallion1/lexchunk/internal/structure"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	defaults := chunker.DefaultConfig()
	profileFlag := &cli.StringFlag{
		Name:  "profile",
		Usage: "Marker rules to parse with (auto, statute, directive)",
		Value: "auto",
	}
	pdftotextFlag := &cli.BoolFlag{
		Name:  "pdftotext",
		Usage: "Fall back to pdftotext when a PDF yields no text",
	}

	return &cli.App{
		Name:      "lexchunk",
		Usage:     "Split Vietnamese legal documents into retrieval chunks",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "chunk",
				Usage:     "Chunk documents and write them as JSON lines",
				ArgsUsage: "FILE...",
				Action:    chunkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write chunks to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "rejections",
						Usage: "Write the rejection log to this file",
					},
					&cli.IntFlag{
						Name:  "min-len",
						Usage: "Merge chunks shorter than this many characters",
						Value: defaults.MinLen,
					},
					&cli.IntFlag{
						Name:  "max-len",
						Usage: "Maximum chunk length in characters, context included",
						Value: defaults.MaxLen,
					},
					&cli.IntFlag{
						Name:  "floor-len",
						Usage: "Reject orphan chunks shorter than this",
						Value: defaults.FloorLen,
					},
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "CSV catalog of document metadata keyed by number",
					},
					&cli.StringFlag{
						Name:  "badger",
						Usage: "Also persist results to a BadgerDB directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Documents processed concurrently",
						Value: 4,
					},
					profileFlag,
					pdftotextFlag,
				},
			},
			{
				Name:      "tree",
				Usage:     "Print the parsed hierarchy of a document",
				ArgsUsage: "FILE",
				Action:    treeCommand,
				Flags:     []cli.Flag{profileFlag, pdftotextFlag},
			},
			{
				Name:      "meta",
				Usage:     "Print the metadata scraped from a document as JSON",
				ArgsUsage: "FILE",
				Action:    metaCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "CSV catalog of document metadata keyed by number",
					},
					pdftotextFlag,
				},
			},
		},
	}
}

func chunkCommand(c *cli.Context) error {
	ctx := context.Background()
	logger := slog.Default()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	cfg := chunker.DefaultConfig()
	cfg.MinLen = c.Int("min-len")
	cfg.MaxLen = c.Int("max-len")
	cfg.FloorLen = c.Int("floor-len")

	opts := []pipeline.ProcessorOption{
		pipeline.WithParser(structure.New(structure.WithProfile(structure.ParseProfile(c.String("profile"))))),
	}
	if path := c.String("catalog"); path != "" {
		cat, err := loadCatalog(path)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithCatalog(cat))
	}
	proc, err := pipeline.NewProcessor(cfg, logger, opts...)
	if err != nil {
		return err
	}

	docs := make([]pipeline.Document, 0, c.NArg())
	names := make([]string, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		text, err := readDocument(path, c.Bool("pdftotext"))
		if err != nil {
			return err
		}
		docs = append(docs, pipeline.Document{ID: docIDFromPath(path), Text: text})
		names = append(names, filepath.Base(path))
	}

	engine, err := pipeline.NewEngine(proc, c.Int("workers"))
	if err != nil {
		return err
	}
	defer engine.Release()

	start := time.Now()
	results, err := engine.ProcessBatch(ctx, docs)
	if err != nil {
		return fmt.Errorf("processing batch: %w", err)
	}

	chunkOut := c.App.Writer
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		chunkOut = f
	}
	var rejectOut io.Writer
	if path := c.String("rejections"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating rejection log: %w", err)
		}
		defer f.Close()
		rejectOut = f
	}

	w := export.NewWriter(chunkOut, rejectOut)
	for _, res := range results {
		if err := w.WriteDocument(res.DocID, res.Chunks, res.Rejections); err != nil {
			return err
		}
	}

	if dir := c.String("badger"); dir != "" {
		if err := persist(ctx, dir, logger, docs, names, results); err != nil {
			return err
		}
	}

	chunks, rejected := w.Counts()
	logger.Info("chunking complete",
		"documents", len(results),
		"chunks", chunks,
		"rejected", rejected,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func persist(ctx context.Context, dir string, logger *slog.Logger, docs []pipeline.Document, names []string, results []pipeline.Result) error {
	store, err := chunkstore.Open(dir, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	for i, res := range results {
		err := store.StoreDocument(ctx, pipeline.StoredDocument{
			Info: pipeline.DocumentInfo{
				DocID:         res.DocID,
				Filename:      names[i],
				ContentHash:   pipeline.ContentHashHex([]byte(docs[i].Text)),
				Metadata:      res.Metadata,
				ChunkCount:    len(res.Chunks),
				RejectedCount: len(res.Rejections),
				CreatedAt:     time.Now().UTC(),
			},
			Chunks:     res.Chunks,
			Rejections: res.Rejections,
		})
		if err != nil {
			return fmt.Errorf("storing %s: %w", res.DocID, err)
		}
	}
	logger.Info("results persisted", "dir", dir, "documents", len(results))
	return nil
}

func treeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file is required")
	}
	raw, err := readDocument(c.Args().First(), c.Bool("pdftotext"))
	if err != nil {
		return err
	}

	meta := metadata.Extract(raw)
	parser := structure.New(structure.WithProfile(structure.ParseProfile(c.String("profile"))))
	root := parser.Parse(normalize.Normalize(raw), meta)

	printTree(c.App.Writer, root)
	for _, a := range structure.Anomalies(root) {
		slog.Warn("non-monotonic ordinal", "line", a.Line, "level", a.Level, "label", a.Label, "previous", a.Previous)
	}
	return nil
}

func printTree(w io.Writer, root *doctree.Node) {
	root.Walk(func(n *doctree.Node, depth int) bool {
		heading := n.Heading()
		if n.Level == doctree.LevelRoot {
			heading = "(root)"
		}
		fmt.Fprintf(w, "%s%-8s %s", strings.Repeat("  ", depth), n.Level, heading)
		if n.Body != "" {
			fmt.Fprintf(w, "  [%d chars] %s", utf8.RuneCountInString(n.Body), preview(n.Body, 60))
		}
		fmt.Fprintln(w)
		return true
	})
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func metaCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file is required")
	}
	raw, err := readDocument(c.Args().First(), c.Bool("pdftotext"))
	if err != nil {
		return err
	}

	meta := metadata.Extract(raw)
	if path := c.String("catalog"); path != "" {
		cat, err := loadCatalog(path)
		if err != nil {
			return err
		}
		meta = cat.Enrich(meta)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func readDocument(path string, pdftotext bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := source.ExtractFile(f, filepath.Base(path), source.WithPdftotext(pdftotext))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

func docIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func loadCatalog(path string) (metadata.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, err := metadata.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
