// Package pipeline runs documents through normalize, parse, flatten,
// optimize and filter, and supervises asynchronous ingest jobs around it.
package pipeline

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/lexchunk/internal/chunker"
	"github.com/dgallion1/lexchunk/internal/doctree"
	"github.com/dgallion1/lexchunk/internal/metadata"
	"github.com/dgallion1/lexchunk/internal/metrics"
	"github.com/dgallion1/lexchunk/internal/normalize"
	"github.com/dgallion1/lexchunk/internal/quality"
	"github.com/dgallion1/lexchunk/internal/structure"
)

// Document is one unit of upstream input: raw extracted text and whatever
// metadata the caller already knows.
type Document struct {
	ID       string
	Text     string
	Metadata doctree.DocumentMetadata
}

// Result is the outcome of processing one document.
type Result struct {
	DocID      string
	Metadata   doctree.DocumentMetadata
	Chunks     []doctree.Chunk
	Rejections []doctree.RejectionLogEntry
	Blocks     int
	Anomalies  []structure.Anomaly
	Fallback   bool // parser failed; the document was chunked flat
	Duration   time.Duration
}

// TreeParser builds the hierarchy of a normalized document.
type TreeParser interface {
	Parse(clean string, meta doctree.DocumentMetadata) *doctree.Node
}

// Processor runs the per-document pipeline. It holds no mutable state and
// is safe for concurrent use.
type Processor struct {
	cfg        chunker.Config
	normalizer *normalize.Normalizer
	parser     TreeParser
	catalog    metadata.Catalog
	stats      *Stats
	log        *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithParser replaces the default structure parser.
func WithParser(p TreeParser) ProcessorOption {
	return func(pr *Processor) {
		pr.parser = p
	}
}

// WithNormalizer replaces the default noise rules.
func WithNormalizer(n *normalize.Normalizer) ProcessorOption {
	return func(pr *Processor) {
		pr.normalizer = n
	}
}

// WithCatalog enriches metadata from a published catalog.
func WithCatalog(c metadata.Catalog) ProcessorOption {
	return func(pr *Processor) {
		pr.catalog = c
	}
}

// WithStats records per-document latency.
func WithStats(s *Stats) ProcessorOption {
	return func(pr *Processor) {
		pr.stats = s
	}
}

// NewProcessor validates cfg before any document is seen. A bad bound set
// is the only fatal error of a run.
func NewProcessor(cfg chunker.Config, log *slog.Logger, opts ...ProcessorOption) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Processor{
		cfg:        cfg,
		normalizer: normalize.New(normalize.DefaultRules()),
		parser:     structure.New(),
		log:        log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the chunk bounds in use.
func (p *Processor) Config() chunker.Config {
	return p.cfg
}

// DocumentID is the id used when the caller supplies none: a prefix of the
// content hash, so identical text always yields identical chunk ids.
func DocumentID(text string) string {
	return ContentHashHex([]byte(text))[:16]
}

// Process never fails. Unparseable structure degrades to one flat root and
// degenerate chunks go to the rejection log.
func (p *Processor) Process(doc Document) Result {
	start := time.Now()

	docID := doc.ID
	if docID == "" {
		docID = DocumentID(doc.Text)
	}
	log := p.log.With("doc_id", docID)

	meta := doc.Metadata.Merge(metadata.Extract(doc.Text))
	if p.catalog != nil {
		meta = p.catalog.Enrich(meta)
	}
	if meta.IssuingBody == "" && meta.Number != "" {
		meta.IssuingBody = metadata.IssuerFor(meta.Number)
	}

	clean := p.normalizer.Normalize(doc.Text)
	root, fallback := p.parse(clean, meta, log)

	anomalies := structure.Anomalies(root)
	for _, a := range anomalies {
		log.Debug("non-monotonic ordinal", "line", a.Line, "level", a.Level, "label", a.Label, "previous", a.Previous)
	}

	blocks := chunker.Flatten(root, meta)
	chunks := chunker.Optimize(docID, blocks, p.cfg)
	accepted, rejected := quality.Filter(chunks, p.cfg.FloorLen)
	for _, r := range rejected {
		log.Info("chunk rejected", "block_seq", r.BlockSeq, "reason", r.Reason, "text", r.Text)
	}

	res := Result{
		DocID:      docID,
		Metadata:   meta,
		Chunks:     accepted,
		Rejections: rejected,
		Blocks:     len(blocks),
		Anomalies:  anomalies,
		Fallback:   fallback,
		Duration:   time.Since(start),
	}
	p.observe(res)
	log.Debug("document processed", "blocks", res.Blocks, "chunks", len(accepted), "rejected", len(rejected), "duration", res.Duration)
	return res
}

func (p *Processor) parse(clean string, meta doctree.DocumentMetadata, log *slog.Logger) (root *doctree.Node, fallback bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("structure parse failed, chunking flat", "panic", fmt.Sprint(r))
			root = flatRoot(clean)
			fallback = true
		}
	}()
	return p.parser.Parse(clean, meta), false
}

// flatRoot holds the whole text as a single root body, one line per
// paragraph.
func flatRoot(clean string) *doctree.Node {
	var paras []string
	for _, para := range strings.Split(clean, "\n\n") {
		if p := strings.Join(strings.Fields(para), " "); p != "" {
			paras = append(paras, p)
		}
	}
	return &doctree.Node{Level: doctree.LevelRoot, Body: strings.Join(paras, "\n")}
}

func (p *Processor) observe(res Result) {
	result := "ok"
	if res.Fallback {
		result = "fallback"
	}
	metrics.DocumentsTotal.WithLabelValues(result).Inc()
	metrics.ProcessDuration.Observe(res.Duration.Seconds())
	metrics.StructureAnomaliesTotal.Add(float64(len(res.Anomalies)))
	metrics.ChunksTotal.Add(float64(len(res.Chunks)))
	for _, c := range res.Chunks {
		metrics.ChunkLength.Observe(float64(chunker.RuneLen(c.Text)))
	}
	for _, r := range res.Rejections {
		metrics.RejectionsTotal.WithLabelValues(string(r.Reason)).Inc()
	}
	if p.stats != nil {
		p.stats.Record(res.Duration.Milliseconds())
	}
}
