// Package ingestor reads documents from files, directories and URLs and
// runs them through a transformer concurrently
package ingestor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alevsk/shapeshift/internal/codec"
	"github.com/alevsk/shapeshift/internal/logger"
	"github.com/alevsk/shapeshift/internal/orchestrator"
	"github.com/alevsk/shapeshift/internal/types"
	"golang.org/x/sync/errgroup"
)

// Options holds configuration for the ingestor
type Options struct {
	// MaxConcurrency defines the maximum number of documents transformed at once
	MaxConcurrency int
	// FollowSymlinks determines if symlinks should be followed during directory traversal
	FollowSymlinks bool
	// Include keeps only walked files matching one of these globs, e.g. "**/*.json"
	Include []string
	// Exclude drops walked files matching one of these globs
	Exclude []string
	// HTTPClient fetches http and https sources; nil uses a client with a 30s timeout
	HTTPClient *http.Client
	// MaxRemoteBytes caps fetched documents, DefaultMaxRemoteBytes when zero
	MaxRemoteBytes int64
}

// DefaultOptions returns the default ingestor options
func DefaultOptions() *Options {
	return &Options{
		MaxConcurrency: 4,
		FollowSymlinks: false,
		MaxRemoteBytes: DefaultMaxRemoteBytes,
	}
}

// Error types for ingestion operations
var (
	ErrInvalidSource = fmt.Errorf("invalid source")
	ErrNoDocuments   = fmt.Errorf("no documents")
)

// Transformer converts one document. *orchestrator.Orchestrator satisfies it.
type Transformer interface {
	Transform(text string, opts orchestrator.TransformOptions) *types.TransformResult
}

// Document is a file read from the source
type Document struct {
	Path string
	// Format is the format suggested by the file extension, empty if unknown
	Format  codec.Format
	Size    int64
	ModTime time.Time
	Content string
}

// Result pairs a document with its transform outcome
type Result struct {
	Document  *Document
	Transform *types.TransformResult
}

// Ingestor manages reading and transforming sources
type Ingestor struct {
	opts *Options
}

// New creates a new Ingestor with the given options
func New(opts *Options) *Ingestor {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Ingestor{
		opts: opts,
	}
}

// Collect reads source, which is an http or https URL, a single file, or
// a directory walked recursively for files with a known extension
func (i *Ingestor) Collect(ctx context.Context, source string) ([]*Document, error) {
	if source == "" {
		return nil, ErrInvalidSource
	}
	if isRemote(source) {
		doc, err := i.fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		return []*Document{doc}, nil
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	if info.IsDir() {
		return i.walkFolder(ctx, source)
	}
	doc, err := readFile(source)
	if err != nil {
		return nil, err
	}
	return []*Document{doc}, nil
}

// Ingest collects source and transforms every document with at most
// MaxConcurrency transforms in flight. Results keep the collection order.
// A document's source format comes from opts.Source, else its extension,
// else detection.
func (i *Ingestor) Ingest(ctx context.Context, source string, t Transformer, opts orchestrator.TransformOptions) ([]*Result, error) {
	docs, err := i.Collect(ctx, source)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	if i.opts.MaxConcurrency > 0 {
		g.SetLimit(i.opts.MaxConcurrency)
	}

	for idx, doc := range docs {
		idx, doc := idx, doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docOpts := opts
			if docOpts.Source == "" {
				docOpts.Source = string(doc.Format)
			}
			res := t.Transform(doc.Content, docOpts)
			logger.Debug().
				Str("path", doc.Path).
				Bool("valid", res.Valid).
				Msg("document transformed")
			results[idx] = &Result{Document: doc, Transform: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
