package services

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
	"github.com/custodia-labs/skycat/internal/logger"
)

// DefaultChunkSize is the number of raw rows per batch when none is configured.
const DefaultChunkSize = 1000

// ChunkedScanner runs the single scan of one group. It can be iterated once;
// a second pass needs a new scanner.
type ChunkedScanner struct {
	source    driven.DataSource
	group     domain.DataSourceGroup
	bound     *domain.SpatialBound
	chunkSize int
	metrics   driven.Metrics
	consumed  bool
}

// NewChunkedScanner creates a scanner for group over source. bound may be nil.
func NewChunkedScanner(source driven.DataSource, group domain.DataSourceGroup, bound *domain.SpatialBound, chunkSize int) *ChunkedScanner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedScanner{
		source:    source,
		group:     group,
		bound:     bound,
		chunkSize: chunkSize,
	}
}

// Request returns the scan request the scanner sends to its source.
func (s *ChunkedScanner) Request() driven.ScanRequest {
	sig := s.group.Signature
	return driven.ScanRequest{
		Table:     sig.Table,
		IDColumn:  sig.IDColumn,
		RAColumn:  sig.RAColumn,
		DecColumn: sig.DecColumn,
		Columns:   append([]string(nil), s.group.Columns...),
		Bound:     s.bound,
		ChunkSize: s.chunkSize,
	}
}

// Batches returns the scan's non-empty batches in source order. The cursor
// is closed when the sequence ends, when the consumer stops early, and on
// error. Errors end the sequence.
func (s *ChunkedScanner) Batches(ctx context.Context) iter.Seq2[domain.RawBatch, error] {
	return func(yield func(domain.RawBatch, error) bool) {
		if s.consumed {
			yield(domain.RawBatch{}, domain.ErrScanConsumed)
			return
		}
		s.consumed = true

		sig := s.group.Signature
		if s.metrics != nil {
			s.metrics.ScanStarted(sig)
		}

		cursor, err := s.source.Scan(ctx, s.Request())
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			} else {
				err = s.resourceError("open", err)
			}
			yield(domain.RawBatch{}, err)
			return
		}

		closed := false
		defer func() {
			if closed {
				return
			}
			if err := cursor.Close(); err != nil {
				logger.Warn("closing cursor for %s: %v", sig, err)
			}
		}()

		for {
			if err := ctx.Err(); err != nil {
				yield(domain.RawBatch{}, err)
				return
			}

			batch, err := cursor.Next(ctx)
			if errors.Is(err, io.EOF) {
				closed = true
				if err := cursor.Close(); err != nil {
					yield(domain.RawBatch{}, s.resourceError("close", err))
				}
				return
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(domain.RawBatch{}, ctxErr)
					return
				}
				yield(domain.RawBatch{}, s.resourceError("scan", err))
				return
			}
			if batch.Len() == 0 {
				continue
			}

			if s.metrics != nil {
				s.metrics.BatchScanned(sig, batch.Len())
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}

func (s *ChunkedScanner) resourceError(op string, err error) error {
	return &domain.ResourceError{
		Source: s.group.Signature.Source,
		Table:  s.group.Signature.Table,
		Op:     op,
		Err:    err,
	}
}
