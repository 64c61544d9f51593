//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_index.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"driftway/domain"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/index"
)

type ISearchIndex interface {
	Index(envelope domain.MessageEnvelope) error
	Flush() error
	Search(ctx context.Context, query, conversationID string, page int) ([]SearchHit, uint64, error)
}

// SearchHit is the projection of an envelope kept in the full-text
// index. Encrypted envelopes are never indexed, so a hit always
// carries readable content.
type SearchHit struct {
	MessageID      string
	ConversationID string
	SenderID       string
	Content        string
	At             time.Time
}

// SearchIndex maintains a bluge index over plaintext message content.
// Writes are buffered into a batch and executed either when the batch
// reaches batchSize or on an explicit Flush; a document is only
// searchable once its batch has been executed.
type SearchIndex struct {
	writer    *bluge.Writer
	log       *slog.Logger
	batchSize int
	pageSize  int

	mu      sync.Mutex
	batch   *index.Batch
	pending int
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger, batchSize, pageSize int) *SearchIndex {
	return &SearchIndex{
		writer:    writer,
		log:       log,
		batchSize: batchSize,
		pageSize:  pageSize,
		batch:     bluge.NewBatch(),
	}
}

// Index buffers the envelope for indexing. Encrypted envelopes are
// skipped: their content is opaque ciphertext and must never reach a
// server-side index.
func (s *SearchIndex) Index(envelope domain.MessageEnvelope) error {
	if envelope.IsEncrypted {
		return nil
	}

	doc := bluge.NewDocument(envelope.ID.String()).
		AddField(bluge.NewKeywordField("conversation", envelope.ConversationID).StoreValue()).
		AddField(bluge.NewKeywordField("sender", envelope.SenderID).StoreValue()).
		AddField(bluge.NewKeywordField("at", strconv.FormatInt(envelope.CreatedAt.UnixNano(), 10)).StoreValue()).
		AddField(bluge.NewTextField("content", envelope.Content).StoreValue())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch.Update(doc.ID(), doc)
	s.pending++
	if s.pending >= s.batchSize {
		return s.executeBatchLocked()
	}
	return nil
}

// Flush executes any buffered writes, making them searchable.
func (s *SearchIndex) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == 0 {
		return nil
	}
	return s.executeBatchLocked()
}

func (s *SearchIndex) executeBatchLocked() error {
	if err := s.writer.Batch(s.batch); err != nil {
		return err
	}
	s.batch.Reset()
	s.pending = 0
	return nil
}

// Search matches the query against indexed content, scoped to a single
// conversation. The page is zero-based; the second return value is the
// total number of matches across all pages.
func (s *SearchIndex) Search(ctx context.Context, query, conversationID string, page int) ([]SearchHit, uint64, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("closing index reader", slog.String("error", err.Error()))
		}
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(bluge.NewTermQuery(conversationID).SetField("conversation"))

	request := bluge.NewTopNSearch(s.pageSize, q).
		SetFrom(page * s.pageSize).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	hits := []SearchHit{}
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, 0, err
		}
		if match == nil {
			break
		}

		var hit SearchHit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "conversation":
				hit.ConversationID = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "content":
				hit.Content = string(value)
			case "at":
				if nanos, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					hit.At = time.Unix(0, nanos).UTC()
				}
			}
			return true
		})
		if err != nil {
			return nil, 0, err
		}
		hits = append(hits, hit)
	}

	return hits, iterator.Aggregations().Count(), nil
}
