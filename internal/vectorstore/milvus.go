package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
)

var _ VectorStore = &MilvusStore{}

// MilvusStore implements VectorStore backed by a Milvus collection.
type MilvusStore struct {
	config         *config.VectorStoreConfig
	client         client.Client
	collectionName string
	dimension      int
}

// NewMilvusStore connects to Milvus using the given configuration.
func NewMilvusStore(cfg *config.VectorStoreConfig) (*MilvusStore, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	ctx := context.Background()
	c, err := client.NewClient(ctx, client.Config{
		Address:  cfg.GetURI(),
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %v", err)
	}

	return &MilvusStore{
		config:         cfg,
		client:         c,
		collectionName: cfg.Collection,
		dimension:      cfg.Dimension,
	}, nil
}

// EnsureCollection creates the collection, index, and loads it into memory.
func (m *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %v", err)
	}

	if exists && !m.config.Recreate {
		if err := m.client.LoadCollection(ctx, m.collectionName, false); err != nil {
			return fmt.Errorf("failed to load collection: %v", err)
		}
		return nil
	}

	if exists && m.config.Recreate {
		if err := m.client.DropCollection(ctx, m.collectionName); err != nil {
			return fmt.Errorf("failed to drop existing collection: %v", err)
		}
	}

	if err := m.client.CreateCollection(ctx, m.buildSchema(), entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %v", err)
	}

	index, err := entity.NewIndexFlat(entity.COSINE)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}
	if err := m.client.CreateIndex(ctx, m.collectionName, "embedding", index, false); err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	if err := m.client.LoadCollection(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %v", err)
	}

	return nil
}

// Insert adds documents to the collection and flushes them.
func (m *MilvusStore) Insert(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	textColumn := make([]string, len(docs))
	embeddingColumn := make([][]float32, len(docs))
	chunkIndexColumn := make([]int64, len(docs))
	sourceColumn := make([]string, len(docs))
	subjectColumn := make([]string, len(docs))
	difficultyColumn := make([]int64, len(docs))

	for i, doc := range docs {
		if len(doc.Embedding) != m.dimension {
			return fmt.Errorf("document %d has embedding dimension %d, expected %d", i, len(doc.Embedding), m.dimension)
		}
		textColumn[i] = doc.Text
		embeddingColumn[i] = doc.Embedding
		chunkIndexColumn[i] = int64(doc.ChunkIndex)
		sourceColumn[i] = doc.Source
		subjectColumn[i] = doc.Subject
		difficultyColumn[i] = int64(doc.DifficultyLevel)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("text", textColumn),
		entity.NewColumnFloatVector("embedding", m.dimension, embeddingColumn),
		entity.NewColumnInt64("chunk_index", chunkIndexColumn),
		entity.NewColumnVarChar("source", sourceColumn),
		entity.NewColumnVarChar("subject", subjectColumn),
		entity.NewColumnInt64("difficulty_level", difficultyColumn),
	}

	if _, err := m.client.Insert(ctx, m.collectionName, "", columns...); err != nil {
		return fmt.Errorf("failed to insert documents: %v", err)
	}

	if err := m.client.Flush(ctx, m.collectionName, false); err != nil {
		return fmt.Errorf("failed to flush collection: %v", err)
	}

	return nil
}

// Search performs a cosine similarity search, optionally filtered by subject.
func (m *MilvusStore) Search(ctx context.Context, embedding []float32, limit int, subject string) ([]SearchResult, error) {
	if len(embedding) != m.dimension {
		return nil, fmt.Errorf("query embedding dimension %d, expected %d", len(embedding), m.dimension)
	}
	if limit <= 0 {
		limit = 5
	}

	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %v", err)
	}

	filter := ""
	if subject != "" {
		filter = fmt.Sprintf("subject == '%s'", escapeFilterValue(subject))
	}

	vectors := []entity.Vector{entity.FloatVector(embedding)}
	outputFields := []string{"text", "chunk_index", "source", "subject", "difficulty_level"}

	results, err := m.client.Search(ctx, m.collectionName, nil, filter, outputFields, vectors,
		"embedding", entity.COSINE, limit, sp)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection: %v", err)
	}

	var hits []SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			doc := Document{}
			for _, field := range result.Fields {
				switch field.Name() {
				case "text":
					if v, err := field.GetAsString(i); err == nil {
						doc.Text = v
					}
				case "source":
					if v, err := field.GetAsString(i); err == nil {
						doc.Source = v
					}
				case "subject":
					if v, err := field.GetAsString(i); err == nil {
						doc.Subject = v
					}
				case "chunk_index":
					if v, err := field.GetAsInt64(i); err == nil {
						doc.ChunkIndex = int(v)
					}
				case "difficulty_level":
					if v, err := field.GetAsInt64(i); err == nil {
						doc.DifficultyLevel = int(v)
					}
				}
			}
			hits = append(hits, SearchResult{Document: doc, Score: result.Scores[i]})
		}
	}

	return hits, nil
}

// HasChunk reports whether a chunk from the given source already exists.
func (m *MilvusStore) HasChunk(ctx context.Context, source string, chunkIndex int) (bool, error) {
	filter := fmt.Sprintf("source == '%s' && chunk_index == %d", escapeFilterValue(source), chunkIndex)

	results, err := m.client.Query(ctx, m.collectionName, []string{}, filter, []string{"id"})
	if err != nil {
		return false, fmt.Errorf("failed to query for duplicates: %v", err)
	}

	for _, col := range results {
		if col.Len() > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored documents.
func (m *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.collectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %v", err)
	}

	rowCount, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}
	count, err := strconv.ParseInt(rowCount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse row count: %v", err)
	}
	return count, nil
}

// Close closes the Milvus client connection.
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

func (m *MilvusStore) buildSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Curriculum content chunks for retrieval",
		Fields: []*entity.Field{
			{
				Name:        "id",
				DataType:    entity.FieldTypeInt64,
				PrimaryKey:  true,
				AutoID:      true,
				Description: "Primary key",
			},
			{
				Name:        "text",
				DataType:    entity.FieldTypeVarChar,
				TypeParams:  map[string]string{"max_length": "65535"},
				Description: "Content chunk text",
			},
			{
				Name:        "embedding",
				DataType:    entity.FieldTypeFloatVector,
				TypeParams:  map[string]string{"dim": strconv.Itoa(m.dimension)},
				Description: "Chunk embedding vector",
			},
			{
				Name:        "chunk_index",
				DataType:    entity.FieldTypeInt64,
				Description: "Index of chunk within source",
			},
			{
				Name:        "source",
				DataType:    entity.FieldTypeVarChar,
				TypeParams:  map[string]string{"max_length": "1000"},
				Description: "Source file path",
			},
			{
				Name:        "subject",
				DataType:    entity.FieldTypeVarChar,
				TypeParams:  map[string]string{"max_length": "255"},
				Description: "Curriculum subject",
			},
			{
				Name:        "difficulty_level",
				DataType:    entity.FieldTypeInt64,
				Description: "Difficulty level 1-10",
			},
		},
	}
}

func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}
