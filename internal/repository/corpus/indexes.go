package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/scholium/paperdex/internal/db"
	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
)

// IndexConfig holds the vector schema parameters for the FT indexes.
type IndexConfig struct {
	Dim             int
	HNSWM           int
	HNSWEFConstruct int
}

// EnsureIndexes creates the passage and element FT indexes if absent.
// Safe to call on every startup.
func EnsureIndexes(ctx context.Context, im dbIndexManager, cfg IndexConfig) error {
	if cfg.Dim <= 0 {
		return fmt.Errorf("vector dim must be positive, got %d", cfg.Dim)
	}

	for _, def := range indexDefinitions(cfg) {
		if err := im.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

func indexDefinitions(cfg IndexConfig) []*db.IndexDefinition {
	vector := db.IndexField{
		Name:              fieldEmbedding,
		Type:              db.IndexFieldVector,
		VectorAlgo:        db.VectorHNSW,
		VectorDim:         cfg.Dim,
		VectorDistance:    db.DistanceCosine,
		VectorM:           cfg.HNSWM,
		VectorEFConstruct: cfg.HNSWEFConstruct,
	}

	shared := []db.IndexField{
		{Name: fieldDocID, Type: db.IndexFieldTag},
		{Name: fieldPage, Type: db.IndexFieldNumeric},
		{Name: fieldContent, Type: db.IndexFieldText},
	}

	passages := &db.IndexDefinition{
		Name:     indexName(item.SourcePassage),
		Prefixes: []string{passageKey("")},
		Fields:   append(append([]db.IndexField{}, shared...), vector),
	}

	elements := &db.IndexDefinition{
		Name:     indexName(item.SourceElement),
		Prefixes: []string{elementKey("")},
		Fields: append(append([]db.IndexField{}, shared...),
			db.IndexField{Name: fieldElementType, Type: db.IndexFieldTag},
			vector,
		),
	}

	documents := &db.IndexDefinition{
		Name:     domain.KeyPrefix + "documents:idx",
		Prefixes: []string{docKey("")},
		Fields: []db.IndexField{
			{Name: fieldTitle, Type: db.IndexFieldText},
			{Name: fieldPages, Type: db.IndexFieldNumeric},
		},
	}

	return []*db.IndexDefinition{passages, elements, documents}
}
