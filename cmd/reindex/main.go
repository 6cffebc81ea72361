package main

import (
	"context"
	"log"

	"course-notes-be/internal/config"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/mapper"
	"course-notes-be/internal/repository/specification"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/pkg/database"
	"course-notes-be/pkg/search/elastic"
)

const batchSize = 200

// reindex rebuilds the search index from every stored annotation.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Pool())
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	client, err := elastic.NewClient(elastic.Config{
		Addresses: cfg.Search.Addresses,
		Index:     cfg.Search.Index,
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx := context.Background()
	if err := client.EnsureIndex(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}

	searchMapper := mapper.NewSearchMapper()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	indexed := 0
	err = uow.NoteRepository().FindInBatches(ctx, batchSize, func(batch []*entity.Note) error {
		for _, note := range batch {
			if err := client.IndexNote(ctx, searchMapper.ToDocument(note)); err != nil {
				return err
			}
		}
		indexed += len(batch)
		log.Printf("Indexed %d annotations...", indexed)
		return nil
	}, specification.IsAnnotation{})
	if err != nil {
		log.Fatalf("Error: Reindex stopped after %d annotations: %v", indexed, err)
	}

	log.Printf("✅ Success: %d annotations indexed into %s", indexed, client.Index())
}
