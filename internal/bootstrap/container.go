package bootstrap

import (
	"context"

	"course-notes-be/internal/config"
	"course-notes-be/internal/controller"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/pkg/serverutils"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/internal/service"
	pktNats "course-notes-be/pkg/nats"
	"course-notes-be/pkg/search/elastic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AnnotationController controller.IAnnotationController
	ReplyController      controller.IReplyController
	SearchController     controller.ISearchController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	paginator := serverutils.NewPaginator(cfg.App.MaxPaginatedResults)

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			natsPub = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub, natsPub, sysLogger)

	// 3. Search backends
	dbSearcher := service.NewDBNoteSearcher(uowFactory)
	var indexSearcher service.INoteSearcher

	if !cfg.Search.Disabled {
		esClient, err := elastic.NewClient(elastic.Config{
			Addresses: cfg.Search.Addresses,
			Index:     cfg.Search.Index,
		})
		if err != nil {
			sysLogger.Error("Bootstrap", "Failed to create search index client, search stays in the database", map[string]interface{}{"error": err.Error()})
		} else {
			if err := esClient.EnsureIndex(context.Background()); err != nil {
				sysLogger.Warn("Bootstrap", "Failed to ensure search index", map[string]interface{}{"error": err.Error(), "index": cfg.Search.Index})
			}
			indexSearcher = service.NewIndexNoteSearcher(esClient)

			indexerLogger := logger.NewIsolatedLogger("logs/indexer.log")
			c.IndexerService = service.NewIndexerService(pubSub, cfg.App.EventTopic, uowFactory, esClient, indexerLogger)
		}
	}

	// 4. Services
	annotationService := service.NewAnnotationService(uowFactory, publisherService)
	replyService := service.NewReplyService(uowFactory, publisherService)
	searchService := service.NewSearchService(dbSearcher, indexSearcher)

	// 5. Controllers
	c.AnnotationController = controller.NewAnnotationController(annotationService, paginator, sysLogger)
	c.ReplyController = controller.NewReplyController(replyService, paginator, sysLogger)
	c.SearchController = controller.NewSearchController(searchService, paginator, sysLogger)

	return c
}

// Close releases the event bus and broker connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
