package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avkotelnikov/bookshop/internal/checkout"
	"github.com/avkotelnikov/bookshop/internal/config"
	"github.com/avkotelnikov/bookshop/internal/es"
	"github.com/avkotelnikov/bookshop/internal/handlers"
	"github.com/avkotelnikov/bookshop/internal/ingest"
	"github.com/avkotelnikov/bookshop/internal/logging"
	loggingmw "github.com/avkotelnikov/bookshop/internal/middleware/logging"
	"github.com/avkotelnikov/bookshop/internal/mykafka"
	"github.com/avkotelnikov/bookshop/internal/service/search"
	"github.com/avkotelnikov/bookshop/internal/store"
	httpserver "github.com/avkotelnikov/bookshop/internal/transport/http"
)

const booksIndex = "books"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	ctx := context.Background()
	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(strings.Split(configuration.KAFKA_ADDRESS, ","))
	} else {
		logger.Warn("KAFKA_ADDRESS is empty, events will not be published")
	}

	var indexer *search.Indexer
	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		indexer = &search.Indexer{ES: esClient, Index: booksIndex}
		searchHandler = handlers.NewSearchHandler(esClient, booksIndex)
	} else {
		logger.Warn("ES_URL is empty, search is disabled")
		searchHandler = &handlers.SearchHandler{}
	}

	catalog := store.New(db)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		BookHandler: &handlers.BookHandler{Store: catalog, Producer: producer, Indexer: indexer},
		IngestHandler: &handlers.IngestHandler{
			Ingestor: &ingest.Ingestor{Store: catalog},
			Producer: producer,
			Indexer:  indexer,
		},
		CheckoutHandler: &handlers.CheckoutHandler{
			Coordinator: &checkout.Coordinator{Store: catalog, Producer: producer, Indexer: indexer},
		},
		SearchHandler: searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
