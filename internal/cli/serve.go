package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"exam-service/internal/app"
	"exam-service/internal/config"
	"exam-service/internal/infra/memory"
	"exam-service/internal/infra/postgres"
	redisinfra "exam-service/internal/infra/redis"
	transport "exam-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/sync/errgroup"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the exam server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Without Postgres everything runs on the in-memory store, which is
	// enough for demos and local poking.
	var (
		catalogStore app.CatalogStore
		userStore    app.UserStore
		resultStore  app.ResultStore
		dashboard    app.Dashboard
	)
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		bundb := bun.NewDB(sqldb, pgdialect.New())
		defer bundb.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := postgres.NewStore(bundb)
		catalogStore = store
		userStore = store
		resultStore = store
		dashboard = postgres.NewDashboard(pool)
	} else {
		log.Printf("no postgres url configured, using in-memory store")
		store := memory.NewStore()
		catalogStore = store
		userStore = store
		resultStore = store
		dashboard = store
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 30*time.Minute)
	var registry app.SessionRegistry
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		registry = redisinfra.NewSessionRegistry(client, sessionTTL)
	} else {
		registry = memory.NewSessionRegistry()
	}

	minPIN, maxPIN := cfg.PINBounds()
	resultsService := app.NewResultsService(resultStore, dashboard)
	catalogService := app.NewCatalogService(catalogStore)
	userService := app.NewUserService(userStore, minPIN, maxPIN)
	sessionService := app.NewSessionService(catalogStore, resultsService, registry)

	handler := transport.NewHandler(catalogService, userService, sessionService, resultsService, cfg.Admin.Key)
	wsHandler := transport.NewQuizWSHandler(sessionService)

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("GET /ws/quiz", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting exam service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
