// routerd is the university support chat router daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/classify"
	"github.com/uniassist/supportcore/routercore/config"
	"github.com/uniassist/supportcore/routercore/httpapi"
	"github.com/uniassist/supportcore/routercore/observability"
	"github.com/uniassist/supportcore/routercore/session"
	"github.com/uniassist/supportcore/routercore/specialist"
	"github.com/uniassist/supportcore/routercore/workflow"
	"github.com/uniassist/supportcore/tools/faqstore"
	"github.com/uniassist/supportcore/tools/llm"
	"github.com/uniassist/supportcore/tools/mailer"
	"github.com/uniassist/supportcore/tools/readers"
	"github.com/uniassist/supportcore/tools/websearch"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting routerd",
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("model", cfg.LLM.Model))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing is optional; metrics are always registered.
	if cfg.Observability.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(cfg.Observability.ServiceName, cfg.Observability.OTLPEndpoint)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracer(shutdownCtx); err != nil {
					logger.Warn("tracer shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	store := newSessionStore(ctx, cfg, logger)

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	classifier := classify.New(llmClient, logger)

	registry := specialist.NewRegistry(specialist.NewGeneral(llmClient, logger), logger)

	faqSearcher, faqAvailable := newFAQSearcher(ctx, cfg, logger)
	registry.Register(
		chat.CategoryQNA,
		specialist.NewQnA(faqSearcher, llmClient, logger),
		faqAvailable,
	)

	webSearcher, webAvailable := newWebSearcher(cfg, logger)
	registry.Register(
		chat.CategorySearch,
		specialist.NewSearch(webSearcher, llmClient, logger),
		webAvailable,
	)

	registry.Register(
		chat.CategoryTicket,
		specialist.NewTicket(departmentsFromConfig(cfg.Email.Departments), logger),
		true,
	)

	registry.Register(
		chat.CategoryCalendar,
		specialist.NewCalendar(specialist.ScheduleTemplate{
			PeriodsPerDay: cfg.Calendar.PeriodsPerDay,
			PeriodMinutes: cfg.Calendar.PeriodMinutes,
			BreakMinutes:  cfg.Calendar.BreakMinutes,
			StartTime:     cfg.Calendar.StartTime,
			WorkDays:      cfg.Calendar.WorkDays,
		}, logger),
		true,
	)

	var mail workflow.Mailer
	if cfg.Email.Enabled {
		m, err := mailer.New(mailer.Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Sender:   cfg.Email.Sender,
			Password: cfg.Email.Password,
		}, logger)
		if err != nil {
			logger.Warn("mail delivery disabled", zap.Error(err))
		} else {
			mail = m
		}
	} else {
		logger.Info("mail delivery disabled by configuration")
	}

	manager := workflow.NewManager(store, classifier, registry, mail, readers.New(logger), logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(httpapi.Metrics)
	httpapi.NewHandler(manager, logger).RegisterRoutes(r)

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

// newSessionStore prefers Redis when configured and falls back to the
// in-process store when the connection cannot be established.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) session.Store {
	if cfg.Session.RedisAddr == "" {
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(cfg.Session.MaxHistory)
	}

	store, err := session.NewRedisStore(ctx, &redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	}, cfg.Session.MaxHistory, logger)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory session store", zap.Error(err))
		return session.NewMemoryStore(cfg.Session.MaxHistory)
	}
	logger.Info("using redis session store", zap.String("addr", cfg.Session.RedisAddr))
	return store
}

// newFAQSearcher builds the vector-backed FAQ lookup. Any setup failure
// marks the QnA specialist unavailable instead of aborting startup.
func newFAQSearcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (specialist.FAQSearcher, bool) {
	if !cfg.FAQ.Enabled {
		logger.Info("FAQ lookup disabled by configuration")
		return nil, false
	}

	embed, err := llm.NewGeminiEmbeddingFunc(cfg.LLM.APIKey, cfg.LLM.EmbedModel)
	if err != nil {
		logger.Warn("FAQ lookup disabled", zap.Error(err))
		return nil, false
	}

	store, err := faqstore.New(cfg.FAQ.PersistPath, cfg.FAQ.Collection, faqstore.EmbeddingFunc(embed), logger)
	if err != nil {
		logger.Warn("FAQ lookup disabled", zap.Error(err))
		return nil, false
	}

	if cfg.FAQ.SeedPath != "" && store.Count() == 0 {
		entries, err := faqstore.LoadSeedFile(cfg.FAQ.SeedPath)
		if err != nil {
			logger.Warn("FAQ seed file unreadable", zap.String("path", cfg.FAQ.SeedPath), zap.Error(err))
		} else if err := store.Seed(ctx, entries); err != nil {
			logger.Warn("FAQ seeding failed", zap.Error(err))
		} else {
			logger.Info("FAQ store seeded", zap.Int("entries", len(entries)))
		}
	}

	return &faqAdapter{store: store}, true
}

func newWebSearcher(cfg *config.Config, logger *zap.Logger) (specialist.WebSearcher, bool) {
	if !cfg.Search.Enabled {
		logger.Info("web search disabled by configuration")
		return nil, false
	}
	client := websearch.NewClient(websearch.Config{
		Timeout:    time.Duration(cfg.Search.TimeoutSeconds) * time.Second,
		MaxResults: cfg.Search.MaxResults,
	}, logger)
	return &webAdapter{client: client}, true
}

func departmentsFromConfig(depts []config.DepartmentConfig) []specialist.Department {
	out := make([]specialist.Department, 0, len(depts))
	for _, d := range depts {
		out = append(out, specialist.Department{
			Key:          d.Key,
			Name:         d.Name,
			Email:        d.Email,
			ResponseTime: d.ResponseTime,
		})
	}
	return out
}

// ===== Tool adapters =====

type faqAdapter struct {
	store *faqstore.Store
}

func (a *faqAdapter) Search(ctx context.Context, query string, k int) ([]specialist.FAQResult, error) {
	hits, err := a.store.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]specialist.FAQResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, specialist.FAQResult{
			Question:  h.Question,
			Answer:    h.Answer,
			Relevance: h.Relevance,
		})
	}
	return out, nil
}

type webAdapter struct {
	client *websearch.Client
}

func (a *webAdapter) Search(ctx context.Context, query string, max int) ([]specialist.WebResult, error) {
	hits, err := a.client.Search(ctx, query, max)
	if err != nil {
		return nil, err
	}
	out := make([]specialist.WebResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, specialist.WebResult{
			Title:   h.Title,
			URL:     h.URL,
			Snippet: h.Snippet,
		})
	}
	return out, nil
}
