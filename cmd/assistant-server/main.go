// cmd/assistant-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scheme-assistant/internal/catalog"
	"scheme-assistant/internal/common/aws"
	"scheme-assistant/internal/common/camunda"
	"scheme-assistant/internal/common/config"
	"scheme-assistant/internal/common/database"
	commonhttp "scheme-assistant/internal/common/http"
	"scheme-assistant/internal/common/logger"
	"scheme-assistant/internal/common/observability"
	"scheme-assistant/internal/dialogue"
	"scheme-assistant/internal/models"
	"scheme-assistant/internal/render"
	"scheme-assistant/internal/session"
	"scheme-assistant/internal/speech"
	httptransport "scheme-assistant/internal/transport/http"

	mcs "scheme-assistant/internal/workers/conversation/manage-conversation-session"
	pct "scheme-assistant/internal/workers/conversation/process-conversation-turn"
	sag "scheme-assistant/internal/workers/notification/send-application-guide"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting scheme assistant...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, zapLog); err != nil {
		zapLog.Fatal("scheme assistant stopped with error", zap.Error(err))
	}
	zapLog.Info("Scheme assistant shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) error {
	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown(context.Background())

	conns, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer conns.Close()

	// The catalog must load before anything accepts traffic.
	cat, err := catalog.Load(ctx, catalogSource(cfg, conns), log)
	if err != nil {
		return err
	}
	zapLog.Info("Catalog loaded", zap.Int("schemes", cat.Len()), zap.String("source", cfg.Catalog.Source))

	var matcher catalog.Matcher = cat
	if cfg.Cache.Enabled && conns.Redis != nil {
		matcher = catalog.NewCachedMatcher(cat, conns.Redis.Client,
			config.GetSeconds(cfg.Cache.TTL), cfg.Cache.Prefix, log)
	}

	gen, err := render.NewGenerator(ctx, cfg.Renderer, commonhttp.NewClient("renderer", 0))
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	lang := render.ParseLanguage(cfg.Dialogue.Language)
	renderer := render.NewService(gen, lang, config.GetDuration(cfg.Dialogue.RenderTimeout), log)

	engine := dialogue.NewEngine(matcher, renderer, dialogue.Options{
		Language:            lang,
		NoRecordOccupations: occupations(cfg.Dialogue.NoRecordOccupations),
		MaxUtteranceLength:  cfg.Dialogue.MaxUtteranceLength,
	}, log, obs)

	sessions := session.NewManager(engine, session.Config{
		IdleTimeout:   config.GetSeconds(cfg.Session.IdleTimeout),
		SweepInterval: config.GetSeconds(cfg.Session.SweepInterval),
		MaxSessions:   cfg.Session.MaxSessions,
	}, log)

	if cfg.Camunda.Enabled {
		workers, closeWorkers, err := startWorkers(ctx, cfg, cat, sessions, dialogue.MessagesFor(lang), log)
		if err != nil {
			return err
		}
		defer closeWorkers()
		zapLog.Info("Workers registered", zap.Int("count", workers))
	}

	var gateway *speech.HTTPGateway
	if cfg.HTTP.Enabled && cfg.Speech.Enabled {
		gateway, err = speech.NewHTTPGateway(ctx, speech.GatewayConfig{
			BaseURL:      cfg.Speech.BaseURL,
			APIKey:       cfg.Speech.APIKey,
			LanguageCode: cfg.Speech.LanguageCode,
			VoiceName:    cfg.Speech.VoiceName,
			SampleRate:   cfg.Speech.SampleRate,
			Timeout:      config.GetDuration(cfg.Speech.Timeout),
		}, commonhttp.NewClient("speech", config.GetDuration(cfg.Speech.Timeout)))
		if err != nil {
			return fmt.Errorf("speech gateway: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sessions.Run(ctx) })

	if cfg.HTTP.Enabled {

		opts := httptransport.Options{
			MaxAudioSize:       cfg.HTTP.MaxAudioSize,
			RequestTimeout:     config.GetDuration(cfg.HTTP.WriteTimeout),
			DropLatinForSpeech: lang == render.Telugu,
			CatalogSize:        cat.Len(),
		}
		var handler *httptransport.Handler
		if gateway != nil {
			handler = httptransport.NewHandler(sessions, gateway, gateway, opts, log)
		} else {
			handler = httptransport.NewHandler(sessions, nil, nil, opts, log)
		}

		srv := &http.Server{
			Addr:         cfg.HTTP.Address,
			Handler:      handler.Routes(),
			ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
		}
		g.Go(func() error {
			zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	zapLog.Info("Scheme assistant is running. Press Ctrl+C to exit.")
	return g.Wait()
}

func catalogSource(cfg *config.Config, conns *database.Connections) catalog.Source {
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		return catalog.PostgresSource{DB: conns.Postgres.DB, Table: cfg.Catalog.Table}
	case config.CatalogSourceElasticsearch:
		return catalog.ElasticsearchSource{Client: conns.Elasticsearch.Client, Index: cfg.Catalog.Index}
	default:
		return catalog.FileSource{Path: cfg.Catalog.Path}
	}
}

func occupations(names []string) []models.Occupation {
	if names == nil {
		return nil
	}
	out := make([]models.Occupation, 0, len(names))
	for _, n := range names {
		out = append(out, models.Occupation(n))
	}
	return out
}

// startWorkers connects to Zeebe and opens every enabled job worker.
func startWorkers(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, sessions *session.Manager,
	messages dialogue.Messages, log logger.Logger) (int, func(), error) {
	client, err := camunda.NewClient(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	}, log)
	if err != nil {
		return 0, nil, fmt.Errorf("zeebe client: %w", err)
	}

	var opened []*camunda.Worker
	open := func(taskType string, h camunda.JobHandler) {
		wc := config.GetWorkerConfig(cfg, taskType)
		if !wc.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		opened = append(opened, camunda.Open(client.Zeebe(), taskType, wc.MaxJobsActive,
			config.GetDuration(cfg.Camunda.Timeout), h, log))
	}

	open(pct.TaskType, pct.NewHandler(pct.LoadConfig(config.GetWorkerConfig(cfg, pct.TaskType)), sessions, log))
	open(mcs.TaskType, mcs.NewHandler(mcs.LoadConfig(config.GetWorkerConfig(cfg, mcs.TaskType)), sessions, log))

	var (
		email *aws.EmailSender
		sms   *aws.SMSSender
	)
	n := cfg.Notifications
	if n.Email.Enabled || n.SMS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, n.AWS.Region)
		if err != nil {
			client.Close()
			return 0, nil, err
		}
		if n.Email.Enabled {
			email = aws.NewEmailSender(aws.NewSESClient(awsCfg), n.Email.FromEmail)
		}
		if n.SMS.Enabled {
			sms = aws.NewSMSSender(aws.NewSNSClient(awsCfg), n.SMS.SenderID)
		}
	}
	guide := sag.NewHandler(sag.LoadConfig(cfg), cat, sessions, messages, emailSender(email), smsSender(sms), log)
	open(sag.TaskType, guide)

	return len(opened), func() {
		for _, w := range opened {
			w.Close()
		}
		client.Close()
	}, nil
}

// emailSender and smsSender keep a nil pointer from becoming a non-nil interface.
func emailSender(s *aws.EmailSender) sag.EmailSender {
	if s == nil {
		return nil
	}
	return s
}

func smsSender(s *aws.SMSSender) sag.SMSSender {
	if s == nil {
		return nil
	}
	return s
}
