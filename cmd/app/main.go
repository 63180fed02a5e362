// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/VvkAlgo/RoleMatchAI/internal/config"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	aiAdapters "github.com/VvkAlgo/RoleMatchAI/internal/infra/adapters/ai"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/adapters/mail"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/adapters/notify"
	pg "github.com/VvkAlgo/RoleMatchAI/internal/infra/db/postgres"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/googleauth"
	opshttp "github.com/VvkAlgo/RoleMatchAI/internal/infra/http"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/ingest"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/ledger"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/mailtmpl"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/memstore"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/metrics"
	red "github.com/VvkAlgo/RoleMatchAI/internal/infra/redis"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/sched"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/secrets"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/security"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/web"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/worker"
	"github.com/VvkAlgo/RoleMatchAI/internal/usecase"
)

// Overridden at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed settings)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	// ---- Logging ----
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.SetBuildInfo(version, commit)

	// ---- Secrets (yaml -> keyring -> env) ----
	if cfg.AI.GeminiKey == "" {
		cfg.AI.GeminiKey = secrets.LookupOptional(secrets.AccountGeminiAPIKey, "GEMINI_API_KEY")
	}
	if cfg.AI.OpenAIKey == "" {
		cfg.AI.OpenAIKey = secrets.LookupOptional(secrets.AccountOpenAIAPIKey, "OPENAI_API_KEY")
	}
	if cfg.Ingest.IMAP.Password == "" {
		cfg.Ingest.IMAP.Password = secrets.LookupOptional(secrets.AccountIMAPPassword, "IMAP_PASSWORD")
	}
	if cfg.Security.EncryptionKey == "" {
		cfg.Security.EncryptionKey = secrets.LookupOptional(secrets.AccountEncryptionKey, "SESSION_ENCRYPTION_KEY")
	}
	if cfg.Notify.TelegramToken == "" {
		cfg.Notify.TelegramToken = secrets.LookupOptional(secrets.AccountTelegramToken, "TELEGRAM_BOT_TOKEN")
	}

	// ---- Session store (redis or in-memory) ----
	var sessions repository.SessionStore
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		var enc *security.EncryptionService
		if cfg.Security.EncryptionKey != "" {
			enc, err = security.NewEncryptionService(cfg.Security.EncryptionKey)
			if err != nil {
				log.Fatalf("encryption: %v", err)
			}
		} else {
			log.Printf("security.encryption_key not set; session snapshots stored unencrypted")
		}
		sessions = red.NewSessionStore(redisClient, enc, cfg.Redis.TTL)
		rateLimiter = red.NewRateLimiter(redisClient)
		log.Printf("session store: redis db=%d ttl=%s", cfg.Redis.DB, cfg.Redis.TTL)
	} else {
		sessions = memstore.NewSessionStore(cfg.Redis.TTL)
		log.Printf("redis.url not set; sessions kept in memory and lost on restart")
	}

	// ---- Google OAuth client (shared by gmail and sheets) ----
	var googleClient *http.Client
	if cfg.Mail.CredentialsFile != "" {
		oauthCfg, err := googleauth.ConfigFromFile(cfg.Mail.CredentialsFile, gmailapi.GmailSendScope, sheetsapi.SpreadsheetsScope)
		if err != nil {
			log.Fatalf("google oauth: %v", err)
		}
		googleClient, err = googleauth.HTTPClient(ctx, oauthCfg, cfg.Mail.TokenFile)
		if err != nil {
			log.Fatalf("google oauth: %v", err)
		}
	}

	// ---- Ledger (excel | sheets | postgres) ----
	var ledgerRepo repository.Ledger
	switch cfg.Ledger.Backend {
	case "excel":
		ledgerRepo, err = ledger.NewExcelLedger(cfg.Ledger.WorkbookPath, cfg.Ledger.SheetName, *logger)
		if err != nil {
			log.Fatalf("excel ledger: %v", err)
		}
		log.Printf("ledger: excel workbook=%s sheet=%s", cfg.Ledger.WorkbookPath, cfg.Ledger.SheetName)
	case "sheets":
		ledgerRepo, err = ledger.NewSheetsLedger(ctx, googleClient, cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName, *logger)
		if err != nil {
			log.Fatalf("sheets ledger: %v", err)
		}
		log.Printf("ledger: google sheets spreadsheet=%s sheet=%s", cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName)
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		go pg.SamplePoolStats(ctx, pool)
		ledgerRepo = pg.NewLedgerRepo(pool, *logger)
		log.Printf("ledger: postgres")
	}
	if prov, ok := ledgerRepo.(repository.LedgerProvisioner); ok {
		if err := prov.Provision(ctx); err != nil {
			log.Fatalf("provision ledger: %v", err)
		}
	}

	// ---- Extractor (Gemini -> OpenAI) ----
	prompt := aiAdapters.BuildExtractionPrompt(aiAdapters.Profile{
		Name:  cfg.Candidate.Name,
		Title: cfg.Candidate.Title,
		Email: cfg.Candidate.Email,
		Pitch: cfg.Candidate.Pitch,
	}, cfg.AI.Country)

	var extractor adapter.Extractor
	if cfg.AI.GeminiKey != "" {
		extractor, err = aiAdapters.NewGeminiExtractor(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model, prompt, int32(cfg.AI.MaxOutputTokens))
		if err != nil {
			log.Fatalf("gemini extractor: %v", err)
		}
		log.Printf("extractor: Gemini model=%s", cfg.AI.Model)
	} else if cfg.AI.OpenAIKey != "" {
		extractor, err = aiAdapters.NewOpenAIExtractor(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.Model, prompt)
		if err != nil {
			log.Fatalf("openai extractor: %v", err)
		}
		log.Printf("extractor: OpenAI model=%s", cfg.AI.Model)
	} else {
		extractor = aiAdapters.NewNoopExtractor()
		log.Printf("no AI provider configured; extraction runs in noop mode (set ai.gemini_key or ai.openai_key)")
	}
	extractor = aiAdapters.NewLimitedExtractor(extractor, cfg.AI.ConcurrentLimit, cfg.AI.RequestsPerSec)

	// ---- Mailer + resume ----
	var mailer adapter.Mailer
	realMailer := googleClient != nil
	if realMailer {
		mailer, err = mail.NewGmailMailer(ctx, googleClient, *logger)
		if err != nil {
			log.Fatalf("gmail mailer: %v", err)
		}
		log.Printf("mailer: gmail")
	} else {
		mailer = mail.NewNoopMailer()
		log.Printf("mail.credentials_file not set; mailer runs in noop mode")
	}

	var resumeProv adapter.ResumeProvider
	if cfg.Mail.ResumePath != "" {
		resumeProv, err = mail.NewFileResumeProvider(cfg.Mail.ResumePath)
		if err != nil {
			log.Fatalf("resume: %v", err)
		}
	} else if realMailer {
		log.Fatalf("mail.resume_path is required when gmail sending is configured")
	} else {
		resumeProv = mail.NewNoopResumeProvider()
		log.Printf("mail.resume_path not set; using placeholder resume")
	}

	// ---- Operator alerts ----
	var notifier adapter.Notifier
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != 0 {
		notifier, err = notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID, *logger)
		if err != nil {
			log.Fatalf("telegram notifier: %v", err)
		}
		log.Printf("alerts: telegram chat_id=%d", cfg.Notify.TelegramChatID)
	} else {
		notifier = notify.NewNoopNotifier()
	}
	pool := worker.NewPool(2, *logger)
	pool.Start(ctx)
	defer pool.Stop()
	alerts := notify.NewDispatcher(pool, notifier, *logger)

	// ---- Draft templates ----
	renderer, err := mailtmpl.NewRenderer(mailtmpl.TemplatesFS, "en")
	if err != nil {
		log.Fatalf("mail templates: %v", err)
	}
	drafter := mailtmpl.NewDrafter(renderer, cfg.Candidate.Name, cfg.Candidate.Title, cfg.Candidate.Email, cfg.Candidate.Pitch)

	// ---- Ingest: inbox source + spool ----
	spool, err := ingest.NewDirSpool(cfg.Ingest.SpoolDir)
	if err != nil {
		log.Fatalf("spool: %v", err)
	}
	var inboxSource adapter.InboxSource
	if cfg.Ingest.IMAP.Addr != "" && cfg.Ingest.IMAP.Username != "" {
		src, err := ingest.NewIMAPSource(ingest.IMAPOptions{
			Addr:       cfg.Ingest.IMAP.Addr,
			Username:   cfg.Ingest.IMAP.Username,
			Password:   cfg.Ingest.IMAP.Password,
			Mailbox:    cfg.Ingest.IMAP.Mailbox,
			SubjectAny: cfg.Ingest.IMAP.SubjectAny,
			MaxPerPoll: cfg.Ingest.IMAP.MaxPerPoll,
			Lookback:   time.Duration(cfg.Ingest.IMAP.LookbackDays) * 24 * time.Hour,
		}, *logger)
		if err != nil {
			log.Fatalf("imap source: %v", err)
		}
		inboxSource = src
		log.Printf("inbox: imap %s mailbox=%s", cfg.Ingest.IMAP.Addr, cfg.Ingest.IMAP.Mailbox)
	} else if cfg.Ingest.DropDir != "" {
		src, err := ingest.NewFileSource(cfg.Ingest.DropDir, *logger)
		if err != nil {
			log.Fatalf("file source: %v", err)
		}
		inboxSource = src
		log.Printf("inbox: drop dir %s", cfg.Ingest.DropDir)
	} else {
		log.Printf("no inbox source configured; batches arrive via the API only")
	}

	// ---- Use cases ----
	analysisUC := usecase.NewAnalysisUseCase(extractor, sessions, logger)
	reconcileUC := usecase.NewReconcileUseCase(ledgerRepo, logger)
	outreachUC := usecase.NewOutreachUseCase(ledgerRepo, sessions, mailer, resumeProv, drafter, alerts, logger)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, logger)
	ingestUC := usecase.NewIngestUseCase(inboxSource, spool, logger)

	// ---- HTTP API ----
	var auth *web.AuthManager
	if cfg.Web.JWTSecret != "" {
		auth = web.NewAuthManager(cfg.Web.JWTSecret, cfg.Web.SecureCookie, cfg.Web.CookieDomain, cfg.Web.SessionTTL)
	} else {
		log.Printf("web.jwt_secret not set; operator auth unconfigured, protected routes refuse access")
	}
	apiSrv := web.NewServer(analysisUC, reconcileUC, outreachUC, ledgerUC, ingestUC, auth, cfg.Web.OperatorPass, logger)
	if rateLimiter != nil && cfg.Web.RateLimit > 0 {
		apiSrv.WithRateLimiter(rateLimiter, cfg.Web.RateLimit, cfg.Web.RateWindow)
	}
	apiAddr := fmt.Sprintf(":%d", cfg.Web.Port)

	// ---- Ops server (health + metrics) ----
	opsSrv := opshttp.NewServer(fmt.Sprintf(":%d", cfg.Ops.Port), logger)

	// ---- Run ----
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("api listening on %s", apiAddr)
		if err := apiSrv.Start(apiAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})
	if inboxSource != nil {
		inboxWorker := sched.NewInboxWorker(cfg.Ingest.PollInterval, ingestUC, alerts, logger)
		g.Go(func() error { return inboxWorker.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancelSh := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelSh()
		_ = apiSrv.Shutdown(shCtx)
		_ = opsSrv.Shutdown(shCtx)
		return nil
	})

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Println("shutdown requested")
		cancel()
	}()

	if err := g.Wait(); err != nil {
		log.Fatalf("exit: %v", err)
	}
}
