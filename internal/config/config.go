// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WebConfig struct {
	Port         int           `yaml:"port"`
	JWTSecret    string        `yaml:"jwt_secret"`
	OperatorPass string        `yaml:"operator_password"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	RateLimit    int           `yaml:"rate_limit"` // requests per window per client, 0 disables
	RateWindow   time.Duration `yaml:"rate_window"`
}

type OpsConfig struct {
	Port int `yaml:"port"` // health and metrics listener
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey       string  `yaml:"gemini_key"`
	GeminiURL       string  `yaml:"gemini_url"`
	OpenAIKey       string  `yaml:"openai_key"`
	OpenAIBaseURL   string  `yaml:"openai_base_url"`
	Model           string  `yaml:"model"`
	Country         string  `yaml:"country"` // biases extraction toward local job formats
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	ConcurrentLimit int     `yaml:"concurrent_limit"` // max concurrent extractor calls
	RequestsPerSec  float64 `yaml:"requests_per_sec"`
}

// CandidateConfig identifies the person the outreach speaks for. The
// extractor prompt and the mail templates both interpolate these fields.
type CandidateConfig struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Email string `yaml:"email"`
	Pitch string `yaml:"pitch"`
}

type MailConfig struct {
	CredentialsFile string `yaml:"credentials_file"` // Google OAuth client secret JSON
	TokenFile       string `yaml:"token_file"`
	ResumePath      string `yaml:"resume_path"`
}

type LedgerConfig struct {
	Backend       string `yaml:"backend"` // excel|sheets|postgres
	SpreadsheetID string `yaml:"spreadsheet_id"`
	SheetName     string `yaml:"sheet_name"`
	WorkbookPath  string `yaml:"workbook_path"`
}

type IMAPConfig struct {
	Addr         string   `yaml:"addr"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"` // falls back to keyring, then IMAP_PASSWORD
	Mailbox      string   `yaml:"mailbox"`
	SubjectAny   []string `yaml:"subject_any"` // keep only digests matching one of these
	MaxPerPoll   int      `yaml:"max_per_poll"`
	LookbackDays int      `yaml:"lookback_days"`
}

type IngestConfig struct {
	IMAP         IMAPConfig    `yaml:"imap"`
	DropDir      string        `yaml:"drop_dir"`
	SpoolDir     string        `yaml:"spool_dir"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type NotifyConfig struct {
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Ops       OpsConfig       `yaml:"ops"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Candidate CandidateConfig `yaml:"candidate"`
	Mail      MailConfig      `yaml:"mail"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Security  SecurityConfig  `yaml:"security"`
	Notify    NotifyConfig    `yaml:"notify"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Web.Port <= 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Web.SessionTTL <= 0 {
		cfg.Web.SessionTTL = 30 * time.Minute
	}
	if cfg.Web.RateWindow <= 0 {
		cfg.Web.RateWindow = time.Minute
	}
	if cfg.Ops.Port <= 0 {
		cfg.Ops.Port = 9090
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 8192
	}
	if cfg.Mail.TokenFile == "" {
		cfg.Mail.TokenFile = "token.json"
	}
	if cfg.Ledger.Backend == "" {
		cfg.Ledger.Backend = "excel"
	}
	if cfg.Ledger.SheetName == "" {
		cfg.Ledger.SheetName = "Job Tracker"
	}
	if cfg.Ledger.WorkbookPath == "" {
		cfg.Ledger.WorkbookPath = "outreach_ledger.xlsx"
	}
	if cfg.Ingest.IMAP.Mailbox == "" {
		cfg.Ingest.IMAP.Mailbox = "INBOX"
	}
	if cfg.Ingest.IMAP.MaxPerPoll <= 0 {
		cfg.Ingest.IMAP.MaxPerPoll = 20
	}
	if cfg.Ingest.IMAP.LookbackDays <= 0 {
		cfg.Ingest.IMAP.LookbackDays = 7
	}
	if cfg.Ingest.SpoolDir == "" {
		cfg.Ingest.SpoolDir = "spool"
	}
	if cfg.Ingest.PollInterval <= 0 {
		cfg.Ingest.PollInterval = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Candidate.Name == "" {
		return nil, errors.New("candidate.name is required")
	}
	if cfg.Candidate.Email == "" {
		return nil, errors.New("candidate.email is required")
	}
	switch cfg.Ledger.Backend {
	case "excel":
		// workbook_path already defaulted
	case "sheets":
		if cfg.Ledger.SpreadsheetID == "" {
			return nil, errors.New("ledger.spreadsheet_id is required for the sheets backend")
		}
		if cfg.Mail.CredentialsFile == "" {
			return nil, errors.New("mail.credentials_file is required for the sheets backend")
		}
	case "postgres":
		if cfg.Database.URL == "" {
			return nil, errors.New("database.url is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown ledger.backend %q (want excel, sheets or postgres)", cfg.Ledger.Backend)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
