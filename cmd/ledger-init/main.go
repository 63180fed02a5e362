// File: cmd/ledger-init/main.go
//
// One-time setup for a new deployment: mints the Google OAuth token
// (interactive) and provisions the configured ledger backend so the
// first real send never has to create its own backing store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	gmailapi "google.golang.org/api/gmail/v1"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/VvkAlgo/RoleMatchAI/internal/config"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
	pg "github.com/VvkAlgo/RoleMatchAI/internal/infra/db/postgres"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/googleauth"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/ledger"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/logging"
	"github.com/VvkAlgo/RoleMatchAI/internal/infra/secrets"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	authorize := flag.Bool("authorize", false, "run the interactive Google OAuth flow and cache the token")
	storeSecret := flag.String("store-secret", "", "store a secret in the OS keyring under this account name (value read from stdin) and exit")
	deleteSecret := flag.String("delete-secret", "", "remove a secret from the OS keyring and exit")
	flag.Parse()

	_ = godotenv.Load()

	// Keyring maintenance runs before config loading so secrets can be
	// stored on a machine whose config file is not finished yet.
	if *storeSecret != "" {
		fmt.Printf("value for %s: ", *storeSecret)
		var value string
		if _, err := fmt.Scan(&value); err != nil {
			log.Fatalf("read secret value: %v", err)
		}
		if err := secrets.Set(*storeSecret, value); err != nil {
			log.Fatalf("store secret: %v", err)
		}
		fmt.Printf("secret %s stored.\n", *storeSecret)
		return
	}
	if *deleteSecret != "" {
		if err := secrets.Delete(*deleteSecret); err != nil {
			log.Fatalf("delete secret: %v", err)
		}
		fmt.Printf("secret %s removed.\n", *deleteSecret)
		return
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, false)

	// ---- Google OAuth (interactive, no timeout) ----
	if *authorize {
		if cfg.Mail.CredentialsFile == "" {
			log.Fatalf("mail.credentials_file is required for -authorize")
		}
		oauthCfg, err := googleauth.ConfigFromFile(cfg.Mail.CredentialsFile, gmailapi.GmailSendScope, sheetsapi.SpreadsheetsScope)
		if err != nil {
			log.Fatalf("google oauth: %v", err)
		}
		if err := googleauth.AuthorizeInteractive(context.Background(), oauthCfg, cfg.Mail.TokenFile); err != nil {
			log.Fatalf("authorize: %v", err)
		}
		fmt.Printf("token cached at %s\n", cfg.Mail.TokenFile)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// ---- Ledger backend ----
	var ledgerRepo repository.Ledger
	switch cfg.Ledger.Backend {
	case "excel":
		ledgerRepo, err = ledger.NewExcelLedger(cfg.Ledger.WorkbookPath, cfg.Ledger.SheetName, *logger)
		if err != nil {
			log.Fatalf("excel ledger: %v", err)
		}
		fmt.Printf("backend: excel workbook=%s sheet=%s\n", cfg.Ledger.WorkbookPath, cfg.Ledger.SheetName)
	case "sheets":
		oauthCfg, err := googleauth.ConfigFromFile(cfg.Mail.CredentialsFile, gmailapi.GmailSendScope, sheetsapi.SpreadsheetsScope)
		if err != nil {
			log.Fatalf("google oauth: %v", err)
		}
		client, err := googleauth.HTTPClient(ctx, oauthCfg, cfg.Mail.TokenFile)
		if err != nil {
			log.Fatalf("google oauth (try -authorize first): %v", err)
		}
		ledgerRepo, err = ledger.NewSheetsLedger(ctx, client, cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName, *logger)
		if err != nil {
			log.Fatalf("sheets ledger: %v", err)
		}
		fmt.Printf("backend: sheets spreadsheet=%s sheet=%s\n", cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName)
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		ledgerRepo = pg.NewLedgerRepo(pool, *logger)
		fmt.Println("backend: postgres")
	}

	prov, ok := ledgerRepo.(repository.LedgerProvisioner)
	if !ok {
		log.Fatalf("backend %s cannot be provisioned", cfg.Ledger.Backend)
	}
	if err := prov.Provision(ctx); err != nil {
		log.Fatalf("provision: %v", err)
	}

	entries, err := ledgerRepo.Entries(ctx)
	if err != nil {
		log.Fatalf("read ledger: %v", err)
	}
	fmt.Printf("ledger ready, %d rows present.\n", len(entries))
	fmt.Println("✅ Ledger initialized.")
}
