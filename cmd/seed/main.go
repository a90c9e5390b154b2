package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"uniportal/internal/auth"
	"uniportal/internal/authflow"
	"uniportal/internal/cache"
	"uniportal/internal/config"
	"uniportal/internal/db"
	"uniportal/internal/model"
	"uniportal/internal/repository"
	"uniportal/internal/service"
)

// SeedAccount is one entry of the seed file.
type SeedAccount struct {
	Role string `json:"role"`
	model.SignupFields
}

type seedStats struct {
	created int
	resumed int
	skipped int
	failed  int
}

func main() {
	source := flag.String("file", "accounts.json", "path or http(s) URL of a JSON array of accounts")
	device := flag.String("device", "seed", "device key the seeded roles are cached under")
	flag.Parse()

	log.Println("Starting seed script...")
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	log.Printf("Reading accounts from: %s", *source)
	accounts, err := loadAccounts(*source)
	if err != nil {
		log.Fatalf("Failed to load accounts: %v", err)
	}
	log.Printf("Loaded %d accounts", len(accounts))

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)
	gateway := service.NewIdentityGateway(repository.NewIdentityRepository(gormDB), jwtService, auth.NewTokenStore(cacheClient))
	profiles := service.NewProfileStore(repository.NewProfileRepository(gormDB), cacheClient)
	flow := authflow.New(authflow.NewValidator(cfg.InstitutionDomain), gateway, profiles, service.NewRoleCache(cacheClient))

	ctx := context.Background()
	stats := seedAccounts(ctx, flow, accounts, *device)

	log.Printf("Seed completed!")
	log.Printf("  - New accounts created: %d", stats.created)
	log.Printf("  - Half-created accounts finished: %d", stats.resumed)
	log.Printf("  - Existing accounts skipped: %d", stats.skipped)
	log.Printf("  - Failed: %d", stats.failed)

	for _, role := range []model.Role{model.RoleStudent, model.RoleStaff} {
		list, err := profiles.ListByRole(ctx, role)
		if err != nil {
			log.Printf("count %s profiles: %v", role, err)
			continue
		}
		log.Printf("  - Active %s profiles: %d", role, len(list))
	}

	if stats.failed > 0 {
		os.Exit(1)
	}
}

// loadAccounts reads the seed list from a local file or an http(s) URL.
func loadAccounts(source string) ([]SeedAccount, error) {
	var body []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch accounts: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("source returned status code: %d", resp.StatusCode)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
	} else {
		var err error
		if body, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	var accounts []SeedAccount
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return accounts, nil
}

// seedAccounts runs every entry through the sign-up flow. Accounts that
// already exist are skipped; other failures are logged and counted.
func seedAccounts(ctx context.Context, flow *authflow.Flow, accounts []SeedAccount, device string) seedStats {
	var stats seedStats
	for i, account := range accounts {
		role, ok := model.ParseRole(account.Role)
		if !ok {
			log.Printf("Skipping entry %d with unknown role %q", i, account.Role)
			stats.failed++
			continue
		}

		out, err := flow.SignUp(ctx, role, account.SignupFields, device)
		switch {
		case err == nil && out.Resumed:
			stats.resumed++
		case err == nil:
			stats.created++
		case errors.Is(err, authflow.ErrIdentityExists):
			stats.skipped++
		default:
			log.Printf("Entry %d (%s): %v", i, account.Email, err)
			stats.failed++
		}
	}
	return stats
}
