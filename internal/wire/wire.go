// Package wire provides dependency injection for the haggle application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"

	"github.com/example/haggle/internal/adapters/chat"
	"github.com/example/haggle/internal/adapters/notify"
	"github.com/example/haggle/internal/adapters/sqlite"
	"github.com/example/haggle/internal/app"
	"github.com/example/haggle/internal/config"
	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/db"
	"github.com/example/haggle/internal/ports/primary"
)

var (
	negotiationService primary.NegotiationService
	sweeperService     primary.SweeperService
	catalogService     primary.CatalogService
	once               sync.Once
)

// NegotiationService returns the singleton NegotiationService instance.
func NegotiationService() primary.NegotiationService {
	once.Do(initServices)
	return negotiationService
}

// SweeperService returns the singleton SweeperService instance.
func SweeperService() primary.SweeperService {
	once.Do(initServices)
	return sweeperService
}

// CatalogService returns the singleton CatalogService instance.
func CatalogService() primary.CatalogService {
	once.Do(initServices)
	return catalogService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	// Get database connection
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	negotiationRepo := sqlite.NewNegotiationRepository(database)
	catalogRepo := sqlite.NewCatalogRepository(database)
	quotaRepo := sqlite.NewQuotaRepository(database)
	notifier := notify.NewGateway(database)
	chatBridge := chat.NewBridge(database)

	// Per-kind reference policies: the only point of kind variation
	// outside the core transition rules.
	policies := map[corenegotiation.Kind]app.ReferencePolicy{
		corenegotiation.KindPrice:       app.NewPriceReferencePolicy(catalogRepo),
		corenegotiation.KindCustomOrder: app.NewCustomOrderReferencePolicy(),
	}

	dailyLimit := app.DefaultDailyProposalLimit
	if cfg, err := config.LoadConfig("."); err == nil && cfg.DailyProposalLimit > 0 {
		dailyLimit = cfg.DailyProposalLimit
	}

	// Create services (primary ports implementation)
	negotiationService = app.NewNegotiationService(negotiationRepo, quotaRepo, policies, notifier, chatBridge, dailyLimit)
	sweeperService = app.NewSweeperService(negotiationRepo)
	catalogService = app.NewCatalogService(catalogRepo)
}
