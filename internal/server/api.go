package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/audiobox/internal/shared"
	"github.com/desertthunder/audiobox/internal/tasks"
)

// Dependencies are the services behind the HTTP API.
type Dependencies struct {
	Workflows   tasks.Workflows
	Accounts    Accounts
	Verifier    TokenVerifier
	Preferences Preferences
	// Probe checks catalog reachability for /health. Optional.
	Probe   func(ctx context.Context) error
	Origins []string
	Logger  *log.Logger
}

// NewAPI builds the full route table.
//
// CORS wraps the router itself so preflight requests are answered before method matching.
func NewAPI(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))

	auth := RequireAuth(deps.Verifier)

	router.Handler(NewHealthHandler(deps.Probe))
	router.Handler(NewAuthHandler(deps.Accounts, logger))
	router.Handler(NewProtectedHandler(deps.Accounts, logger), auth)
	router.Handler(NewMusicHandler(deps.Workflows, logger), auth)
	router.Handler(NewUserHandler(deps.Preferences, deps.Workflows, logger), auth)

	return CORS(deps.Origins...)(router)
}
