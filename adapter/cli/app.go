package cli

import (
	"errors"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

// ErrNotInitialized is returned when a command runs before SetApp.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	Users  *userApp.Service
	Orders *orderApp.Service
	Health *observability.HealthRegistry
}

// NewApp creates a new CLI application over the given services.
func NewApp(users *userApp.Service, orders *orderApp.Service, health *observability.HealthRegistry) *App {
	return &App{
		Users:  users,
		Orders: orders,
		Health: health,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the application or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil || app.Users == nil || app.Orders == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
