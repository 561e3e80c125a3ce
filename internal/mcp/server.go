package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/repforge/internal/models"
)

type contextKey int

const principalKey contextKey = iota

// PrincipalFromContext extracts the caller identity injected by the
// transport layer, defaulting to the local user.
func PrincipalFromContext(ctx context.Context) models.Principal {
	if p, ok := ctx.Value(principalKey).(models.Principal); ok {
		return p
	}
	return models.Principal{UserID: 1, Login: "local", DisplayName: "Local Dev User"}
}

// WithPrincipal returns a context carrying the given caller identity.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, gen Generator, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepForge", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepForge workout generation server. Generate personalized workouts, browse the exercise catalog, and review workout history. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, gen: gen, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGenerateWorkout, Handler: h.generateWorkout},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolUpdateWorkout, Handler: h.updateWorkout},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetWorkoutStats, Handler: h.getWorkoutStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	gen Generator
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"repforge://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The caller's most recently generated workouts with status and summary fields"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"repforge://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All known exercises with muscle groups and equipment"),
	mcp.WithMIMEType("application/json"),
)
