// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	apierrfeature "github.com/dalemusser/kajishare/internal/app/features/apierr"
	assignmentsfeature "github.com/dalemusser/kajishare/internal/app/features/assignments"
	evaluationsfeature "github.com/dalemusser/kajishare/internal/app/features/evaluations"
	groupsfeature "github.com/dalemusser/kajishare/internal/app/features/groups"
	healthfeature "github.com/dalemusser/kajishare/internal/app/features/health"
	membershipsfeature "github.com/dalemusser/kajishare/internal/app/features/memberships"
	sessionsfeature "github.com/dalemusser/kajishare/internal/app/features/sessions"
	tasksfeature "github.com/dalemusser/kajishare/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/kajishare/internal/app/features/users"
	assignmentstore "github.com/dalemusser/kajishare/internal/app/store/assignments"
	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	groupstore "github.com/dalemusser/kajishare/internal/app/store/groups"
	membershipstore "github.com/dalemusser/kajishare/internal/app/store/memberships"
	taskstore "github.com/dalemusser/kajishare/internal/app/store/tasks"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/grouplock"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. KajiShare builds its stores,
// the per-group lock registry and the bearer-token authenticator here,
// then mounts the JSON API under /api/v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	memberships := membershipstore.New(db)
	tasks := taskstore.New(db)
	assignments := assignmentstore.New(db)
	evaluations := evaluationstore.New(db)

	locks := grouplock.New()
	errLog := apierrfeature.NewErrorLogger(logger)

	verifier, err := auth.NewGoogleVerifier(context.Background(), appCfg.GoogleClientID)
	if err != nil {
		logger.Error("google verifier init failed", zap.Error(err))
		return nil, err
	}
	authenticator := auth.NewAuthenticator(verifier, &userResolver{users: users}, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the caller's Identity into context
	// when a valid bearer token is presented. Handlers decide whether
	// an identity is required.
	r.Use(authenticator.LoadIdentity)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api/v1", func(api chi.Router) {
		exchanger := auth.NewGoogleExchanger(appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.GoogleRedirectURL)
		sessionsHandler := sessionsfeature.NewHandler(users, verifier, exchanger, errLog, logger)
		api.Mount("/auth", sessionsfeature.Routes(sessionsHandler))

		usersHandler := usersfeature.NewHandler(users, errLog, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler))

		tasksHandler := tasksfeature.NewHandler(tasks, memberships, assignments, evaluations, errLog, logger)
		assignmentsHandler := assignmentsfeature.NewHandler(assignments, tasks, memberships, evaluations, errLog, logger)

		groupsHandler := groupsfeature.NewHandler(groups, memberships, tasks, assignments, evaluations, locks, errLog, logger)
		api.Mount("/groups", groupsfeature.Routes(groupsHandler, tasksfeature.GroupRoutes(tasksHandler)))
		api.Mount("/tasks", tasksfeature.Routes(tasksHandler, assignmentsfeature.TaskRoutes(assignmentsHandler)))
		api.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler))

		membershipsHandler := membershipsfeature.NewHandler(memberships, users, locks, errLog, logger)
		api.Mount("/memberships", membershipsfeature.Routes(membershipsHandler))

		evaluationsHandler := evaluationsfeature.NewHandler(evaluations, assignments, tasks, memberships, errLog, logger)
		api.Mount("/evaluations", evaluationsfeature.Routes(evaluationsHandler))
	})

	return r, nil
}
