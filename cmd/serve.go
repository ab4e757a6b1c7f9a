package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/gorilla/mux"
	"github.com/groupmail/groupmail-services/api/handlers"
	"github.com/groupmail/groupmail-services/api/middleware"
	"github.com/groupmail/groupmail-services/api/services"
	docs "github.com/groupmail/groupmail-services/docs"
	"github.com/groupmail/groupmail-services/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Group Mail Services API
// @version v1
// @description Accounts, groups and email claims for the group mail service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer identityDB.Close()

		identitySvc, publisher, err := newIdentityService(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize identity service")
		}
		defer publisher.Close()

		service := &services.Service{
			Config:   appCfg,
			Identity: identitySvc,
		}

		r := newRouter(service)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			r); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}

// newRouter registers the API, docs and metrics routes.
func newRouter(service *services.Service) *mux.Router {
	cfg := service.Config
	r := mux.NewRouter()

	api := r.PathPrefix(cfg.BasePath).Subrouter()
	api.Use(middleware.WithLogger)

	// Routes reachable without a token
	public := api.NewRoute().Subrouter()
	public.HandleFunc("/accounts", handlers.CreateAccount(service)).Methods(http.MethodPost)
	public.HandleFunc("/claims/confirm", handlers.ConfirmClaim(service)).Methods(http.MethodGet)

	optional := api.NewRoute().Subrouter()
	optional.Use(middleware.OptionalJWTMiddleware)
	optional.HandleFunc("/claims", handlers.RequestClaim(service)).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.JWTMiddleware)

	// Account routes
	authed.HandleFunc("/accounts/me", handlers.GetMyAccount(service)).Methods(http.MethodGet)
	authed.HandleFunc("/accounts/me", handlers.UpdateMyAccount(service)).Methods(http.MethodPatch)
	authed.HandleFunc("/accounts/me", handlers.DeactivateAccount(service)).Methods(http.MethodDelete)
	authed.HandleFunc("/accounts/me/emails/{email}", handlers.RemoveEmail(service)).Methods(http.MethodDelete)

	// Group routes
	authed.HandleFunc("/groups", handlers.ListGroups(service)).Methods(http.MethodGet)
	authed.HandleFunc("/groups", handlers.CreateGroup(service)).Methods(http.MethodPost)
	authed.HandleFunc("/groups/join", handlers.JoinGroup(service)).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{group}", handlers.GetGroup(service)).Methods(http.MethodGet)
	authed.HandleFunc("/groups/{group}", handlers.DeleteGroup(service)).Methods(http.MethodDelete)
	authed.HandleFunc("/groups/{group}/members", handlers.AddMembers(service)).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{group}/members/remove", handlers.RemoveMembers(service)).Methods(http.MethodPost)
	authed.HandleFunc("/groups/{group}/admins", handlers.AddAdmin(service)).Methods(http.MethodPost)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler()).Methods(http.MethodGet)
	}

	// Docs
	if cfg.DocsPath != "" {
		docs.SwaggerInfo.Host = cfg.Host
		docs.SwaggerInfo.BasePath = cfg.BasePath
		r.PathPrefix(cfg.DocsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(cfg.DocsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)
	}

	return r
}
