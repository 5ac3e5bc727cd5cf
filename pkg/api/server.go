// Package api knobstore REST API
//
// @title           knobstore REST API
// @version         1.0.0
// @description     This is the REST API for knobstore, a firmware-style configuration variable store.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"

	"github.com/platformkit/knobstore/pkg/knob"
	"github.com/platformkit/knobstore/pkg/varstore"
)

// StartServer starts the HTTP server with all routes configured
func StartServer(store varstore.Store, resolver *knob.Resolver, config ServerConfig) error {
	// Set Swagger host with port
	if SwaggerInfo != nil {
		SwaggerInfo.Host = fmt.Sprintf("localhost:%d", config.Port)
	}

	// Initialize metrics
	metrics := NewMetrics()

	server := NewServer(store, resolver, config, metrics)

	r := NewRouter(server, metrics)

	// Start background metrics updater
	go server.startMetricsUpdater()

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting knobstore REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://localhost:%d/metrics\n", config.Port)
	log.Fatal(http.ListenAndServe(addr, r))

	return nil
}

// NewRouter wires all routes and middleware onto a chi router.
func NewRouter(server *Server, metrics *Metrics) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Variable operations
		r.Get("/vars", metrics.InstrumentHandler("GET", "/api/v1/vars", server.handleListVars))
		r.Get("/vars/{namespace}/{name}", metrics.InstrumentHandler("GET", "/api/v1/vars/{namespace}/{name}", server.handleGetVar))
		r.Put("/vars/{namespace}/{name}", metrics.InstrumentHandler("PUT", "/api/v1/vars/{namespace}/{name}", server.handlePutVar))
		r.Delete("/vars/{namespace}/{name}", metrics.InstrumentHandler("DELETE", "/api/v1/vars/{namespace}/{name}", server.handleDeleteVar))

		// Snapshots
		r.Get("/snapshot", metrics.InstrumentHandler("GET", "/api/v1/snapshot", server.handleExportSnapshot))
		r.Post("/snapshot", metrics.InstrumentHandler("POST", "/api/v1/snapshot", server.handleImportSnapshot))

		// Knobs
		r.Get("/knobs", metrics.InstrumentHandler("GET", "/api/v1/knobs", server.handleListKnobs))
		r.Get("/knobs/{name}", metrics.InstrumentHandler("GET", "/api/v1/knobs/{name}", server.handleGetKnob))

		// Diagnostics
		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
	})

	// Swagger documentation (unprotected)
	r.Get("/swagger/*", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/swagger/" || path == "/swagger/index.html" {
			// Serve the Swagger UI HTML
			w.Header().Set("Content-Type", "text/html")
			html := `<!DOCTYPE html>
<html>
<head>
	 <title>knobstore API Documentation</title>
	 <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui.css" />
</head>
<body>
	 <div id="swagger-ui"></div>
	 <script src="https://unpkg.com/swagger-ui-dist@3.25.0/swagger-ui-bundle.js"></script>
	 <script>
	   window.onload = function() {
	     SwaggerUIBundle({
	       url: '/swagger/swagger.json',
	       dom_id: '#swagger-ui',
	       presets: [
	         SwaggerUIBundle.presets.apis,
	         SwaggerUIBundle.presets.standalone
	       ]
	     });
	   };
	 </script>
</body>
</html>`
			w.Write([]byte(html))
			return
		}

		if path == "/swagger/swagger.json" {
			// Serve the dynamically generated Swagger JSON
			doc, err := swag.ReadDoc("swagger")
			if err != nil {
				fmt.Printf("Error generating swagger doc: %v\n", err)
				http.Error(w, "Failed to generate Swagger documentation", 500)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(doc))
			return
		}

		// For any other paths, return 404
		http.NotFound(w, r)
	})

	return r
}
