package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/sdiallo/docqa/handlers"
)

type Config struct {
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
}

// SetupRoutes wires the document and question-answering endpoints under
// /api/v1, with the injected rate limiter guarding the whole API.
func SetupRoutes(rag handlers.RAGService, extractor handlers.Extractor, limiter *handlers.RateLimiter, logger *slog.Logger, uploadDir string, maxUploadSize int64) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(limiter.Middleware)

	uploadHandler := handlers.NewUploadHandler(rag, extractor, logger, uploadDir, maxUploadSize)
	api.Handle("/documents/upload", uploadHandler).Methods("POST")

	searchHandler := handlers.NewSearchHandler(rag, logger)
	api.HandleFunc("/documents/search", searchHandler.Search).Methods("POST")

	documentHandler := handlers.NewDocumentHandler(rag, logger, uploadDir)
	api.HandleFunc("/documents/{filename}", documentHandler.GetDocument).Methods("GET")
	api.HandleFunc("/documents/{filename}", documentHandler.DeleteDocument).Methods("DELETE")

	askHandler := handlers.NewAskHandler(rag, logger)
	api.HandleFunc("/rag/ask", askHandler.Ask).Methods("POST")
	api.HandleFunc("/rag/ask/stream", askHandler.AskStream).Methods("POST")

	return r
}

// ServeProduction terminates TLS with certificates obtained through ACME.
func ServeProduction(n *negroni.Negroni, cfg Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Port 80 serves ACME "http-01" challenges and redirects the rest to
	// HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		// Streaming answers can take a while to finish.
		WriteTimeout: 5 * time.Minute,
	}

	err := srv.ListenAndServeTLS("", "")
	log.Fatal(err)
}

// ServeDevelopment starts the plain-HTTP server used outside production.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
