// Command forge-token-server serves the public Forge viewer token and keeps the
// privileged internal token inside the process.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AmmannChristian/go-forgeauth/httpclient"
	"github.com/AmmannChristian/go-forgeauth/httpserver"
	"github.com/AmmannChristian/go-forgeauth/internal/config"
	"github.com/AmmannChristian/go-forgeauth/internal/forgeauth"
	"github.com/AmmannChristian/go-forgeauth/oauth2client"
	"github.com/AmmannChristian/go-forgeauth/secrets"
	"github.com/AmmannChristian/go-forgeauth/tokencache"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log.Default()); err != nil {
		log.Fatalf("forge-token-server: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	secretOpts := []secrets.Option{}
	cacheOpts := []tokencache.Option{tokencache.WithExpiryLeeway(cfg.ExpiryLeeway)}
	issuerOpts := []oauth2client.Option{}
	if cfg.LogTokenEvents {
		secretOpts = append(secretOpts, secrets.WithLogger(logger))
		cacheOpts = append(cacheOpts, tokencache.WithLogger(logger))
		issuerOpts = append(issuerOpts, oauth2client.WithLogger(logger))
	}

	provider, err := secrets.LoadSSMProvider(ctx, cfg.SecretStore(), secretOpts...)
	if err != nil {
		return err
	}

	issuerClient, err := httpclient.NewBuilder().
		WithTimeout(cfg.HTTPTimeout).
		WithoutRedirects().
		Build()
	if err != nil {
		return fmt.Errorf("build issuer client: %w", err)
	}
	issuer := oauth2client.NewIssuer(cfg.IssuerURL(), append(issuerOpts, oauth2client.WithHTTPClient(issuerClient))...)

	cache, err := tokencache.New(provider, issuer, cfg.Credentials(), cacheOpts...)
	if err != nil {
		return err
	}

	service, err := forgeauth.NewService(cache)
	if err != nil {
		return err
	}

	apiClient, err := httpclient.NewBuilder().
		WithTimeout(cfg.HTTPTimeout).
		WithTokenSource(httpclient.TokenSourceFunc(service.InternalAccessToken)).
		Build()
	if err != nil {
		return fmt.Errorf("build API client: %w", err)
	}
	buckets, err := forgeauth.NewBucketClient(cfg.APIURL, apiClient)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(httpserver.PublicTokenRoute, httpserver.TokenHandler(service, httpserver.WithHandlerLogger(logger)))
	mux.Handle(forgeauth.BucketsRoute, forgeauth.BucketsHandler(buckets, logger))
	mux.Handle("/healthz", httpserver.HealthHandler(cache))

	var tlsCfg *httpserver.TLSConfig
	if cfg.TLSEnabled() {
		tlsCfg = &httpserver.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
	}

	server, err := httpserver.NewServer(cfg.HTTPAddr, httpserver.Middleware(httpserver.WithLogger(logger))(mux), tlsCfg)
	if err != nil {
		return err
	}

	logger.Printf("forge-token-server: listening on %s (tls: %t)", cfg.HTTPAddr, cfg.TLSEnabled())
	if err := httpserver.ListenAndServe(ctx, server); err != nil {
		return err
	}
	logger.Printf("forge-token-server: stopped")
	return nil
}
