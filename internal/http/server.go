// Package http arma y sirve la superficie HTTP del servicio.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/scopegate/internal/audit"
	"github.com/dropDatabas3/scopegate/internal/cache"
	"github.com/dropDatabas3/scopegate/internal/cache/factory"
	"github.com/dropDatabas3/scopegate/internal/catalog"
	"github.com/dropDatabas3/scopegate/internal/config"
	healthctrl "github.com/dropDatabas3/scopegate/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/scopegate/internal/http/controllers/oauth"
	"github.com/dropDatabas3/scopegate/internal/http/router"
	oauthsvc "github.com/dropDatabas3/scopegate/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/scopegate/internal/jwt"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
	"github.com/dropDatabas3/scopegate/internal/policy"
	"github.com/dropDatabas3/scopegate/internal/store"
)

// Server agrupa el http.Server con los recursos que hay que cerrar.
type Server struct {
	srv       *http.Server
	da        store.DataAccess
	storeSink *audit.StoreSink // nil con sink=log
}

// NewServer hace el wiring completo: store, cache, catálogo, auditoría,
// issuer, services y router.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	da, err := store.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("server: store: %w", err)
	}

	if cfg.Storage.Driver == "memory" && cfg.App.Env == "dev" {
		if err := store.Seed(ctx, da); err != nil {
			da.Close()
			return nil, fmt.Errorf("server: seed: %w", err)
		}
	}

	ccfg := cache.Config{Kind: cfg.Cache.Kind, DefaultTTL: cfg.CacheDefaultTTL()}
	ccfg.Redis.Addr = cfg.Cache.Redis.Addr
	ccfg.Redis.DB = cfg.Cache.Redis.DB
	c := factory.New(ccfg)

	// Sink de auditoría: log siempre; store encima cuando está configurado.
	var storeSink *audit.StoreSink
	sinks := audit.Tee{audit.NewLogSink(), metricsSink{}}
	if cfg.Audit.Sink == "store" {
		storeSink = audit.NewStoreSink(da.Audit(), audit.StoreSinkOptions{
			QueueSize: cfg.Audit.QueueSize,
			OnDrop:    RecordAuditDrop,
		})
		sinks = append(sinks, storeSink)
	}

	prov := catalog.NewProvider(catalog.Deps{
		Scopes:   da.Scopes(),
		Clients:  da.Clients(),
		Mappings: da.ClaimMappings(),
		Cache:    c,
		TTL:      cfg.CatalogTTL(),
	})
	evaluator := policy.NewEvaluator(prov, sinks)

	var issuer *jwtx.Issuer
	if seed := cfg.JWT.SigningSeed; seed != "" {
		issuer, err = jwtx.NewIssuerFromSeed(cfg.JWT.Issuer, seed)
	} else {
		issuer, err = jwtx.NewIssuer(cfg.JWT.Issuer)
	}
	if err != nil {
		da.Close()
		return nil, fmt.Errorf("server: issuer: %w", err)
	}
	issuer.AccessTTL = cfg.AccessTTL()
	issuer.IDTTL = cfg.IDTokenTTL()

	services := oauthsvc.NewServices(oauthsvc.Deps{
		DA:               da,
		Catalog:          prov,
		Evaluator:        evaluator,
		Issuer:           issuer,
		Cache:            c,
		Audit:            sinks,
		ConsentUIBaseURL: cfg.Server.ConsentUIBaseURL,
	})

	metricsHandler, err := RegisterMetrics(MetricsConfig{})
	if err != nil {
		da.Close()
		return nil, fmt.Errorf("server: metrics: %w", err)
	}

	handler := router.New(router.Deps{
		OAuth:       oauthctrl.NewControllers(services),
		Health:      healthctrl.NewController(da),
		Metrics:     metricsHandler,
		WithMetrics: WithMetrics,
	})

	return &Server{
		srv: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		da:        da,
		storeSink: storeSink,
	}, nil
}

// Start bloquea sirviendo hasta error o Shutdown.
func (s *Server) Start() error {
	logger.L().Info("http server listening", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown apaga ordenadamente: server, sink de auditoría y store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if s.storeSink != nil {
		s.storeSink.Close()
	}
	s.da.Close()
	return err
}

// metricsSink observa los eventos de auditoría y los refleja en counters.
type metricsSink struct{}

func (metricsSink) LogEvent(_ context.Context, ev audit.Event) {
	switch ev.Type {
	case audit.EventClientScopeRestricted:
		RecordScopeRestriction(ev.SubjectID)
	case audit.EventConsentTampering:
		if cid, ok := ev.Details["client_id"].(string); ok {
			RecordConsentTampering(cid)
		}
	}
}
