package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"revix/internal/config"
	"revix/internal/domain"
	"revix/internal/infra/abi"
	"revix/internal/infra/auth/oidc"
	"revix/internal/infra/binding"
	"revix/internal/infra/crypto"
	"revix/internal/infra/db"
	"revix/internal/infra/identity/youtube"
	"revix/internal/infra/metrics"
	"revix/internal/infra/policyopa"
	"revix/internal/usecase"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg     config.Config
	store   *db.Store
	r       *gin.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics

	signing *usecase.SigningContext
	issue   *usecase.IssueAttestation

	gate        domain.IdentityVerifier
	binding     domain.BindingChecker
	authInitErr error
	bindInitErr error
	closers     []func() error
}

// NewServer wires the identity gate and binding checker from cfg. Wiring
// errors are reported by Run.
func NewServer(ctx context.Context, cfg config.Config, store *db.Store, signing *usecase.SigningContext, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		metrics: metrics.New(),
		signing: signing,
	}
	s.initAuth(ctx)
	s.initBinding(ctx)
	s.initUseCase()
	s.routes()
	return s
}

type ServerDeps struct {
	Signing *usecase.SigningContext
	Gate    domain.IdentityVerifier
	Binding domain.BindingChecker
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		signing: deps.Signing,
		gate:    deps.Gate,
		binding: deps.Binding,
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.gate == nil {
		s.initAuth(context.Background())
	}
	if s.binding == nil {
		s.binding = binding.Advisory{}
	}
	s.initUseCase()
	s.routes()
	return s
}

func (s *Server) initAuth(ctx context.Context) {
	switch s.cfg.AuthMode {
	case config.AuthModeYouTube:
		s.gate = youtube.NewVerifier(s.cfg.IdentityProviderURL, s.cfg.IdentityTimeout())
	case config.AuthModeOIDC:
		verifier, err := oidc.NewVerifier(ctx, s.cfg)
		if err != nil {
			s.authInitErr = fmt.Errorf("oidc auth: %w", err)
			return
		}
		s.gate = verifier
	case config.AuthModeNone:
		s.gate = usecase.AnonymousGate{}
	case "":
		s.authInitErr = errors.New("AUTH_MODE is required (youtube, oidc or none)")
	default:
		s.authInitErr = fmt.Errorf("unsupported AUTH_MODE %q", s.cfg.AuthMode)
	}
}

func (s *Server) initBinding(ctx context.Context) {
	switch s.cfg.BindingMode {
	case config.BindingModeAdvisory, "":
		s.binding = binding.Advisory{}
	case config.BindingModeRegistry:
		registry, err := s.bindingRegistry()
		if err != nil {
			s.bindInitErr = err
			return
		}
		checker, err := binding.NewRegistry(registry)
		if err != nil {
			s.bindInitErr = err
			return
		}
		s.binding = checker
	case config.BindingModePolicy:
		registry, err := s.bindingRegistry()
		if err != nil {
			s.bindInitErr = err
			return
		}
		engine, err := policyopa.NewEngineFromPath(ctx, s.cfg.BindingPolicyPath)
		if err != nil {
			s.bindInitErr = err
			return
		}
		s.binding = policyopa.NewChecker(engine, registry)
	default:
		s.bindInitErr = fmt.Errorf("unsupported BINDING_MODE %q", s.cfg.BindingMode)
	}
}

func (s *Server) bindingRegistry() (domain.BindingRegistry, error) {
	switch s.cfg.BindingStore {
	case config.BindingStoreMemory, "":
		bindings, err := binding.ParseBindings(s.cfg.Bindings)
		if err != nil {
			return nil, err
		}
		return binding.NewMemory(bindings), nil
	case config.BindingStorePostgres:
		if s.store == nil || s.store.DB == nil {
			return nil, errors.New("BINDING_STORE=postgres requires POSTGRES_DSN")
		}
		return db.NewBindingRepository(s.store.DB, s.cfg.AuthMode), nil
	case config.BindingStoreRedis:
		client, err := binding.NewRedisClient(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		return binding.NewRedis(client, s.cfg.RedisKeyPrefix)
	default:
		return nil, fmt.Errorf("unsupported BINDING_STORE %q", s.cfg.BindingStore)
	}
}

func (s *Server) initUseCase() {
	provider := s.cfg.AuthMode
	if provider == config.AuthModeNone {
		provider = usecase.AnonymousProvider
	}
	s.issue = &usecase.IssueAttestation{
		Gate:     s.gate,
		Provider: provider,
		Binding:  s.binding,
		Encoder:  abi.Encoder{},
		Digest:   &crypto.Service{},
		Signing:  s.signing,
		Metrics:  s.metrics,
		Logger:   s.log(),
	}
}

func (s *Server) routes() {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	s.r = r

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/proofOfAccountOwnership", s.handleAttestation(domain.ClaimAccountOwnership))
		api.GET("/proofOfVideoOwnership", s.handleAttestation(domain.ClaimContentOwnership))
		api.GET("/proofOfRoyaltyRevenue", s.handleAttestation(domain.ClaimRoyaltyTransfer))
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/signer", s.handleSigner)
	}
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.authInitErr != nil {
		return s.authInitErr
	}
	if s.bindInitErr != nil {
		return fmt.Errorf("binding: %w", s.bindInitErr)
	}
	if s.signing == nil {
		return fmt.Errorf("%w: no signing key loaded", domain.ErrSigning)
	}
	defer s.close()

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log().Info("listening", "addr", s.cfg.HTTPAddr, "auth_mode", s.cfg.AuthMode, "binding_mode", s.cfg.BindingMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log().Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.log().Warn("close dependency", "error", err)
		}
	}
}

func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		// Path only: the query string may carry a credential.
		s.log().Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
