package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	ginmiddleware "github.com/oapi-codegen/gin-middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stoneTracker/api"
	"stoneTracker/clients/gcp"
	"stoneTracker/envvars"
	"stoneTracker/generator"
	"stoneTracker/services/backup"
	"stoneTracker/services/collection"
	"stoneTracker/services/roster"
	"stoneTracker/services/session"
	"stoneTracker/services/user"
	"stoneTracker/validator"
)

func main() {
	env, err := envvars.GetEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogging(env envvars.Env) {
	level, err := zerolog.ParseLevel(env.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if envvars.IsDev(env) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

// backend is everything that depends on the configured store.
type backend struct {
	store    user.Store
	sessions session.Service
	exporter backup.Service
	close    func()
}

func newBackend(ctx context.Context, env envvars.Env) (*backend, error) {
	if env.Store == envvars.StoreMemory {
		log.Warn().Msg("using in-memory store and local sign-in; data is lost on exit")
		return &backend{
			store:    user.NewMemoryStore(),
			sessions: session.NewLocalService([]byte(uuid.NewString()), session.NewMemoryRevocations()),
			close:    func() {},
		}, nil
	}

	opts := gcp.ClientOptions(env.CredentialsFile)
	db, err := gcp.CreateFirestore(ctx, env.ProjectID, opts...)
	if err != nil {
		return nil, err
	}
	b := &backend{
		store: user.NewFirestoreStore(db),
		sessions: session.NewService(
			resty.New().SetTimeout(10*time.Second),
			session.Config{
				ProjectID:          env.ProjectID,
				APIKey:             env.FirebaseAPIKey,
				IdentityToolkitURL: env.IdentityToolkitURL,
				JWKSURL:            env.JWKSURL,
			},
			session.NewAutoRefreshKeys(ctx, env.JWKSURL),
			session.NewFirestoreRevocations(db),
		),
		close: func() { _ = db.Close() },
	}

	if env.ExportBucket != "" {
		client, err := gcp.CreateStorage(ctx, opts...)
		if err != nil {
			b.close()
			return nil, err
		}
		b.exporter = backup.NewService(backup.NewBucketUploader(client, env.ExportBucket))
		closeDB := b.close
		b.close = func() {
			_ = client.Close()
			closeDB()
		}
	}
	return b, nil
}

func run(ctx context.Context, env envvars.Env) error {
	b, err := newBackend(ctx, env)
	if err != nil {
		return err
	}
	defer b.close()

	policy, err := collection.ParseLockPolicy(env.LockPolicy)
	if err != nil {
		return err
	}
	var userOpts []user.Option
	if env.AnonymousHandles {
		userOpts = append(userOpts, user.WithNameGenerator(generator.HeroName))
	}

	syncer := roster.NewSynchronizer(b.store, roster.WithRetryDelay(env.RosterRetryDelay))
	if err := syncer.Start(ctx); err != nil {
		return err
	}
	defer syncer.Close()

	server := NewServer(
		user.NewUserService(b.store, userOpts...),
		collection.NewService(b.store, policy),
		b.sessions,
		syncer,
	)

	swagger, err := api.GetSwagger()
	if err != nil {
		return err
	}
	router := NewRouter(server, b.sessions, swagger)

	s := &http.Server{
		Handler:           router,
		Addr:              fmt.Sprintf("0.0.0.0:%d", env.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Int("port", env.Port).Str("policy", policy.String()).Msg("starting HTTP server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down HTTP server")
		return s.Shutdown(shutdownCtx)
	})
	if b.exporter != nil {
		g.Go(func() error {
			b.exporter.Run(gCtx, syncer.Snapshot, env.ExportInterval)
			return nil
		})
	}
	return g.Wait()
}

// NewRouter validates every request against the OpenAPI document before it
// reaches the handlers.
func NewRouter(server api.ServerInterface, verifier validator.IdentityVerifier, swagger *openapi3.T) *gin.Engine {
	// Clear out the servers array in the swagger spec, that skips validating
	// that server names match. We don't know how this thing will be run.
	swagger.Servers = nil

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/openapi", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/x-yaml", api.SpecYAML())
	})

	r.Use(ginmiddleware.OapiRequestValidatorWithOptions(swagger, &ginmiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: validator.NewAuthenticator(verifier),
		},
		ErrorHandler: validationError,
	}))
	api.RegisterHandlersWithOptions(r, server, api.GinServerOptions{
		ErrorHandler: func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, api.ErrorResponse{Error: err.Error()})
		},
	})
	return r
}

// validationError answers requests rejected by the OpenAPI validator.
// Authentication failures keep the status of their cause.
func validationError(c *gin.Context, message string, statusCode int) {
	if authErr := validator.AuthError(c); authErr != nil {
		statusCode = statusFor(authErr)
		message = authErr.Error()
	}
	c.AbortWithStatusJSON(statusCode, api.ErrorResponse{Error: message})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
