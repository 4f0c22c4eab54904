package envvars

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"stoneTracker/services/collection"
)

const (
	ProductionEnv = "production"
	DevEnv        = "dev"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Env struct {
	Environment string `env:"ENVIRONMENT" env-default:"dev"`
	Port        int    `env:"PORT" env-default:"8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	// Store selects the persistence backend. "memory" runs without Firestore
	// and without real sign-in, for local development only.
	Store     string `env:"STORE" env-default:"firestore"`
	ProjectID string `env:"GCP_PROJECT_ID"`
	// CredentialsFile is optional; application default credentials are used otherwise.
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	FirebaseAPIKey     string `env:"FIREBASE_API_KEY"`
	IdentityToolkitURL string `env:"IDENTITY_TOOLKIT_URL" env-default:"https://identitytoolkit.googleapis.com"`
	JWKSURL            string `env:"FIREBASE_JWKS_URL" env-default:"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"`

	// LockPolicy is "none" or "complete"; see collection.ParseLockPolicy.
	LockPolicy       string        `env:"COLLECTION_LOCK_POLICY" env-default:"none"`
	AnonymousHandles bool          `env:"ANONYMOUS_HANDLES" env-default:"false"`
	RosterRetryDelay time.Duration `env:"ROSTER_RETRY_DELAY" env-default:"5s"`

	ExportBucket   string        `env:"ROSTER_EXPORT_BUCKET"`
	ExportInterval time.Duration `env:"ROSTER_EXPORT_INTERVAL" env-default:"1h"`
}

// GetEnv reads the configuration from the environment and validates it.
func GetEnv() (Env, error) {
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		return Env{}, fmt.Errorf("envvars: read env: %w", err)
	}
	if err := env.Validate(); err != nil {
		return Env{}, fmt.Errorf("envvars: %w", err)
	}
	return env, nil
}

func (e Env) Validate() error {
	var errs []error
	switch e.Environment {
	case ProductionEnv, DevEnv:
	default:
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be %q or %q, got %q", ProductionEnv, DevEnv, e.Environment))
	}
	switch e.Store {
	case StoreFirestore:
		if e.ProjectID == "" {
			errs = append(errs, errors.New("GCP_PROJECT_ID is required"))
		}
		if e.FirebaseAPIKey == "" {
			errs = append(errs, errors.New("FIREBASE_API_KEY is required"))
		}
	case StoreMemory:
		if IsProd(e) {
			errs = append(errs, errors.New("STORE=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreFirestore, StoreMemory, e.Store))
	}
	if e.Port <= 0 || e.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", e.Port))
	}
	if _, err := collection.ParseLockPolicy(e.LockPolicy); err != nil {
		errs = append(errs, fmt.Errorf("COLLECTION_LOCK_POLICY: %w", err))
	}
	if e.RosterRetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("ROSTER_RETRY_DELAY must be positive, got %s", e.RosterRetryDelay))
	}
	if e.ExportBucket != "" && e.ExportInterval <= 0 {
		errs = append(errs, errors.New("ROSTER_EXPORT_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

func IsProd(env Env) bool {
	return env.Environment == ProductionEnv
}

func IsDev(env Env) bool {
	return env.Environment == DevEnv
}
