package cli

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/api/client"
	"github.com/fastygo/dsp-console/internal/bootstrap"
	"github.com/fastygo/dsp-console/internal/config"
	"github.com/fastygo/dsp-console/internal/gateway"
	"github.com/fastygo/dsp-console/internal/infrastructure/storage"
	"github.com/fastygo/dsp-console/internal/navigation"
	"github.com/fastygo/dsp-console/internal/services/lifecycle"
	"github.com/fastygo/dsp-console/pkg/logger"
	"github.com/fastygo/dsp-console/repository"
	"github.com/fastygo/dsp-console/usecase/dashboard"
	"github.com/fastygo/dsp-console/usecase/profile"
	"github.com/fastygo/dsp-console/usecase/session"
)

// Options lets callers (and tests) replace the pieces the console would
// otherwise build from configuration.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Config     *config.Config
	Logger     *zap.Logger
	Store      repository.KeyValueStore
	HTTPClient gateway.Doer

	// Navigator is notified in addition to the terminal notice.
	Navigator navigation.Navigator
}

// App is the composed console: one session store shared by the gateway and
// every command.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	session   *session.Store
	gateway   *gateway.Gateway
	api       *client.Client
	profile   *profile.UseCase
	dashboard *dashboard.UseCase
	boot      *bootstrap.Bootstrapper
	lifecycle *lifecycle.Manager
}

func newApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		built, err := logger.New(logger.Config{
			Level:    cfg.Logger.Level,
			Encoding: cfg.Logger.Encoding,
			Output:   opts.Err,
		})
		if err != nil {
			return nil, err
		}
		log = built
	}

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, log)
	manager.RegisterCloser("logger", func() error {
		_ = log.Sync()
		return nil
	})

	kv := opts.Store
	if kv == nil {
		opened, err := storage.Open(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		kv = opened.Store
		manager.RegisterCloser("session_storage", opened.Close)
	}

	// The session store and the gateway depend on each other: the gateway
	// reads the credential from the store, and the store's login exchange
	// runs through the gateway. The authenticator is bound after both exist.
	auth := &lateAuthenticator{}
	store := session.New(auth, kv, repository.NewSessionKeys(cfg.Storage.Namespace), log.Named("session"))

	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	var nav navigation.Navigator = navigation.NewNotifier(errOut, cfg.Session.LoginPath, cfg.AppName+" login", log.Named("navigation"))
	if opts.Navigator != nil {
		nav = navigation.Multi{nav, opts.Navigator}
	}

	gw, err := gateway.New(gateway.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.RequestTimeout,
		ProactiveExpiry: cfg.Session.ProactiveExpiry,
		UserAgent:       cfg.AppName,
	}, opts.HTTPClient, store, nav, log.Named("gateway"))
	if err != nil {
		_ = manager.Shutdown(ctx)
		return nil, err
	}

	api := client.New(gw, log.Named("api"))
	auth.Authenticator = api

	return &App{
		cfg:       cfg,
		logger:    log,
		session:   store,
		gateway:   gw,
		api:       api,
		profile:   profile.New(api, store, log.Named("profile")),
		dashboard: dashboard.New(api, log.Named("dashboard")),
		boot:      bootstrap.New(store, log.Named("bootstrap")),
		lifecycle: manager,
	}, nil
}

// Close releases storage and flushes logs.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	return a.lifecycle.Shutdown(ctx)
}

type lateAuthenticator struct {
	session.Authenticator
}
