package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/layout"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from rendered output).
func createLogger(opts Options) *slog.Logger {
	if !opts.Debug {
		return logging.NewNop()
	}
	format := logging.FormatText
	if opts.LogFormat == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}
	return logging.NewWithWriter(os.Stderr, slog.LevelDebug, format)
}

// Site is a configured manager plus the props its root layout starts with.
type Site struct {
	Manager *arbor.Manager
	Props   layout.Props
	closers []func() error
}

// Close releases the manager and any backing connections.
func (s *Site) Close() error {
	if s.Manager != nil {
		s.Manager.Close()
	}
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// createSite initializes a Manager with standard CLI conventions: a
// manifest when given, a Redis template hash when asked for, the Loam
// vault at Dir otherwise.
func createSite(opts Options, logger *slog.Logger, extra ...arbor.Option) (_ *Site, err error) {
	site := &Site{}
	defer func() {
		if err != nil {
			site.Close()
		}
	}()
	mgrOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithStrictFlush(opts.Strict),
	}
	if opts.Debug {
		mgrOpts = append(mgrOpts, arbor.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}

	var client *backend.Client
	if opts.RedisURL != "" {
		ropts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client = backend.NewClient(ropts)
		site.closers = append(site.closers, client.Close)
	}

	dir := opts.Dir
	switch {
	case opts.Manifest != "":
		m, err := file.LoadManifest(opts.Manifest)
		if err != nil {
			return nil, err
		}
		props, err := m.Props()
		if err != nil {
			return nil, fmt.Errorf("manifest layout: %w", err)
		}
		site.Props = props
		mgrOpts = append(mgrOpts,
			arbor.WithLoader(m),
			arbor.WithHelpers(m.Helpers),
			arbor.WithDataSchema(m.Schema),
		)
		dir = opts.Manifest
	case opts.RedisTemplates != "":
		if client == nil {
			return nil, fmt.Errorf("--redis-templates requires --redis")
		}
		mgrOpts = append(mgrOpts, arbor.WithLoader(redis.NewLoader(client, opts.RedisTemplates)))
	}

	var store ports.SnapshotStore
	switch {
	case client != nil:
		store = redis.NewFromClient(client)
		mgrOpts = append(mgrOpts, arbor.WithLocker(redis.NewLocker(client, "arbor:")))
	case opts.SnapshotDir != "":
		store = file.New(opts.SnapshotDir)
	}
	if store != nil {
		mws, err := snapshotMiddleware(opts)
		if err != nil {
			return nil, err
		}
		mgrOpts = append(mgrOpts, arbor.WithSnapshotStore(middleware.Chain(store, mws...)))
	}

	mgrOpts = append(mgrOpts, extra...)
	mgr, err := arbor.New(dir, mgrOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing layout manager: %w", err)
	}
	site.Manager = mgr

	props, err := opts.props(site.Props)
	if err != nil {
		return nil, err
	}
	site.Props = props
	return site, nil
}

// snapshotMiddleware redacts before it encrypts, so masked values never
// reach the ciphertext.
func snapshotMiddleware(opts Options) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(opts.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if opts.SnapshotKey != "" {
		key, err := base64.StdEncoding.DecodeString(opts.SnapshotKey)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}
