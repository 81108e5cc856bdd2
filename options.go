package repository

import (
	"log/slog"

	"github.com/clearrights/repository/index"
	"github.com/clearrights/repository/store"
)

// Option is a functional option for the Service.
type Option func(*Service)

// WithOpener sets the store opener resolving repository namespaces.
func WithOpener(o store.Opener) Option { return func(s *Service) { s.opener = o } }

// WithNotifier sets the index notifier. Defaults to a no-op.
func WithNotifier(n index.Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithConfig sets the service configuration.
func WithConfig(c Config) Option { return func(s *Service) { s.config = c } }
