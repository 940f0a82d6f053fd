package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelist/internal/config"
	"reelist/internal/discovery"
	"reelist/internal/logging"
	"reelist/internal/services"
	"reelist/internal/telemetry"
	"reelist/internal/tmdb"
	"reelist/internal/userdata"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// session bundles the collaborators one invocation works with. The catalog
// client is built on first use so local-only commands run without a TMDB key.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *userdata.Store

	catalogOnce sync.Once
	catalog     *tmdb.Client
	catalogErr  error
}

func (s *session) catalogClient() (*tmdb.Client, error) {
	s.catalogOnce.Do(func() {
		s.catalog, s.catalogErr = tmdb.NewFromConfig(s.cfg, s.logger)
	})
	return s.catalog, s.catalogErr
}

func (s *session) service() (*discovery.Service, error) {
	catalog, err := s.catalogClient()
	if err != nil {
		return nil, err
	}
	return discovery.New(catalog, s.store, s.logger), nil
}

// withSession builds the logger, tracer, and user data store, runs fn, then
// flushes spans and closes the store.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *session) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := services.WithCommand(services.NewRequestContext(cmd.Context()), cmd.CommandPath())
	logger = logging.WithContext(ctx, logger)

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logging.Warn(logger, "telemetry shutdown failed", logging.Problem{
				Event:  "telemetry_shutdown_failed",
				Hint:   "check telemetry.otlp_endpoint",
				Impact: "spans from this command may be lost",
			}, logging.Error(shutdownErr))
		}
	}()

	backend, err := userdata.OpenBackend(cfg, logger)
	if err != nil {
		return err
	}
	store, err := userdata.Open(ctx, backend, userdata.WithLogger(logger))
	if err != nil {
		_ = backend.Close()
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close user data: %w", closeErr)
		}
	}()

	return fn(ctx, &session{cfg: cfg, logger: logger, store: store})
}

// withService is withSession for commands that read the catalog.
func (c *commandContext) withService(cmd *cobra.Command, fn func(context.Context, *session, *discovery.Service) error) error {
	return c.withSession(cmd, func(ctx context.Context, s *session) error {
		svc, err := s.service()
		if err != nil {
			return err
		}
		return fn(ctx, s, svc)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseMovieID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "cli", "parse movie id",
			fmt.Sprintf("%q is not a movie id", raw), nil)
	}
	return id, nil
}

func parseRating(raw string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !userdata.ValidRating(rating) {
		return 0, services.Wrap(services.ErrValidation, "cli", "parse rating",
			fmt.Sprintf("rating must be a whole number from %d to %d", userdata.MinRating, userdata.MaxRating), nil)
	}
	return rating, nil
}

// formatCommandError renders err for the terminal. Catalog and persistence
// failures collapse to a short message; configuration problems keep detail.
func formatCommandError(err error) string {
	switch services.Kind(err) {
	case "configuration", "validation":
		return "Error: " + err.Error()
	case "fetch", "persistence":
		return "Error: " + discovery.UserMessage(err)
	}
	var viewErr *discovery.ViewError
	if errors.As(err, &viewErr) {
		return "Error: " + discovery.UserMessage(err)
	}
	return "Error: " + err.Error()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
