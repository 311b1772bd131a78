package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"holocron/internal/album"
	"holocron/internal/config"
	"holocron/internal/cooldown"
	"holocron/internal/kvstore"
	"holocron/internal/loader"
	"holocron/internal/logging"
	"holocron/internal/pack"
	"holocron/internal/session"
	"holocron/internal/swapi"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// runtime bundles the collaborators one command invocation needs.
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	kv        kvstore.Store
	client    *swapi.Client
	cooldowns *cooldown.Manager
	album     *album.Store
	tracker   *loader.Tracker
}

func (c *commandContext) openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	kv, err := kvstore.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	client, err := swapi.NewFromConfig(cfg, logger)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("catalog client: %w", err)
	}

	cooldowns := cooldown.New(ctx, kv,
		cooldown.WithDuration(cfg.CooldownDuration()),
		cooldown.WithSlots(cfg.EnvelopeSlots()),
		cooldown.WithLogger(logger))
	store := album.New(ctx, kv,
		album.WithCooldowns(cooldowns),
		album.WithLogger(logger))

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		kv:        kv,
		client:    client,
		cooldowns: cooldowns,
		album:     store,
		tracker:   loader.NewTracker(nil),
	}, nil
}

func (c *commandContext) withRuntime(cmd *cobra.Command, fn func(*runtime) error) error {
	rt, err := c.openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	return errors.Join(fn(rt), rt.Close())
}

func (r *runtime) controller(rng pack.Rand) *session.Controller {
	l := loader.New(r.client,
		loader.WithTimeout(r.cfg.CatalogTimeout()),
		loader.WithTracker(r.tracker),
		loader.WithLogger(r.logger))
	return session.New(r.cooldowns, pack.NewComposer(rng), l, r.album,
		session.WithLogger(r.logger))
}

func (r *runtime) Close() error {
	if r == nil || r.kv == nil {
		return nil
	}
	return r.kv.Close()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
