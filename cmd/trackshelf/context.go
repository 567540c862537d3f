package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trackshelf/internal/api"
	"trackshelf/internal/catalog"
	"trackshelf/internal/config"
	"trackshelf/internal/database"
	"trackshelf/internal/favorites"
	"trackshelf/internal/logging"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

// app is the wired catalog stack shared by every command of one run.
type app struct {
	logger *logrus.Logger
	client *api.Client
	store  *catalog.Store
	db     *database.Database
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil || strings.TrimSpace(*c.configFlag) == "" {
		return defaultConfigPath
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadConfig(c.configPath())
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureApp builds the logger, API client and store from configuration.
// Favorites are loaded from the database when persistence is enabled.
func (c *commandContext) ensureApp() (*app, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}

		logger, err := logging.New(cfg.Logging)
		if err != nil {
			c.appErr = fmt.Errorf("init logging: %w", err)
			return
		}

		client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, logger)
		store := catalog.NewStore(client, favorites.New(cfg.Favorites.Seed...), logger)
		a := &app{logger: logger, client: client, store: store}

		if cfg.Favorites.Persist {
			db, err := database.NewDatabase(cfg.Favorites.Path, logger)
			if err != nil {
				c.appErr = fmt.Errorf("open favorites database: %w", err)
				return
			}
			if err := store.UseBackend(db); err != nil {
				db.Close()
				c.appErr = err
				return
			}
			a.db = db
		}
		c.app = a
	})
	return c.app, c.appErr
}

func (c *commandContext) close() error {
	if c.app == nil || c.app.db == nil {
		return nil
	}
	err := c.app.db.Close()
	c.app.db = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
