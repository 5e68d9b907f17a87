package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the template when missing and initializes the token store.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.writePlain("✓ Config written to %s\n", configPath)
	}

	r.logger.Info("initializing token store", "backend", r.config.Token.Backend, "path", r.config.Token.Path)
	if _, err := r.tokenStore(); err != nil {
		return err
	}
	r.writePlain("✓ Token store ready at %s (%s)\n", r.config.Token.Path, r.config.Token.Backend)

	if err := r.config.Validate(); err != nil {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set credentials.spotify.client_id in %s (or SPOTBOARD_CLIENT_ID)\n", configPath)
		r.writePlain("2. Add %s as a redirect URI of your Spotify app\n", r.config.Credentials.Spotify.RedirectURI)
		r.writePlain("3. Run 'spotboard auth login'\n")
		return nil
	}

	r.writePlain("\nRun 'spotboard auth login' to sign in\n")
	return nil
}

// SetupRollback rolls back the most recent migration of the SQLite token database.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if r.config.Token.Backend != "sqlite" {
		return fmt.Errorf("%w: rollback only applies to the sqlite token backend", shared.ErrInvalidArgument)
	}

	db, err := shared.NewDatabase(r.config.Token.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Info("rolled back migration", "path", r.config.Token.Path)
	return r.writePlain("✓ Rolled back the latest migration\n")
}
