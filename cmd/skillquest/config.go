package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/skillquest/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ~/.skillquest configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml and a secrets.yaml with a fresh JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				d, err := config.EnsureDir()
				if err != nil {
					return err
				}
				dir = d
			} else if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			configPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", configPath, err)
			}

			secret, err := randomSecret()
			if err != nil {
				return err
			}

			if err := config.Save(dir, config.DefaultConfig()); err != nil {
				return err
			}
			if err := config.SaveSecrets(dir, config.SecretsConfig{JWTSecret: secret}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", configPath)
			fmt.Fprintf(out, "Wrote %s\n", filepath.Join(dir, "secrets.yaml"))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Configuration directory (default ~/.skillquest)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration without secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			out := cmd.OutOrStdout()
			out.Write(data)

			fmt.Fprintf(out, "# jwt secret: %s\n", secretState(cfg.Auth.JWTSecret))
			fmt.Fprintf(out, "# database url: %s\n", setState(cfg.Database.URL))
			fmt.Fprintf(out, "# rabbitmq url: %s\n", setState(cfg.Events.RabbitMQURL))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Path to config.yaml")
	return cmd
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func secretState(s string) string {
	if s == config.DevJWTSecret {
		return "development placeholder"
	}
	return setState(s)
}

func setState(s string) string {
	if s == "" {
		return "not set"
	}
	return "set"
}
