package main

import (
	"errors"
	"fmt"
	"time"

	"llmchess/internal/server/service"

	"github.com/spf13/cobra"
)

func tokenCmd(configPath *string) *cobra.Command {
	var subject string
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for the credential endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *configPath, nil)
			if err != nil {
				return err
			}
			if cfg.AdminSecret == "" {
				return errors.New("admin_secret is not configured, credential endpoints are unguarded")
			}
			svc, err := service.New(cfg.AdminSecret)
			if err != nil {
				return err
			}
			token, err := svc.GenerateAdminToken(subject, ttl)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	c.Flags().StringVar(&subject, "subject", "admin", "token subject recorded in server logs")
	c.Flags().DurationVar(&ttl, "ttl", service.AdminTokenTTL, "token lifetime")
	return c
}
