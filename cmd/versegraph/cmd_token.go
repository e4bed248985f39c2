package main

import (
	"fmt"
	"time"

	"versegraph/infrastructure/config"
	"versegraph/pkg/auth"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development API token",
		Long: `Sign a JWT the API accepts, using JWT_SECRET or the development secret.

Example:
  curl -H "Authorization: Bearer $(versegraph token --user user-1)" localhost:8080/api/v2/graph`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			email, _ := cmd.Flags().GetString("email")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() {
				return fmt.Errorf("refusing to issue tokens for the production environment")
			}
			secret := cfg.JWTSecret
			if secret == "" {
				secret = config.DevJWTSecret
			}

			generator, err := auth.NewJWTGenerator(secret, cfg.JWTIssuer, cfg.JWTAudience, ttl)
			if err != nil {
				return err
			}
			token, err := generator.GenerateToken(userID, email, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id carried by the token")
	cmd.Flags().String("email", "", "Email claim")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
