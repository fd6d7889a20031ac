package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"faceregistry/internal/auth"
	"faceregistry/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API access token",
	Long: `Mint a signed access token for calling the HTTP API.
The token is signed with AUTH_TOKEN_SECRET and carries the requested scopes.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringSlice("scopes", []string{auth.ScopeUsersRead, auth.ScopeUsersWrite}, "Scopes to grant")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	scopes, _ := cmd.Flags().GetStringSlice("scopes")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	service := auth.NewTokenService(cfg.Auth.TokenSecret)
	token, err := service.Issue(scopes, ttl)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	fmt.Println(token)
	return nil
}
