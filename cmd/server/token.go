package main

import (
	"fmt"

	authapp "finance-tracker/internal/application/auth"
	"finance-tracker/internal/infrastructure/config"
	otelinfra "finance-tracker/internal/infrastructure/observability/otel"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token signed with JWT_SECRET",
		RunE:  runToken,
	}
	cmd.Flags().String("user", "", "User ID to embed in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := otelinfra.NewLoggerFromConfig(otelinfra.Tracer("finance-tracker-cli"), &cfg.Log)
	metrics, err := otelinfra.NewMetrics("finance-tracker-cli")
	if err != nil {
		return err
	}

	service := authapp.NewAuthApplicationService(nil, &cfg.JWT, logger, metrics)
	resp, err := service.GenerateToken(cmd.Context(), &authapp.GenerateTokenRequest{UserID: userID})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
	return nil
}
