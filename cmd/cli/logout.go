package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/tgroups/internal/application/dto"
	appservice "github.com/turtacn/tgroups/internal/application/service"
	"github.com/turtacn/tgroups/internal/infrastructure/persistence"
	"github.com/turtacn/tgroups/internal/infrastructure/registry"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session; credentials are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			repo, _, err := persistence.OpenConfigRepository(cmd.Context(), cfg.Store, log)
			if err != nil {
				return err
			}
			defer repo.Close()

			// logins in progress live in the server process, so this registry is always empty
			attempts := registry.NewAttemptRegistry(cfg.Auth.AttemptTTL, cfg.Auth.CleanupInterval, log, nil)
			defer attempts.Close(cmd.Context())
			svc := appservice.NewAuthAppService(repo, nil, attempts, nil, nil, log)
			resp, err := svc.Logout(cmd.Context(), &dto.LogoutRequest{})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", resp.Message)
			return nil
		},
	}
}
