package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/tgroups/internal/application/dto"
	appservice "github.com/turtacn/tgroups/internal/application/service"
	"github.com/turtacn/tgroups/internal/infrastructure/persistence"
	"github.com/turtacn/tgroups/pkg/logger"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the stored credentials",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSetCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored credentials with secrets masked",
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

			resp, err := appservice.NewConfigAppService(repo, log).GetConfig(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printf(out, "store:    %s\n", cfg.Store.Driver)
			if resp.APIID != nil {
				printf(out, "api id:   %d\n", *resp.APIID)
			} else {
				printf(out, "api id:   (not set)\n")
			}
			if resp.APIHash != nil {
				printf(out, "api hash: %v\n", logger.Sanitize("api_hash", *resp.APIHash))
			} else {
				printf(out, "api hash: (not set)\n")
			}
			if resp.SessionString != "" {
				printf(out, "session:  present (%d bytes)\n", len(resp.SessionString))
			} else {
				printf(out, "session:  none\n")
			}
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		apiID   int
		apiHash string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the stored credentials; the session is kept",
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

			resp, err := appservice.NewConfigAppService(repo, log).UpdateConfig(cmd.Context(), &dto.UpdateConfigRequest{
				APIID:   dto.AccountID(apiID),
				APIHash: apiHash,
			})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", resp.Message)
			return nil
		},
	}
	cmd.Flags().IntVar(&apiID, "api-id", 0, "numeric application id")
	cmd.Flags().StringVar(&apiHash, "api-hash", "", "application hash")
	return cmd
}
