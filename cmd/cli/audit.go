package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/tgroups/internal/infrastructure/audit"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
	}
	cmd.AddCommand(newAuditTailCmd())
	return cmd
}

func newAuditTailCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the most recent audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Audit.Enabled {
				return fmt.Errorf("audit trail is disabled (audit.enabled=false)")
			}
			db, err := audit.OpenDatabase(cfg.Audit.Driver, cfg.Audit.DSN)
			if err != nil {
				return err
			}
			repo := audit.NewGormAuditRepository(db)
			defer repo.Close()

			entries, err := repo.FindRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				verified := "-"
				if cfg.Audit.SigningKey != "" {
					verified = "bad-signature"
					if audit.VerifyAuditLog(*e, cfg.Audit.SigningKey) {
						verified = "ok"
					}
				}
				printf(out, "%s  %-20s %-8s %-14s target=%s  %s\n",
					e.Timestamp.Format(time.RFC3339), e.EventType, e.Result, verified, e.TargetID, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to print")
	return cmd
}
