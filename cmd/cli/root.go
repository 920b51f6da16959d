// Package cli implements tgroups-admin, the operator tool for the stored account record and
// the audit trail.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/tgroups/internal/config"
	"github.com/turtacn/tgroups/pkg/logger"
)

var configFile string

// rootCmd represents the base command when the `tgroups-admin` binary is called without any subcommands.
// rootCmd 代表在没有任何子命令的情况下调用 `tgroups-admin` 二进制文件时的基本命令。
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tgroups-admin",
		Short: "Administers the stored credentials, session and audit trail of tgroups.",
		Long: `tgroups-admin works directly on the stores configured in tgroups.yaml.
It can inspect and update the credentials, drop the stored session and read the audit trail.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to tgroups.yaml")
	cmd.AddCommand(newConfigCmd(), newLogoutCmd(), newAuditCmd())
	return cmd
}

// Execute is the main entry point for the CLI application.
// If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the service configuration. The CLI logs nothing by default.
func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewNoopLogger(), nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
