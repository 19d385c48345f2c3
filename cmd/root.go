package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leakguard-io/leakguard/cmd/project"
	"github.com/leakguard-io/leakguard/cmd/push"
	"github.com/leakguard-io/leakguard/cmd/scan"
	"github.com/leakguard-io/leakguard/cmd/serve"
	"github.com/leakguard-io/leakguard/cmd/version"
	"github.com/leakguard-io/leakguard/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "leakguard [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Leakguard detects committed credentials and tracks their lifecycle.",
		Long: `Leakguard scans source trees for accidentally committed credentials,
	produces privacy-safe masked evidence, and tracks each distinct detection's
	lifecycle across repeated scans through a project-scoped ingestion API.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(push.PushCmd)
	rootCmd.AddCommand(serve.ServeCmd)
	rootCmd.AddCommand(project.ProjectCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command.
func Execute() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	push.Init(AppConfig)
	serve.Init(AppConfig)
	project.Init(AppConfig)
}
