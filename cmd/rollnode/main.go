package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/keplerlabs/rollnode"
)

func main() {
	// Initialize logger
	rollnode.InitGlobalLogger()
	defer func() { _ = zap.S().Sync() }()

	var rootCmd = &cobra.Command{
		Use:              "rollnode",
		Short:            "rollnode keeps derived event indexes consistent with canonical chain data",
		PersistentPreRun: rollnode.SetupConfiguration,
	}

	rollnode.SetupDefaultConfiguration(func() {
		viper.AddConfigPath("$HOME/.rollnode") // search path
		viper.SetEnvPrefix("rollnode")
	})

	// Add commands and activate CLI
	rootCmd.AddCommand(rollnode.VersionCmd)
	rootCmd.AddCommand(StartCmd)
	rollnode.RunCLI(rootCmd)
}
