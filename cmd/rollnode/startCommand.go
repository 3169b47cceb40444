package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/keplerlabs/rollnode"
	"github.com/keplerlabs/rollnode/components/connections/database"
	"github.com/keplerlabs/rollnode/components/connections/database/postgres"
	"github.com/keplerlabs/rollnode/components/connections/metrics"
	"github.com/keplerlabs/rollnode/node"
	"github.com/keplerlabs/rollnode/types"
)

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the node",
	Run:   start,
}

func start(cmd *cobra.Command, args []string) {
	// Retrieve configuration
	var connParams database.DBConnectionParams
	err := viper.UnmarshalKey("db", &connParams)
	if err != nil {
		zap.S().Fatalf("error reading db config: %s", err)
	}

	chainID := types.DefaultChainID
	if raw := viper.GetString("chain_id"); raw != "" {
		chainID, err = types.ParseChainID(raw)
		if err != nil {
			zap.S().Fatalf("invalid chain_id: %v", err)
		}
	}

	// Connect to database
	dbConn, err := postgres.Connect(connParams, postgres.DBConnectionConfig{Gorm: &gorm.Config{}})
	if err != nil {
		zap.S().Fatalf(err.Error())
	}

	nodeCfg := node.Config{
		StatusAddr:             viper.GetString("status_addr"),
		MigrationChunkSize:     viper.GetUint32("migration.chunk_size"),
		MigrationSleepInterval: viper.GetDuration("migration.sleep_interval"),
	}

	// Metrics endpoint
	if port := viper.GetString("metrics.port"); port != "" {
		metrics.StartMetricsServer(port, "rollnode")
	}

	n := node.NewNode(dbConn, nodeCfg)
	rollnode.SetupCloseHandler(n.Stop)

	zap.S().Infof("Starting node for chain %s", chainID)
	if err := n.Start(context.Background()); err != nil {
		zap.S().Fatalf(err.Error())
	}

	select {} // the node runs until the close handler fires
}
