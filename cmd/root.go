package cmd

import (
	"os"

	"github.com/benedict-erwin/influxmap/config"
	"github.com/benedict-erwin/influxmap/pkg/influxdb"
	"github.com/benedict-erwin/influxmap/pkg/logger"
	"github.com/benedict-erwin/influxmap/pkg/utils"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "influxmap",
	Short: "InfluxMap schema tooling",
	Long:  `InfluxMap command line tooling for inspecting measurements mapped through schema definitions`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Failed to execute command")
		os.Exit(1)
	}
}

// init initializes all application dependencies and registers commands
func init() {
	// Initialize config
	if err := config.Init(); err != nil {
		panic(err)
	}

	// Initialize logger
	logger.Init(config.Get().App.Timezone, config.Get().App.Env)

	// Initialize InfluxDB
	if err := influxdb.Init(); err != nil {
		logger.Error().Err(err).Msg("Failed to initialize InfluxDB")
		panic(err)
	}

	// Initialize utils
	if err := utils.InitTimezone(); err != nil {
		logger.Warn().Err(err).Msg("Timezone initialization failed, continuing with UTC")
	}

	// Add commands
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(queryCmd)
}
