package cmd

import (
	"fmt"

	"github.com/benedict-erwin/influxmap/pkg/influxdb"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check InfluxDB connectivity",
	Long:  `Check connectivity against the configured InfluxDB instance`,
	RunE:  runHealth,
}

// runHealth pings the configured InfluxDB instance
func runHealth(cmd *cobra.Command, args []string) error {
	cfg := influxdb.GetConfig()

	fmt.Printf("InfluxDB version:  %s\n", cfg.Version)
	fmt.Printf("Database:          %s\n", cfg.DatabaseName())

	if err := influxdb.HealthCheck(); err != nil {
		fmt.Printf("Status:            ❌ unhealthy\n")
		return err
	}

	fmt.Printf("Status:            ✅ healthy\n")
	return nil
}
