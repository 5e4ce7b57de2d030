package influxdb

import (
	"time"

	v1oss "github.com/benedict-erwin/influxmap/pkg/influxdb/v1-oss"
)

// createV1OSSClient creates a new v1-oss client instance
func createV1OSSClient() Client {
	client := &v1oss.Client{}
	cfg := GetConfig()
	client.SetConfig(cfg.URL, cfg.Username, cfg.Password, cfg.Database)
	return client
}

// createV1OSSPoint creates a new v1-oss Point
func createV1OSSPoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) (interface{}, error) {
	return v1oss.NewPoint(measurement, tags, fields, timestamp)
}
