package influxdb

import (
	"fmt"
	"time"
)

// Factory functions live in separate files per implementation to avoid
// import cycles between this package and the version sub-packages.

// MakePoint builds the write point for a specific server generation
func MakePoint(version Version, measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) (interface{}, error) {
	switch version {
	case VersionV1OSS:
		return createV1OSSPoint(measurement, tags, fields, timestamp)
	case VersionV2OSS:
		return createV2OSSPoint(measurement, tags, fields, timestamp), nil
	case VersionV3Core:
		return createV3CorePoint(measurement, tags, fields, timestamp), nil
	default:
		return nil, fmt.Errorf("no point constructor for InfluxDB version %q", version)
	}
}
