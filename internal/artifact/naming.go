package artifact

import (
	"strings"
	"time"

	"github.com/JakeFAU/economic-index-etl/internal/series"
)

// workAreaMarker identifies staging buckets that keep a single, overwritten snapshot.
const workAreaMarker = "work-area"

// runTimestampLayout is embedded in archival object names.
const runTimestampLayout = "20060102150405"

// IsWorkArea reports whether the bucket follows the working-area naming convention.
func IsWorkArea(bucket string) bool {
	return strings.Contains(bucket, workAreaMarker)
}

// ObjectKey names the snapshot written for a series publish.
//
//	working area: <path>/<Series>.csv
//	archival:     <path>/<Series>/<Series>_Ref<YYYYMM><YYYYMMDDHHMMSS>.csv
func ObjectKey(bucket, path, seriesName string, period series.Period, runAt time.Time) string {
	if IsWorkArea(bucket) {
		return join(path, seriesName+".csv")
	}
	name := seriesName + "_Ref" + period.Compact() + runAt.UTC().Format(runTimestampLayout) + ".csv"
	return join(path, seriesName, name)
}

// Prefix is the key prefix whose presence means the destination was already initialized
// for the series.
func Prefix(bucket, path, seriesName string) string {
	if IsWorkArea(bucket) {
		return join(path, seriesName+".csv")
	}
	return join(path, seriesName) + "/"
}

// Target identifies a (destination, series) pair in the state store.
func Target(bucket, path, seriesName string) string {
	return join(bucket, path, seriesName) + "/"
}

func join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
