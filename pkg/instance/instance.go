package instance

import "os"

const defaultID = "api-0"

// GetID identifies this process in logs. CATALOG_INSTANCE_ID wins, then the
// platform dyno name, then the hostname.
func GetID() string {
	for _, key := range []string{"CATALOG_INSTANCE_ID", "DYNO"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
