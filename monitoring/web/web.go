// Package web holds the pages of the monitoring server.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevEnv is the environment variable that makes GetAssets serve the pages
// from the source tree instead of the copy built into the binary.
const DevEnv = "ELASTIC_MONITOR_DEV"

//go:embed dist
var dist embed.FS

// GetAssets returns the pages of the monitor.
func GetAssets() http.FileSystem {
	if devMode() {
		return http.Dir(sourceDir())
	}

	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(sub)
}

func devMode() bool {
	dev, err := strconv.ParseBool(os.Getenv(DevEnv))
	return err == nil && dev
}

func sourceDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("cannot locate the monitor pages")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}
