package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-w", ":8081", "-d", "db", "-t", "token", "-n", "3",
			"-s", "s3", "-i", "pics", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-m", "yolov8n", "-x", "http://detector", "-v", "50", "-r", "12.5", "-l", "debug",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrGRPC:   "127.0.0.1:9090",
				EndpointAddrHTTP:   ":8081",
				DatabaseDSN:        "db",
				TelegramToken:      "token",
				Workers:            3,
				BlobBackend:        "s3",
				ImagesDir:          "pics",
				S3RootUser:         "user",
				S3RootPassword:     "password",
				S3Bucket:           "bucket",
				S3Region:           "us-west-1",
				S3BaseEndpoint:     "http://endpoint",
				Model:              "yolov8n",
				DetectorURL:        "http://detector",
				MinVolume:          50,
				MaxNegativePercent: 12.5,
				LogLevel:           "debug",
			}},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"}},
		{name: "bad int", args: []string{"cmd", "-n", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
