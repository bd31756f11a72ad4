package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type MinioConfig struct {
	URL        string
	BUCKET     string
	ACCESS_KEY string
	SECRET_KEY string
	USE_SSL    bool
}

type NatsConfig struct {
	URL string
}

type GatewayConfig struct {
	ADDR                   string
	ALLOWED_ORIGINS        []string
	MODELS                 []string
	FAST_MODELS            []string
	LIST_COUNT             int
	ARTIFACT_SUFFIX        string
	PRESIGN_TTL_SECONDS    int
	LIST_CACHE_TTL_SECONDS int
}

type WatcherConfig struct {
	API_BASE         string
	INTERVAL_SECONDS int
	JOBS_FILE        string
	JOBS_CAP         int
}

type Config struct {
	SERVICE_NAME string
	TRACE_URL    string
}

func env(key string) string {
	v := os.Getenv(key)
	return v
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func convertStringToInt(s string, key string) (int, error) {
	sInt, err := strconv.Atoi(s)
	if err != nil {
		return -1, fmt.Errorf("error initializing config with key: %s, err: %v", key, err)
	}
	return sInt, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GetMinioConfig() (*MinioConfig, error) {
	url := env("MINIO_ENDPOINT")
	if url == "" {
		return nil, fmt.Errorf("KEY: MINIO_ENDPOINT is empty")
	}

	bucket := env("MINIO_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("KEY: MINIO_BUCKET is empty")
	}

	ak := env("MINIO_ACCESS_KEY")
	if ak == "" {
		return nil, fmt.Errorf("KEY: MINIO_ACCESS_KEY is empty")
	}

	sk := env("MINIO_SECRET_KEY")
	if sk == "" {
		return nil, fmt.Errorf("KEY: MINIO_SECRET_KEY is empty")
	}

	ssl := envDefault("MINIO_USE_SSL", "false")
	if ssl != "true" && ssl != "false" {
		return nil, fmt.Errorf("KEY: MINIO_USE_SSL is invalid")
	}

	return &MinioConfig{
		URL:        url,
		BUCKET:     bucket,
		ACCESS_KEY: ak,
		SECRET_KEY: sk,
		USE_SSL:    ssl == "true",
	}, nil
}

func GetNatsConfig() (*NatsConfig, error) {
	url := env("JETSTREAM_URL")
	if url == "" {
		return nil, fmt.Errorf("KEY: JETSTREAM_URL is empty")
	}
	return &NatsConfig{URL: url}, nil
}

func GetGatewayConfig() (*GatewayConfig, error) {
	lc, err := convertStringToInt(envDefault("GATEWAY_LIST_COUNT", "5"), "GATEWAY_LIST_COUNT")
	if err != nil {
		return nil, err
	}
	pt, err := convertStringToInt(envDefault("GATEWAY_PRESIGN_TTL_SECONDS", "3600"), "GATEWAY_PRESIGN_TTL_SECONDS")
	if err != nil {
		return nil, err
	}
	ct, err := convertStringToInt(envDefault("GATEWAY_LIST_CACHE_TTL_SECONDS", "5"), "GATEWAY_LIST_CACHE_TTL_SECONDS")
	if err != nil {
		return nil, err
	}

	models := splitList(envDefault("GATEWAY_MODELS", "flux,hidream,omnigen,sd3.5"))
	if len(models) == 0 {
		return nil, fmt.Errorf("KEY: GATEWAY_MODELS is empty")
	}

	return &GatewayConfig{
		ADDR:                   envDefault("GATEWAY_ADDR", ":8080"),
		ALLOWED_ORIGINS:        splitList(env("GATEWAY_ALLOWED_ORIGINS")),
		MODELS:                 models,
		FAST_MODELS:            splitList(envDefault("GATEWAY_FAST_MODELS", "flux")),
		LIST_COUNT:             lc,
		ARTIFACT_SUFFIX:        envDefault("GATEWAY_ARTIFACT_SUFFIX", ".png"),
		PRESIGN_TTL_SECONDS:    pt,
		LIST_CACHE_TTL_SECONDS: ct,
	}, nil
}

func GetWatcherConfig() (*WatcherConfig, error) {
	base := env("WATCHER_API_BASE")
	if base == "" {
		return nil, fmt.Errorf("KEY: WATCHER_API_BASE is empty")
	}

	iv, err := convertStringToInt(envDefault("WATCHER_INTERVAL_SECONDS", "30"), "WATCHER_INTERVAL_SECONDS")
	if err != nil {
		return nil, err
	}
	jc, err := convertStringToInt(envDefault("WATCHER_JOBS_CAP", "10"), "WATCHER_JOBS_CAP")
	if err != nil {
		return nil, err
	}

	jf := env("WATCHER_JOBS_FILE")
	if jf == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("KEY: WATCHER_JOBS_FILE is empty and no home dir: %v", err)
		}
		jf = home + "/.imageforge_jobs.json"
	}

	return &WatcherConfig{
		API_BASE:         strings.TrimRight(base, "/"),
		INTERVAL_SECONDS: iv,
		JOBS_FILE:        jf,
		JOBS_CAP:         jc,
	}, nil
}

func GetConfig() (*Config, error) {
	sn := env("SERVICE_NAME")
	if sn == "" {
		return nil, fmt.Errorf("KEY: SERVICE_NAME is empty")
	}
	return &Config{
		SERVICE_NAME: sn,
		TRACE_URL:    env("TRACE_URL"),
	}, nil
}
