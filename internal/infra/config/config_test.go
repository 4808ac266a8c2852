package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MESSAGING_GRPC_ADDR", "")
	cfg, err := Load("testdata/missing.env")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage != StorageMemory || cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTSecret == "" || cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("jwt defaults: %q %v", cfg.JWTSecret, cfg.JWTTTL)
	}
	if len(cfg.RetryBackoff) != 3 || cfg.RetryBackoff[2] != 30*time.Second {
		t.Fatalf("backoff: %v", cfg.RetryBackoff)
	}
	if cfg.S3Enabled {
		t.Fatal("s3 enabled without endpoint")
	}
	if cfg.MessagingAddr != "" || cfg.MessagingCallTimeout != 5*time.Second {
		t.Fatalf("messaging defaults: %q %v", cfg.MessagingAddr, cfg.MessagingCallTimeout)
	}
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("RETRY_BACKOFF", "2s,10s")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_USE_SSL", "yes")
	cfg, err := Load("testdata/missing.env")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "b:9092" {
		t.Fatalf("brokers: %v", cfg.KafkaBrokers)
	}
	if len(cfg.RetryBackoff) != 2 || !cfg.S3Enabled || !cfg.S3UseSSL || cfg.S3PublicEndpoint != "http://minio:9000" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":      {"JWT_TTL", "soon"},
		"bad storage":       {"STORAGE", "postgres"},
		"mongo without uri": {"STORAGE", "mongo"},
		"bad bool":          {"S3_USE_SSL", "maybe"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MONGO_URI", "")
			t.Setenv(kv[0], kv[1])
			if _, err := Load("testdata/missing.env"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRequiresSecretOutsideDev(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load("testdata/missing.env"); err == nil {
		t.Fatal("expected missing JWT_SECRET error")
	}
}
