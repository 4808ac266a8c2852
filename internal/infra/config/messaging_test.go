package config

import (
	"testing"
	"time"

	"github.com/gocql/gocql"
)

func TestLoadMessagingDefaults(t *testing.T) {
	t.Setenv("GRPC_ADDR", "")
	t.Setenv("SCYLLA_HOSTS", "")
	t.Setenv("SCYLLA_CONSISTENCY", "")
	t.Setenv("SCYLLA_REPLICATION_FACTOR", "-2")
	cfg, err := LoadMessaging("testdata/missing.env")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.GRPCAddr != ":9000" || len(cfg.ScyllaHosts) != 1 || cfg.ScyllaHosts[0] != "localhost" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.ScyllaConsistency != gocql.Quorum || cfg.ScyllaTimeout != 5*time.Second || cfg.ReplicationFactor != 1 {
		t.Fatalf("scylla defaults: %+v", cfg)
	}
}

func TestLoadMessagingParsesConsistency(t *testing.T) {
	t.Setenv("SCYLLA_HOSTS", "s1, s2,")
	t.Setenv("SCYLLA_CONSISTENCY", "LOCAL_QUORUM")
	cfg, err := LoadMessaging("testdata/missing.env")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.ScyllaHosts) != 2 || cfg.ScyllaConsistency != gocql.LocalQuorum {
		t.Fatalf("parsed: %+v", cfg)
	}

	t.Setenv("SCYLLA_CONSISTENCY", "eventually")
	if _, err := LoadMessaging("testdata/missing.env"); err == nil {
		t.Fatal("expected error for unknown consistency")
	}
}
