package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/gocql/gocql"

	"campusconnect/internal/infra/config"
)

var keyspacePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NewSession ensures the schema exists and returns a session bound to the
// messaging keyspace.
func NewSession(ctx context.Context, cfg config.MessagingConfig, logger *slog.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(cfg.ScyllaKeyspace) {
		return nil, fmt.Errorf("invalid keyspace name: %q", cfg.ScyllaKeyspace)
	}

	baseSession, err := newCluster(cfg, "").CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to scylla: %w", err)
	}
	defer baseSession.Close()
	if err := ensureKeyspace(ctx, baseSession, cfg); err != nil {
		return nil, err
	}

	session, err := newCluster(cfg, cfg.ScyllaKeyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", cfg.ScyllaKeyspace, err)
	}
	if err := ensureTables(ctx, session); err != nil {
		session.Close()
		return nil, err
	}
	if logger != nil {
		logger.Info("scylla connected", "hosts", cfg.ScyllaHosts, "keyspace", cfg.ScyllaKeyspace)
	}
	return session, nil
}

func newCluster(cfg config.MessagingConfig, keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Timeout = cfg.ScyllaTimeout
	cluster.Consistency = cfg.ScyllaConsistency
	cluster.Keyspace = keyspace
	if cfg.ScyllaUsername != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUsername,
			Password: cfg.ScyllaPassword,
		}
		// avoid long stalls on auth/connect
		cluster.ConnectTimeout = cfg.ScyllaTimeout
	}
	return cluster
}

func ensureKeyspace(ctx context.Context, session *gocql.Session, cfg config.MessagingConfig) error {
	cql := fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		cfg.ScyllaKeyspace, cfg.ReplicationFactor,
	)
	if err := session.Query(cql).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}
	return nil
}

func ensureTables(ctx context.Context, session *gocql.Session) error {
	const messagesByRoom = `
CREATE TABLE IF NOT EXISTS messages_by_room (
	room_id text,
	message_id timeuuid,
	sender_id text,
	receiver_id text,
	text text,
	read boolean,
	created_at timestamp,
	PRIMARY KEY (room_id, message_id)
) WITH CLUSTERING ORDER BY (message_id ASC);`
	if err := session.Query(messagesByRoom).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create messages_by_room table: %w", err)
	}

	const roomsByUser = `
CREATE TABLE IF NOT EXISTS rooms_by_user (
	user_id text,
	room_id text,
	last_message_id timeuuid,
	last_sender_id text,
	last_receiver_id text,
	last_text text,
	last_read boolean,
	last_message_at timestamp,
	PRIMARY KEY (user_id, room_id)
);`
	if err := session.Query(roomsByUser).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create rooms_by_user table: %w", err)
	}
	return nil
}
