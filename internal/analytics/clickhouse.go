// Package analytics ships applied draft actions to ClickHouse and reads
// aggregate leader statistics back.
package analytics

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/logger"
	"go.uber.org/zap"
)

const createActionsTable = `
	CREATE TABLE IF NOT EXISTS draft_actions (
		id          UUID,
		lobby_id    UUID,
		family      LowCardinality(String),
		phase_type  LowCardinality(String),
		phase_index UInt16,
		team        UInt8,
		entity_id   String,
		auto        Bool,
		acted_at    DateTime64(3)
	) ENGINE = MergeTree
	ORDER BY (acted_at, lobby_id)
`

// LeaderStat is how often a leader was picked and banned across all lobbies.
type LeaderStat struct {
	LeaderID string `json:"leaderId"`
	Picks    uint64 `json:"picks"`
	Bans     uint64 `json:"bans"`
}

type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseRecorder appends draft actions to a MergeTree table.
type ClickHouseRecorder struct {
	conn driver.Conn
	log  *zap.Logger
}

// NewClickHouseRecorder connects, pings and makes sure the table exists.
func NewClickHouseRecorder(ctx context.Context, opts Options) (*ClickHouseRecorder, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	r := &ClickHouseRecorder{conn: conn, log: logger.Named("analytics")}
	if err := r.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return r, nil
}

func (r *ClickHouseRecorder) EnsureSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, createActionsTable); err != nil {
		return fmt.Errorf("failed to create draft_actions table: %w", err)
	}
	return nil
}

func (r *ClickHouseRecorder) RecordAction(ctx context.Context, action *domain.DraftAction) error {
	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO draft_actions")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	err = batch.Append(
		action.ID,
		action.LobbyID,
		string(action.Family),
		string(action.Phase.Type),
		uint16(action.Phase.Index),
		uint8(action.Team),
		action.EntityID,
		action.Auto,
		action.ActedAt,
	)
	if err != nil {
		batch.Abort()
		return fmt.Errorf("failed to append action: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}
	r.log.Debug("Recorded draft action",
		zap.String("lobby_id", action.LobbyID.String()),
		zap.String("phase", action.Phase.String()),
		zap.String("entity_id", action.EntityID),
	)
	return nil
}

// LeaderStats returns pick and ban counts per leader, most picked first. The
// timeout placeholder is left out.
func (r *ClickHouseRecorder) LeaderStats(ctx context.Context) ([]LeaderStat, error) {
	query := `
		SELECT
			entity_id,
			countIf(phase_type = 'PICK') AS picks,
			countIf(phase_type = 'BAN')  AS bans
		FROM draft_actions
		WHERE family = ? AND entity_id != ?
		GROUP BY entity_id
		ORDER BY picks DESC, bans DESC, entity_id ASC
	`

	rows, err := r.conn.Query(ctx, query, string(domain.LobbyStatusLeaderSelection), domain.TimeoutLeaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]LeaderStat, 0)
	for rows.Next() {
		var s LeaderStat
		if err := rows.Scan(&s.LeaderID, &s.Picks, &s.Bans); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *ClickHouseRecorder) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
