package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/assistant/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := store.seedAgents(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed agents: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			agent_name TEXT NOT NULL,
			agent_id TEXT,
			default_agent INTEGER NOT NULL DEFAULT 0,
			port INTEGER NOT NULL,
			path TEXT NOT NULL,
			endpoints TEXT,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_services_status_port ON services(status, port)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			system_prompt TEXT NOT NULL,
			tools TEXT,
			is_default INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_agents_name ON agents(name)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Service binding columns arrived after the first agents schema.
	if err := s.ensureColumn("agents", "service_id", "ALTER TABLE agents ADD COLUMN service_id TEXT"); err != nil {
		return err
	}
	if err := s.ensureColumn("agents", "service_status", "ALTER TABLE agents ADD COLUMN service_status TEXT NOT NULL DEFAULT 'none'"); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

func (s *SQLiteStore) seedAgents() error {
	ctx := context.Background()
	for _, a := range DefaultAgents() {
		agent := a
		existing, err := s.GetAgent(ctx, agent.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.CreateAgent(ctx, &agent); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const serviceColumns = `id, name, agent_name, agent_id, default_agent, port, path, endpoints, status, created_at, updated_at`

// CreateService inserts a service record.
func (s *SQLiteStore) CreateService(ctx context.Context, record *domain.ServiceRecord) error {
	endpoints, err := json.Marshal(record.Endpoints)
	if err != nil {
		return fmt.Errorf("failed to marshal endpoints: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO services (`+serviceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Name, record.AgentName, nullString(record.AgentID), record.DefaultAgent,
		record.Port, record.Path, string(endpoints), record.Status, record.CreatedAt, record.UpdatedAt)
	return err
}

// GetService retrieves a service by id or name, including removed ones.
func (s *SQLiteStore) GetService(ctx context.Context, idOrName string) (*domain.ServiceRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ? OR name = ? LIMIT 1`,
		idOrName, idOrName)
	record, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListServices returns every service that has not been removed.
func (s *SQLiteStore) ListServices(ctx context.Context) ([]domain.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE status != ? ORDER BY created_at ASC, name ASC`,
		domain.ServiceStatusRemoved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ServiceRecord
	for rows.Next() {
		record, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// UsedPorts returns the ports held by services that have not been removed.
func (s *SQLiteStore) UsedPorts(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT port FROM services WHERE status != ?`, domain.ServiceStatusRemoved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ports := make(map[int]bool)
	for rows.Next() {
		var port int
		if err := rows.Scan(&port); err != nil {
			return nil, err
		}
		ports[port] = true
	}
	return ports, rows.Err()
}

// UpdateServiceStatus sets the status of a service.
func (s *SQLiteStore) UpdateServiceStatus(ctx context.Context, id string, status domain.ServiceStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE services SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*domain.ServiceRecord, error) {
	var record domain.ServiceRecord
	var agentID, endpoints sql.NullString
	if err := row.Scan(&record.ID, &record.Name, &record.AgentName, &agentID, &record.DefaultAgent,
		&record.Port, &record.Path, &endpoints, &record.Status, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return nil, err
	}
	if agentID.Valid {
		record.AgentID = agentID.String
	}
	if endpoints.Valid && endpoints.String != "" {
		if err := json.Unmarshal([]byte(endpoints.String), &record.Endpoints); err != nil {
			return nil, fmt.Errorf("failed to decode endpoints of %s: %w", record.ID, err)
		}
	}
	return &record, nil
}

const agentColumns = `id, name, type, system_prompt, tools, is_default, service_id, service_status, created_at, updated_at`

// CreateAgent inserts an agent. A duplicate name is a validation error.
func (s *SQLiteStore) CreateAgent(ctx context.Context, agent *domain.Agent) error {
	tools, err := json.Marshal(agent.Tools)
	if err != nil {
		return fmt.Errorf("failed to marshal tools: %w", err)
	}
	now := time.Now()
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	if agent.UpdatedAt.IsZero() {
		agent.UpdatedAt = now
	}
	if agent.ServiceStatus == "" {
		agent.ServiceStatus = domain.AgentServiceNone
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agents (`+agentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agent.ID, agent.Name, agent.Type, agent.SystemPrompt, string(tools), agent.IsDefault,
		nullString(agent.ServiceID), agent.ServiceStatus, agent.CreatedAt, agent.UpdatedAt)
	return uniqueNameError(err, agent.Name)
}

// GetAgent retrieves an agent by ID.
func (s *SQLiteStore) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id)
	agent, err := scanAgent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// ListAgents returns the default agents first, then the rest by creation time.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+agentColumns+` FROM agents ORDER BY is_default DESC, created_at ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// UpdateAgent replaces the editable fields of an agent.
func (s *SQLiteStore) UpdateAgent(ctx context.Context, agent *domain.Agent) (bool, error) {
	tools, err := json.Marshal(agent.Tools)
	if err != nil {
		return false, fmt.Errorf("failed to marshal tools: %w", err)
	}
	agent.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET name = ?, type = ?, system_prompt = ?, tools = ?, updated_at = ? WHERE id = ?`,
		agent.Name, agent.Type, agent.SystemPrompt, string(tools), agent.UpdatedAt, agent.ID)
	if err != nil {
		return false, uniqueNameError(err, agent.Name)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateAgentService records the service binding of an agent.
func (s *SQLiteStore) UpdateAgentService(ctx context.Context, id, serviceID string, status domain.AgentServiceStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE agents SET service_id = ?, service_status = ?, updated_at = ? WHERE id = ?`,
		nullString(serviceID), status, time.Now(), id)
	return err
}

// DeleteAgent deletes an agent.
func (s *SQLiteStore) DeleteAgent(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanAgent(row rowScanner) (*domain.Agent, error) {
	var agent domain.Agent
	var tools, serviceID sql.NullString
	if err := row.Scan(&agent.ID, &agent.Name, &agent.Type, &agent.SystemPrompt, &tools, &agent.IsDefault,
		&serviceID, &agent.ServiceStatus, &agent.CreatedAt, &agent.UpdatedAt); err != nil {
		return nil, err
	}
	if serviceID.Valid {
		agent.ServiceID = serviceID.String
	}
	agent.Tools = []domain.ToolSpec{}
	if tools.Valid && tools.String != "" && tools.String != "null" {
		if err := json.Unmarshal([]byte(tools.String), &agent.Tools); err != nil {
			return nil, fmt.Errorf("failed to decode tools of %s: %w", agent.ID, err)
		}
	}
	return &agent, nil
}

func uniqueNameError(err error, name string) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: agents.name") {
		return domain.Validationf("agent name %q already exists", name)
	}
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
