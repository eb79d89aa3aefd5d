package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresConfig 数据库连接配置
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// Postgres 基于 PostgreSQL 的键值存储
type Postgres struct {
	db *sql.DB
}

// Ensure Postgres implements Store
var _ Store = (*Postgres)(nil)

// NewPostgres 建立数据库连接并初始化表结构
func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{db: db}
	if err := p.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

// Close 关闭数据库连接
func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) initSchema() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Get implements Store
func (p *Postgres) Get(key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(`SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query preference failed: %w", err)
	}
	return value, nil
}

// Set implements Store
func (p *Postgres) Set(key string, value []byte) error {
	_, err := p.db.Exec(`INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("save preference failed: %w", err)
	}
	return nil
}
