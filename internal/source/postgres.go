package source

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresLoader reads conversations stored as a JSON thread column and a
// JSON messages column.
type PostgresLoader struct {
	db    *sql.DB
	table string
}

// NewPostgresLoader creates a loader over table.
func NewPostgresLoader(db *sql.DB, table string) *PostgresLoader {
	return &PostgresLoader{db: db, table: table}
}

func (l *PostgresLoader) Name() string { return "postgres:" + l.table }

// DB returns the underlying pool, shared with the advisory refresh lock.
func (l *PostgresLoader) DB() *sql.DB { return l.db }

// Close closes the underlying database handle.
func (l *PostgresLoader) Close() error { return l.db.Close() }

// Load selects every row. The row's conversation_id column backs the item
// id when the thread JSON carries none. A row whose thread column fails to
// decode is passed through as its raw string so the assembler drops and
// logs it.
func (l *PostgresLoader) Load(ctx context.Context) ([]interface{}, error) {
	query := fmt.Sprintf(`SELECT conversation_id, thread, messages FROM %s`, pq.QuoteIdentifier(l.table))
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", l.table, err)
	}
	defer rows.Close()

	var items []interface{}
	for rows.Next() {
		var id sql.NullString
		var threadJSON, messagesJSON []byte
		if err := rows.Scan(&id, &threadJSON, &messagesJSON); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", l.table, err)
		}

		item := map[string]interface{}{}
		if id.Valid && id.String != "" {
			item["conversation_id"] = id.String
		}
		if thread, ok := decodeJSON(threadJSON); ok {
			item["thread"] = thread
		} else {
			item["thread"] = string(threadJSON)
		}
		if messages, ok := decodeJSON(messagesJSON); ok && messages != nil {
			item["messages"] = messages
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", l.table, err)
	}
	return items, nil
}

func decodeJSON(data []byte) (interface{}, bool) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}
