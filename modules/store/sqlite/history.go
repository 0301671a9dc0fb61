package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/pkg/message"
)

// HistoryStore implements memory.HistoryStore backed by SQLite.
type HistoryStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewHistoryStore wraps an already migrated database.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db, now: time.Now}
}

// Close closes the underlying database.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Ping verifies the database connection.
func (h *HistoryStore) Ping(ctx context.Context) error {
	return h.db.PingContext(ctx)
}

// Create registers a new conversation.
func (h *HistoryStore) Create(ctx context.Context, conv memory.Conversation) error {
	now := h.now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	res, err := h.db.ExecContext(ctx, `
		INSERT INTO conversations (id, student_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		conv.ID, conv.StudentID, conv.Title, conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return memory.ErrConversationExists
	}
	return nil
}

// Get returns the conversation metadata.
func (h *HistoryStore) Get(ctx context.Context, id string) (memory.Conversation, error) {
	var (
		conv             memory.Conversation
		created, updated int64
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT id, student_id, title, created_at, updated_at
		FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.StudentID, &conv.Title, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return memory.Conversation{}, memory.ErrConversationNotFound
		}
		return memory.Conversation{}, fmt.Errorf("sqlite: get conversation: %w", err)
	}
	conv.CreatedAt = fromNanos(created)
	conv.UpdatedAt = fromNanos(updated)
	return conv, nil
}

// Append adds messages to the end of a conversation in a single transaction.
func (h *HistoryStore) Append(ctx context.Context, conversationID string, msgs ...message.Message) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?",
		h.now().UTC().UnixNano(), conversationID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touch conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return memory.ErrConversationNotFound
	}

	for _, msg := range msgs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO messages (conversation_id, seq, id, role, content, created_at)
			VALUES (?, COALESCE((SELECT MAX(seq) FROM messages WHERE conversation_id = ?), 0) + 1,
			        ?, ?, ?, ?)`,
			conversationID, conversationID,
			msg.ID, string(msg.Role), msg.Content, msg.Timestamp.UTC().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("sqlite: append message: %w", err)
		}
	}

	return tx.Commit()
}

// Messages returns all messages of a conversation in chronological order.
func (h *HistoryStore) Messages(ctx context.Context, conversationID string) ([]message.Message, error) {
	if err := h.exists(ctx, conversationID); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []message.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: get messages rows: %w", err)
	}

	return msgs, nil
}

// Len returns the number of messages stored for a conversation.
func (h *HistoryStore) Len(ctx context.Context, conversationID string) (int, error) {
	if err := h.exists(ctx, conversationID); err != nil {
		return 0, err
	}

	var count int
	err := h.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE conversation_id = ?", conversationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count messages: %w", err)
	}
	return count, nil
}

// Delete removes a conversation and its messages.
func (h *HistoryStore) Delete(ctx context.Context, id string) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return memory.ErrConversationNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return fmt.Errorf("sqlite: delete messages: %w", err)
	}

	return tx.Commit()
}

// PurgeBefore removes every conversation last updated before cutoff.
func (h *HistoryStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin purge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	at := cutoff.UTC().UnixNano()
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM messages WHERE conversation_id IN (
			SELECT id FROM conversations WHERE updated_at < ?
		)`, at); err != nil {
		return 0, fmt.Errorf("sqlite: purge messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE updated_at < ?", at)
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge conversations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: purge rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit purge: %w", err)
	}
	return int(n), nil
}

func (h *HistoryStore) exists(ctx context.Context, id string) error {
	var one int
	err := h.db.QueryRowContext(ctx, "SELECT 1 FROM conversations WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return memory.ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: lookup conversation: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (message.Message, error) {
	var (
		msg     message.Message
		role    string
		created int64
	)
	if err := s.Scan(&msg.ID, &role, &msg.Content, &created); err != nil {
		return msg, fmt.Errorf("sqlite: scan message: %w", err)
	}
	msg.Role = message.Role(role)
	msg.Timestamp = fromNanos(created)
	return msg, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
