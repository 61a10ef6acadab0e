package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"tgsentry/internal/migrations"
	"tgsentry/internal/models"
	"tgsentry/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is the durable message store keyed by (chat_id, msg_id).
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.GetInitialSchema()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveMessage inserts or fully replaces the record for the message key.
func (d *Database) SaveMessage(ctx context.Context, msg *models.TrackedMessage) error {
	encryptedChatID, err := d.encryptor.EncryptForLookupIfEnabled(msg.ChatID)
	if err != nil {
		return fmt.Errorf("failed to encrypt chat ID: %w", err)
	}

	encryptedName, err := d.encryptor.EncryptIfEnabled(msg.SenderName)
	if err != nil {
		return fmt.Errorf("failed to encrypt sender name: %w", err)
	}

	encryptedText, err := d.encryptor.EncryptIfEnabled(msg.Text)
	if err != nil {
		return fmt.Errorf("failed to encrypt text: %w", err)
	}

	var encryptedUsername *string
	if msg.SenderUsername != nil {
		encrypted, err := d.encryptor.EncryptIfEnabled(*msg.SenderUsername)
		if err != nil {
			return fmt.Errorf("failed to encrypt username: %w", err)
		}
		encryptedUsername = &encrypted
	}

	var encryptedFiles *string
	if len(msg.AttachmentPaths) > 0 {
		encrypted, err := d.encryptor.EncryptIfEnabled(models.JoinAttachmentPaths(msg.AttachmentPaths))
		if err != nil {
			return fmt.Errorf("failed to encrypt attachment paths: %w", err)
		}
		encryptedFiles = &encrypted
	}

	query := `
		INSERT OR REPLACE INTO messages (
			chat_id, msg_id, sender_id, sender_username,
			sender_name, text, files, is_temporary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	return retryableWrite(ctx, "save message", func() error {
		_, err := d.db.ExecContext(ctx, query,
			encryptedChatID,
			msg.MessageID,
			msg.SenderID,
			encryptedUsername,
			encryptedName,
			encryptedText,
			encryptedFiles,
			msg.IsTemporary,
		)
		return err
	})
}

// GetMessage returns the stored record, or nil when the key is untracked.
func (d *Database) GetMessage(ctx context.Context, chatID string, messageID int64) (*models.TrackedMessage, error) {
	encryptedChatID, err := d.encryptor.EncryptForLookupIfEnabled(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt chat ID: %w", err)
	}

	query := `
		SELECT chat_id, msg_id, sender_id, sender_username,
		       sender_name, text, files, is_temporary,
		       created_at, updated_at
		FROM messages
		WHERE chat_id = ? AND msg_id = ?
	`

	var storedChatID, encryptedName, encryptedText string
	var encryptedUsername, encryptedFiles *string
	msg := &models.TrackedMessage{}

	err = d.db.QueryRowContext(ctx, query, encryptedChatID, messageID).Scan(
		&storedChatID,
		&msg.MessageID,
		&msg.SenderID,
		&encryptedUsername,
		&encryptedName,
		&encryptedText,
		&encryptedFiles,
		&msg.IsTemporary,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	msg.ChatID = chatID

	msg.SenderName, err = d.encryptor.DecryptIfEnabled(encryptedName)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt sender name: %w", err)
	}

	msg.Text, err = d.encryptor.DecryptIfEnabled(encryptedText)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt text: %w", err)
	}

	if encryptedUsername != nil {
		username, err := d.encryptor.DecryptIfEnabled(*encryptedUsername)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt username: %w", err)
		}
		msg.SenderUsername = &username
	}

	if encryptedFiles != nil {
		files, err := d.encryptor.DecryptIfEnabled(*encryptedFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt attachment paths: %w", err)
		}
		msg.AttachmentPaths = models.SplitAttachmentPaths(files)
	}

	return msg, nil
}

// UpdateMessageText mutates only the text column of an existing record.
func (d *Database) UpdateMessageText(ctx context.Context, chatID string, messageID int64, text string) error {
	encryptedChatID, err := d.encryptor.EncryptForLookupIfEnabled(chatID)
	if err != nil {
		return fmt.Errorf("failed to encrypt chat ID: %w", err)
	}

	encryptedText, err := d.encryptor.EncryptIfEnabled(text)
	if err != nil {
		return fmt.Errorf("failed to encrypt text: %w", err)
	}

	query := `UPDATE messages SET text = ? WHERE chat_id = ? AND msg_id = ?`

	return retryableWrite(ctx, "update message text", func() error {
		_, err := d.db.ExecContext(ctx, query, encryptedText, encryptedChatID, messageID)
		return err
	})
}

// UpdateMessageSenderName mutates only the sender_name column.
func (d *Database) UpdateMessageSenderName(ctx context.Context, chatID string, messageID int64, name string) error {
	encryptedChatID, err := d.encryptor.EncryptForLookupIfEnabled(chatID)
	if err != nil {
		return fmt.Errorf("failed to encrypt chat ID: %w", err)
	}

	encryptedName, err := d.encryptor.EncryptIfEnabled(name)
	if err != nil {
		return fmt.Errorf("failed to encrypt sender name: %w", err)
	}

	query := `UPDATE messages SET sender_name = ? WHERE chat_id = ? AND msg_id = ?`

	return retryableWrite(ctx, "update sender name", func() error {
		_, err := d.db.ExecContext(ctx, query, encryptedName, encryptedChatID, messageID)
		return err
	})
}

// DeleteMessage removes the record. Deleting an absent key is not an error.
func (d *Database) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	encryptedChatID, err := d.encryptor.EncryptForLookupIfEnabled(chatID)
	if err != nil {
		return fmt.Errorf("failed to encrypt chat ID: %w", err)
	}

	query := `DELETE FROM messages WHERE chat_id = ? AND msg_id = ?`

	return retryableWrite(ctx, "delete message", func() error {
		_, err := d.db.ExecContext(ctx, query, encryptedChatID, messageID)
		return err
	})
}

// GetUpdateOffset returns the last fully processed update ID, 0 when the
// store has never seen an update.
func (d *Database) GetUpdateOffset(ctx context.Context) (int64, error) {
	var offset int64
	err := d.db.QueryRowContext(ctx, `SELECT update_id FROM update_offset WHERE id = 1`).Scan(&offset)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get update offset: %w", err)
	}
	return offset, nil
}

// SetUpdateOffset durably records the last fully processed update ID.
func (d *Database) SetUpdateOffset(ctx context.Context, offset int64) error {
	query := `
		INSERT INTO update_offset (id, update_id) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET update_id = excluded.update_id, updated_at = CURRENT_TIMESTAMP
	`
	return retryableWrite(ctx, "set update offset", func() error {
		_, err := d.db.ExecContext(ctx, query, offset)
		return err
	})
}

// CleanupOldRecords drops records whose conversation never produced a
// delete event within the retention window. Retention measures last
// activity, so a record kept alive by edits is not pruned at creation age.
func (d *Database) CleanupOldRecords(retentionDays int) error {
	query := `
		DELETE FROM messages
		WHERE updated_at < datetime('now', '-' || ? || ' days')
	`

	_, err := d.db.Exec(query, retentionDays)
	if err != nil {
		return fmt.Errorf("failed to cleanup old records: %w", err)
	}

	return nil
}
