package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tidechat/answerd/internal/domain"
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

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS chatbots (
			chatbot_id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			api_key TEXT,
			corpus_names TEXT NOT NULL DEFAULT '[]',
			llm TEXT NOT NULL,
			max_tokens INTEGER NOT NULL DEFAULT 100,
			temperature REAL NOT NULL DEFAULT 0,
			echo INTEGER NOT NULL DEFAULT 0,
			encoder TEXT NOT NULL DEFAULT 'use4',
			similarity TEXT NOT NULL DEFAULT 'euclidean_distance',
			threshold REAL NOT NULL DEFAULT 25,
			reference_limit INTEGER NOT NULL DEFAULT 1,
			bm25_limit INTEGER NOT NULL DEFAULT 0,
			apply_reranking INTEGER NOT NULL DEFAULT 0,
			reranker TEXT NOT NULL DEFAULT 'minilm-l-6-v2',
			reranking_limit INTEGER NOT NULL DEFAULT 5,
			chunk_size INTEGER NOT NULL DEFAULT 1000,
			chunk_overlap INTEGER NOT NULL DEFAULT 100,
			system_prompt TEXT NOT NULL DEFAULT '',
			user_prompt TEXT NOT NULL DEFAULT '',
			smalltalk_prompt TEXT NOT NULL DEFAULT '',
			intent_prompt TEXT NOT NULL DEFAULT '',
			apply_intent_classification INTEGER NOT NULL DEFAULT 0,
			no_reference_answer TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chatbots_name ON chatbots(name)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT PRIMARY KEY,
			chatbot_id TEXT NOT NULL,
			contact_id TEXT,
			cookie TEXT,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (chatbot_id) REFERENCES chatbots(chatbot_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_chatbot ON conversations(chatbot_id, updated_at)`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			images TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS refs (
			reference_id TEXT PRIMARY KEY,
			turn_id TEXT NOT NULL,
			hyperlink TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (turn_id) REFERENCES turns(turn_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_turn ON refs(turn_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateChatbot inserts a chatbot record.
func (s *SQLiteStore) CreateChatbot(ctx context.Context, bot *domain.Chatbot) error {
	corpusJSON, err := json.Marshal(bot.CorpusNames)
	if err != nil {
		return fmt.Errorf("failed to marshal corpus names: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chatbots (
			chatbot_id, name, api_key, corpus_names, llm, max_tokens, temperature, echo,
			encoder, similarity, threshold, reference_limit, bm25_limit,
			apply_reranking, reranker, reranking_limit, chunk_size, chunk_overlap,
			system_prompt, user_prompt, smalltalk_prompt, intent_prompt,
			apply_intent_classification, no_reference_answer, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bot.ID, bot.Name, bot.APIKey, string(corpusJSON), bot.LLM, bot.MaxTokens, bot.Temperature, bot.Echo,
		bot.Encoder, bot.Similarity, bot.Threshold, bot.ReferenceLimit, bot.BM25Limit,
		bot.ApplyReranking, bot.Reranker, bot.RerankingLimit, bot.ChunkSize, bot.ChunkOverlap,
		bot.SystemPrompt, bot.UserPrompt, bot.SmalltalkPrompt, bot.IntentPrompt,
		bot.ApplyIntentClassification, bot.NoReferenceAnswer, bot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chatbot: %w", err)
	}
	return nil
}

// GetChatbotByName returns the chatbot with the given name, or nil if none
// exists.
func (s *SQLiteStore) GetChatbotByName(ctx context.Context, name string) (*domain.Chatbot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chatbot_id, name, api_key, corpus_names, llm, max_tokens, temperature, echo,
			encoder, similarity, threshold, reference_limit, bm25_limit,
			apply_reranking, reranker, reranking_limit, chunk_size, chunk_overlap,
			system_prompt, user_prompt, smalltalk_prompt, intent_prompt,
			apply_intent_classification, no_reference_answer, created_at
		FROM chatbots WHERE name = ?`, name)

	var bot domain.Chatbot
	var apiKey sql.NullString
	var corpusJSON string
	err := row.Scan(
		&bot.ID, &bot.Name, &apiKey, &corpusJSON, &bot.LLM, &bot.MaxTokens, &bot.Temperature, &bot.Echo,
		&bot.Encoder, &bot.Similarity, &bot.Threshold, &bot.ReferenceLimit, &bot.BM25Limit,
		&bot.ApplyReranking, &bot.Reranker, &bot.RerankingLimit, &bot.ChunkSize, &bot.ChunkOverlap,
		&bot.SystemPrompt, &bot.UserPrompt, &bot.SmalltalkPrompt, &bot.IntentPrompt,
		&bot.ApplyIntentClassification, &bot.NoReferenceAnswer, &bot.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}

	bot.APIKey = apiKey.String
	if err := json.Unmarshal([]byte(corpusJSON), &bot.CorpusNames); err != nil {
		return nil, fmt.Errorf("failed to unmarshal corpus names: %w", err)
	}
	return &bot, nil
}

// CreateConversation inserts a conversation record.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (conversation_id, chatbot_id, contact_id, cookie, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		conv.ConversationID, conv.ChatbotID, nullable(conv.ContactID), nullable(conv.Cookie),
		conv.Name, conv.CreatedAt, conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation returns the conversation, scoped to the owning chatbot so a
// conversation id from another chatbot reads as not found.
func (s *SQLiteStore) GetConversation(ctx context.Context, conversationID, chatbotID string) (*domain.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT conversation_id, chatbot_id, contact_id, cookie, name, created_at, updated_at
		FROM conversations WHERE conversation_id = ? AND chatbot_id = ?`, conversationID, chatbotID)

	var conv domain.Conversation
	var contactID, cookie sql.NullString
	err := row.Scan(&conv.ConversationID, &conv.ChatbotID, &contactID, &cookie, &conv.Name, &conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	conv.ContactID = contactID.String
	conv.Cookie = cookie.String
	return &conv, nil
}

// TouchConversation bumps the conversation's last-activity timestamp.
func (s *SQLiteStore) TouchConversation(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE conversation_id = ?`,
		time.Now(), conversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

// CreateTurn appends a turn to its conversation.
func (s *SQLiteStore) CreateTurn(ctx context.Context, turn *domain.Turn) error {
	images := turn.Images
	if images == nil {
		images = []domain.Image{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turns (turn_id, conversation_id, question, answer, images, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		turn.TurnID, turn.ConversationID, turn.Question, turn.Answer, string(imagesJSON), turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create turn: %w", err)
	}
	return nil
}

// ListTurns returns the turns of a conversation, newest first by default or
// oldest first when order is chronological.
func (s *SQLiteStore) ListTurns(ctx context.Context, conversationID string, order domain.TurnOrder) ([]domain.Turn, error) {
	dir := "DESC"
	if order == domain.OrderChronological {
		dir = "ASC"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT turn_id, conversation_id, question, answer, images, created_at
		FROM turns WHERE conversation_id = ? ORDER BY created_at `+dir+`, turn_id `+dir,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var imagesJSON string
		if err := rows.Scan(&turn.TurnID, &turn.ConversationID, &turn.Question, &turn.Answer, &imagesJSON, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if err := json.Unmarshal([]byte(imagesJSON), &turn.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}
	return turns, nil
}

// CreateReference records the URL provenance of one evidence chunk.
func (s *SQLiteStore) CreateReference(ctx context.Context, ref *domain.Reference) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refs (reference_id, turn_id, hyperlink, created_at)
		VALUES (?, ?, ?, ?)`,
		ref.ReferenceID, ref.TurnID, ref.Hyperlink, ref.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reference: %w", err)
	}
	return nil
}

// ListReferences returns the references recorded for a turn.
func (s *SQLiteStore) ListReferences(ctx context.Context, turnID string) ([]domain.Reference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference_id, turn_id, hyperlink, created_at
		FROM refs WHERE turn_id = ? ORDER BY created_at, reference_id`, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer rows.Close()

	var refs []domain.Reference
	for rows.Next() {
		var ref domain.Reference
		if err := rows.Scan(&ref.ReferenceID, &ref.TurnID, &ref.Hyperlink, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}
	return refs, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
