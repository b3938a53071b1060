package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
)

var _ DataStore = &SQLiteStore{}

// SQLiteStore implements DataStore on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and initializes the
// schema if it doesn't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// initSchema creates the necessary tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		learning_preferences TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		input_type TEXT NOT NULL,
		input_content TEXT,
		agent_response TEXT,
		timestamp TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_student ON interactions(student_id);
	CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id);

	CREATE TABLE IF NOT EXISTS learning_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		subject TEXT NOT NULL,
		topic TEXT NOT NULL,
		completion_percentage REAL NOT NULL DEFAULT 0,
		performance_score REAL NOT NULL DEFAULT 0,
		last_accessed TIMESTAMP NOT NULL,
		UNIQUE(student_id, subject, topic)
	);
	CREATE INDEX IF NOT EXISTS idx_progress_student ON learning_progress(student_id);
	CREATE INDEX IF NOT EXISTS idx_progress_subject ON learning_progress(subject);

	CREATE TABLE IF NOT EXISTS curriculum_content (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT,
		subject TEXT NOT NULL,
		difficulty_level INTEGER NOT NULL,
		content_type TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_content_subject ON curriculum_content(subject);
	CREATE INDEX IF NOT EXISTS idx_content_difficulty ON curriculum_content(difficulty_level);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateStudent inserts a new student and sets its assigned ID.
func (s *SQLiteStore) CreateStudent(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO students (name, email, learning_preferences, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		student.Name, student.Email, student.LearningPreferences, student.CreatedAt, student.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get student id: %w", err)
	}
	student.ID = id
	return nil
}

// GetStudent retrieves a student by ID.
func (s *SQLiteStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, learning_preferences, created_at, updated_at FROM students WHERE id = ?`, id)
	return scanStudent(row)
}

// UpdateStudent persists changes to an existing student.
func (s *SQLiteStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET name = ?, email = ?, learning_preferences = ?, updated_at = ? WHERE id = ?`,
		student.Name, student.Email, student.LearningPreferences, student.UpdatedAt, student.ID)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStudent removes a student by ID.
func (s *SQLiteStore) DeleteStudent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindStudentByEmail finds a student by exact email address.
func (s *SQLiteStore) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, learning_preferences, created_at, updated_at FROM students WHERE email = ?`, email)
	return scanStudent(row)
}

// SearchStudentsByName finds students whose name contains the pattern,
// case-insensitively.
func (s *SQLiteStore) SearchStudentsByName(ctx context.Context, pattern string) ([]models.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, learning_preferences, created_at, updated_at FROM students
		 WHERE name LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY name`, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var st models.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.LearningPreferences, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// CountStudents returns the total number of students.
func (s *SQLiteStore) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count)
	return count, err
}

// CreateInteraction records a student interaction.
func (s *SQLiteStore) CreateInteraction(ctx context.Context, interaction *models.Interaction) error {
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (student_id, session_id, input_type, input_content, agent_response, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		interaction.StudentID, interaction.SessionID, interaction.InputType,
		interaction.InputContent, interaction.AgentResponse, interaction.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get interaction id: %w", err)
	}
	interaction.ID = id
	return nil
}

// ListInteractionsByStudent returns the most recent interactions for a
// student, newest first.
func (s *SQLiteStore) ListInteractionsByStudent(ctx context.Context, studentID int64, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, session_id, input_type, input_content, agent_response, timestamp
		 FROM interactions WHERE student_id = ? ORDER BY timestamp DESC LIMIT ?`, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()
	return scanInteractions(rows)
}

// ListInteractionsBySession returns all interactions in a session in
// chronological order.
func (s *SQLiteStore) ListInteractionsBySession(ctx context.Context, sessionID string) ([]models.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, session_id, input_type, input_content, agent_response, timestamp
		 FROM interactions WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session interactions: %w", err)
	}
	defer rows.Close()
	return scanInteractions(rows)
}

// ListMultimodalInteractions returns voice and image interactions. A zero
// studentID returns them for all students.
func (s *SQLiteStore) ListMultimodalInteractions(ctx context.Context, studentID int64) ([]models.Interaction, error) {
	query := `SELECT id, student_id, session_id, input_type, input_content, agent_response, timestamp
		 FROM interactions WHERE input_type IN ('voice', 'image')`
	args := []any{}
	if studentID > 0 {
		query += ` AND student_id = ?`
		args = append(args, studentID)
	}
	query += ` ORDER BY timestamp DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list multimodal interactions: %w", err)
	}
	defer rows.Close()
	return scanInteractions(rows)
}

// CountInteractions returns the total number of interactions.
func (s *SQLiteStore) CountInteractions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&count)
	return count, err
}

// UpsertProgress creates or updates a progress record keyed by
// (student, subject, topic).
func (s *SQLiteStore) UpsertProgress(ctx context.Context, progress *models.LearningProgress) error {
	if progress.LastAccessed.IsZero() {
		progress.LastAccessed = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO learning_progress (student_id, subject, topic, completion_percentage, performance_score, last_accessed)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(student_id, subject, topic) DO UPDATE SET
			completion_percentage = excluded.completion_percentage,
			performance_score = excluded.performance_score,
			last_accessed = excluded.last_accessed`,
		progress.StudentID, progress.Subject, progress.Topic,
		progress.CompletionPercentage, progress.PerformanceScore, progress.LastAccessed)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	if progress.ID == 0 {
		if id, err := res.LastInsertId(); err == nil {
			progress.ID = id
		}
	}
	return nil
}

// ListProgressByStudent returns all progress records for a student.
func (s *SQLiteStore) ListProgressByStudent(ctx context.Context, studentID int64) ([]models.LearningProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, subject, topic, completion_percentage, performance_score, last_accessed
		 FROM learning_progress WHERE student_id = ? ORDER BY subject, topic`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()
	return scanProgress(rows)
}

// ListProgressBySubject returns progress records for a subject. A zero
// studentID returns them for all students.
func (s *SQLiteStore) ListProgressBySubject(ctx context.Context, subject string, studentID int64) ([]models.LearningProgress, error) {
	query := `SELECT id, student_id, subject, topic, completion_percentage, performance_score, last_accessed
		 FROM learning_progress WHERE subject = ?`
	args := []any{subject}
	if studentID > 0 {
		query += ` AND student_id = ?`
		args = append(args, studentID)
	}
	query += ` ORDER BY topic`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subject progress: %w", err)
	}
	defer rows.Close()
	return scanProgress(rows)
}

// ListCompletedProgress returns fully completed topics for a student.
func (s *SQLiteStore) ListCompletedProgress(ctx context.Context, studentID int64) ([]models.LearningProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, subject, topic, completion_percentage, performance_score, last_accessed
		 FROM learning_progress WHERE student_id = ? AND completion_percentage >= 100 ORDER BY subject, topic`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed progress: %w", err)
	}
	defer rows.Close()
	return scanProgress(rows)
}

// CreateContent inserts a curriculum content row.
func (s *SQLiteStore) CreateContent(ctx context.Context, content *models.CurriculumContent) error {
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO curriculum_content (title, content, subject, difficulty_level, content_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		content.Title, content.Content, content.Subject, content.DifficultyLevel,
		content.ContentType, content.CreatedAt, content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get content id: %w", err)
	}
	content.ID = id
	return nil
}

// GetContent retrieves curriculum content by ID.
func (s *SQLiteStore) GetContent(ctx context.Context, id int64) (*models.CurriculumContent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content, subject, difficulty_level, content_type, created_at, updated_at
		 FROM curriculum_content WHERE id = ?`, id)

	var c models.CurriculumContent
	err := row.Scan(&c.ID, &c.Title, &c.Content, &c.Subject, &c.DifficultyLevel, &c.ContentType, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &c, nil
}

// ListContentBySubject returns content for a subject ordered by difficulty.
func (s *SQLiteStore) ListContentBySubject(ctx context.Context, subject string) ([]models.CurriculumContent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, subject, difficulty_level, content_type, created_at, updated_at
		 FROM curriculum_content WHERE subject = ? ORDER BY difficulty_level, title`, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()
	return scanContent(rows)
}

// ListContentByDifficulty returns content within a difficulty range.
func (s *SQLiteStore) ListContentByDifficulty(ctx context.Context, minLevel, maxLevel int) ([]models.CurriculumContent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, subject, difficulty_level, content_type, created_at, updated_at
		 FROM curriculum_content WHERE difficulty_level BETWEEN ? AND ? ORDER BY difficulty_level, title`,
		minLevel, maxLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to list content by difficulty: %w", err)
	}
	defer rows.Close()
	return scanContent(rows)
}

// ListAdvancedContent returns content above the advanced difficulty
// threshold, optionally filtered by subject.
func (s *SQLiteStore) ListAdvancedContent(ctx context.Context, subject string) ([]models.CurriculumContent, error) {
	query := `SELECT id, title, content, subject, difficulty_level, content_type, created_at, updated_at
		 FROM curriculum_content WHERE difficulty_level > ?`
	args := []any{models.AdvancedDifficultyThreshold}
	if subject != "" {
		query += ` AND subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY difficulty_level, title`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advanced content: %w", err)
	}
	defer rows.Close()
	return scanContent(rows)
}

func scanStudent(row *sql.Row) (*models.Student, error) {
	var st models.Student
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.LearningPreferences, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return &st, nil
}

func scanInteractions(rows *sql.Rows) ([]models.Interaction, error) {
	var interactions []models.Interaction
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(&in.ID, &in.StudentID, &in.SessionID, &in.InputType, &in.InputContent, &in.AgentResponse, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, in)
	}
	return interactions, rows.Err()
}

func scanProgress(rows *sql.Rows) ([]models.LearningProgress, error) {
	var records []models.LearningProgress
	for rows.Next() {
		var p models.LearningProgress
		if err := rows.Scan(&p.ID, &p.StudentID, &p.Subject, &p.Topic, &p.CompletionPercentage, &p.PerformanceScore, &p.LastAccessed); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}

func scanContent(rows *sql.Rows) ([]models.CurriculumContent, error) {
	var contents []models.CurriculumContent
	for rows.Next() {
		var c models.CurriculumContent
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &c.Subject, &c.DifficultyLevel, &c.ContentType, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}
