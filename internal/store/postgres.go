package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/VarunStarz/sahayak-edu-local/internal/models"
)

var _ DataStore = &PostgresStore{}

// PostgresStore implements DataStore on PostgreSQL via GORM, for shared
// multi-instance deployments.
type PostgresStore struct {
	db *gorm.DB
}

type studentRow struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement"`
	Name                string `gorm:"not null"`
	Email               string `gorm:"not null;uniqueIndex"`
	LearningPreferences string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (studentRow) TableName() string { return "students" }

type interactionRow struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	StudentID     int64  `gorm:"index;not null"`
	SessionID     string `gorm:"index;not null"`
	InputType     string `gorm:"not null"`
	InputContent  string
	AgentResponse string
	Timestamp     time.Time
}

func (interactionRow) TableName() string { return "interactions" }

type progressRow struct {
	ID                   int64  `gorm:"primaryKey;autoIncrement"`
	StudentID            int64  `gorm:"index;not null;uniqueIndex:idx_progress_key"`
	Subject              string `gorm:"index;not null;uniqueIndex:idx_progress_key"`
	Topic                string `gorm:"not null;uniqueIndex:idx_progress_key"`
	CompletionPercentage float64
	PerformanceScore     float64
	LastAccessed         time.Time
}

func (progressRow) TableName() string { return "learning_progress" }

type contentRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Title           string `gorm:"not null"`
	Content         string
	Subject         string `gorm:"index;not null"`
	DifficultyLevel int    `gorm:"index;not null"`
	ContentType     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (contentRow) TableName() string { return "curriculum_content" }

// NewPostgresStore connects to PostgreSQL and migrates the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&studentRow{}, &interactionRow{}, &progressRow{}, &contentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) CreateStudent(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	row := studentRow{
		Name:                student.Name,
		Email:               student.Email,
		LearningPreferences: student.LearningPreferences,
		CreatedAt:           student.CreatedAt,
		UpdatedAt:           student.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	student.ID = row.ID
	return nil
}

func (s *PostgresStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	var row studentRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return studentFromRow(row), nil
}

func (s *PostgresStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&studentRow{}).Where("id = ?", student.ID).Updates(map[string]any{
		"name":                 student.Name,
		"email":                student.Email,
		"learning_preferences": student.LearningPreferences,
		"updated_at":           student.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteStudent(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&studentRow{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	var row studentRow
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student by email: %w", err)
	}
	return studentFromRow(row), nil
}

func (s *PostgresStore) SearchStudentsByName(ctx context.Context, pattern string) ([]models.Student, error) {
	var rows []studentRow
	err := s.db.WithContext(ctx).Where("name ILIKE ?", "%"+pattern+"%").Order("name").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}

	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, *studentFromRow(row))
	}
	return students, nil
}

func (s *PostgresStore) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&studentRow{}).Count(&count).Error
	return count, err
}

func (s *PostgresStore) CreateInteraction(ctx context.Context, interaction *models.Interaction) error {
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now().UTC()
	}

	row := interactionRow{
		StudentID:     interaction.StudentID,
		SessionID:     interaction.SessionID,
		InputType:     string(interaction.InputType),
		InputContent:  interaction.InputContent,
		AgentResponse: interaction.AgentResponse,
		Timestamp:     interaction.Timestamp,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	interaction.ID = row.ID
	return nil
}

func (s *PostgresStore) ListInteractionsByStudent(ctx context.Context, studentID int64, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []interactionRow
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return interactionsFromRows(rows), nil
}

func (s *PostgresStore) ListInteractionsBySession(ctx context.Context, sessionID string) ([]models.Interaction, error) {
	var rows []interactionRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session interactions: %w", err)
	}
	return interactionsFromRows(rows), nil
}

func (s *PostgresStore) ListMultimodalInteractions(ctx context.Context, studentID int64) ([]models.Interaction, error) {
	q := s.db.WithContext(ctx).Where("input_type IN ?", []string{"voice", "image"})
	if studentID > 0 {
		q = q.Where("student_id = ?", studentID)
	}

	var rows []interactionRow
	if err := q.Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list multimodal interactions: %w", err)
	}
	return interactionsFromRows(rows), nil
}

func (s *PostgresStore) CountInteractions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&interactionRow{}).Count(&count).Error
	return count, err
}

func (s *PostgresStore) UpsertProgress(ctx context.Context, progress *models.LearningProgress) error {
	if progress.LastAccessed.IsZero() {
		progress.LastAccessed = time.Now().UTC()
	}

	row := progressRow{
		StudentID:            progress.StudentID,
		Subject:              progress.Subject,
		Topic:                progress.Topic,
		CompletionPercentage: progress.CompletionPercentage,
		PerformanceScore:     progress.PerformanceScore,
		LastAccessed:         progress.LastAccessed,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "subject"}, {Name: "topic"}},
		DoUpdates: clause.AssignmentColumns([]string{"completion_percentage", "performance_score", "last_accessed"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	if progress.ID == 0 {
		progress.ID = row.ID
	}
	return nil
}

func (s *PostgresStore) ListProgressByStudent(ctx context.Context, studentID int64) ([]models.LearningProgress, error) {
	var rows []progressRow
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("subject, topic").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return progressFromRows(rows), nil
}

func (s *PostgresStore) ListProgressBySubject(ctx context.Context, subject string, studentID int64) ([]models.LearningProgress, error) {
	q := s.db.WithContext(ctx).Where("subject = ?", subject)
	if studentID > 0 {
		q = q.Where("student_id = ?", studentID)
	}

	var rows []progressRow
	if err := q.Order("topic").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list subject progress: %w", err)
	}
	return progressFromRows(rows), nil
}

func (s *PostgresStore) ListCompletedProgress(ctx context.Context, studentID int64) ([]models.LearningProgress, error) {
	var rows []progressRow
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND completion_percentage >= 100", studentID).
		Order("subject, topic").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list completed progress: %w", err)
	}
	return progressFromRows(rows), nil
}

func (s *PostgresStore) CreateContent(ctx context.Context, content *models.CurriculumContent) error {
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	row := contentRow{
		Title:           content.Title,
		Content:         content.Content,
		Subject:         content.Subject,
		DifficultyLevel: content.DifficultyLevel,
		ContentType:     content.ContentType,
		CreatedAt:       content.CreatedAt,
		UpdatedAt:       content.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	content.ID = row.ID
	return nil
}

func (s *PostgresStore) GetContent(ctx context.Context, id int64) (*models.CurriculumContent, error) {
	var row contentRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return contentFromRow(row), nil
}

func (s *PostgresStore) ListContentBySubject(ctx context.Context, subject string) ([]models.CurriculumContent, error) {
	var rows []contentRow
	err := s.db.WithContext(ctx).
		Where("subject = ?", subject).
		Order("difficulty_level, title").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return contentFromRows(rows), nil
}

func (s *PostgresStore) ListContentByDifficulty(ctx context.Context, minLevel, maxLevel int) ([]models.CurriculumContent, error) {
	var rows []contentRow
	err := s.db.WithContext(ctx).
		Where("difficulty_level BETWEEN ? AND ?", minLevel, maxLevel).
		Order("difficulty_level, title").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list content by difficulty: %w", err)
	}
	return contentFromRows(rows), nil
}

func (s *PostgresStore) ListAdvancedContent(ctx context.Context, subject string) ([]models.CurriculumContent, error) {
	q := s.db.WithContext(ctx).Where("difficulty_level > ?", models.AdvancedDifficultyThreshold)
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}

	var rows []contentRow
	if err := q.Order("difficulty_level, title").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list advanced content: %w", err)
	}
	return contentFromRows(rows), nil
}

func studentFromRow(row studentRow) *models.Student {
	return &models.Student{
		ID:                  row.ID,
		Name:                row.Name,
		Email:               row.Email,
		LearningPreferences: row.LearningPreferences,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func interactionsFromRows(rows []interactionRow) []models.Interaction {
	interactions := make([]models.Interaction, 0, len(rows))
	for _, row := range rows {
		interactions = append(interactions, models.Interaction{
			ID:            row.ID,
			StudentID:     row.StudentID,
			SessionID:     row.SessionID,
			InputType:     models.InputType(row.InputType),
			InputContent:  row.InputContent,
			AgentResponse: row.AgentResponse,
			Timestamp:     row.Timestamp,
		})
	}
	return interactions
}

func progressFromRows(rows []progressRow) []models.LearningProgress {
	records := make([]models.LearningProgress, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.LearningProgress{
			ID:                   row.ID,
			StudentID:            row.StudentID,
			Subject:              row.Subject,
			Topic:                row.Topic,
			CompletionPercentage: row.CompletionPercentage,
			PerformanceScore:     row.PerformanceScore,
			LastAccessed:         row.LastAccessed,
		})
	}
	return records
}

func contentFromRow(row contentRow) *models.CurriculumContent {
	return &models.CurriculumContent{
		ID:              row.ID,
		Title:           row.Title,
		Content:         row.Content,
		Subject:         row.Subject,
		DifficultyLevel: row.DifficultyLevel,
		ContentType:     row.ContentType,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func contentFromRows(rows []contentRow) []models.CurriculumContent {
	contents := make([]models.CurriculumContent, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, *contentFromRow(row))
	}
	return contents
}
