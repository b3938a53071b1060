// Package store provides persistent storage for students, interactions,
// learning progress, and curriculum metadata. The default backend is an
// embedded SQLite database; Postgres is available for shared deployments.
package store

import (
	"context"
	"fmt"

	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/internal/models"
)

// DataStore defines the interface for persistent entity storage. Both
// SQLiteStore and PostgresStore implement this interface.
type DataStore interface {
	// Connection management
	Close() error
	Ping(ctx context.Context) error

	// Student operations
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	UpdateStudent(ctx context.Context, student *models.Student) error
	DeleteStudent(ctx context.Context, id int64) error
	FindStudentByEmail(ctx context.Context, email string) (*models.Student, error)
	SearchStudentsByName(ctx context.Context, pattern string) ([]models.Student, error)
	CountStudents(ctx context.Context) (int64, error)

	// Interaction operations
	CreateInteraction(ctx context.Context, interaction *models.Interaction) error
	ListInteractionsByStudent(ctx context.Context, studentID int64, limit int) ([]models.Interaction, error)
	ListInteractionsBySession(ctx context.Context, sessionID string) ([]models.Interaction, error)
	ListMultimodalInteractions(ctx context.Context, studentID int64) ([]models.Interaction, error)
	CountInteractions(ctx context.Context) (int64, error)

	// Learning progress operations
	UpsertProgress(ctx context.Context, progress *models.LearningProgress) error
	ListProgressByStudent(ctx context.Context, studentID int64) ([]models.LearningProgress, error)
	ListProgressBySubject(ctx context.Context, subject string, studentID int64) ([]models.LearningProgress, error)
	ListCompletedProgress(ctx context.Context, studentID int64) ([]models.LearningProgress, error)

	// Curriculum content operations
	CreateContent(ctx context.Context, content *models.CurriculumContent) error
	GetContent(ctx context.Context, id int64) (*models.CurriculumContent, error)
	ListContentBySubject(ctx context.Context, subject string) ([]models.CurriculumContent, error)
	ListContentByDifficulty(ctx context.Context, minLevel, maxLevel int) ([]models.CurriculumContent, error)
	ListAdvancedContent(ctx context.Context, subject string) ([]models.CurriculumContent, error)
}

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = fmt.Errorf("not found")

// New creates a DataStore for the configured driver.
func New(cfg *config.StoreConfig) (DataStore, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
