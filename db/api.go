package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oxhq/regraft/models"
)

// StageStore wraps the staging tables.
type StageStore struct {
	db *gorm.DB
}

// NewStageStore creates a store over an open connection.
func NewStageStore(database *gorm.DB) *StageStore {
	return &StageStore{db: database}
}

// Create records a new pending stage and returns its ID.
func (s *StageStore) Create(stage *models.Stage) (string, error) {
	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	if stage.Status == "" {
		stage.Status = "pending"
	}
	if stage.ExpiresAt.IsZero() {
		stage.ExpiresAt = time.Now().Add(15 * time.Minute)
	}
	if err := s.db.Create(stage).Error; err != nil {
		return "", fmt.Errorf("creating stage: %w", err)
	}
	return stage.ID, nil
}

// Pending lists unexpired pending stages, oldest first.
func (s *StageStore) Pending() ([]models.Stage, error) {
	var stages []models.Stage
	err := s.db.
		Where("status = ? AND expires_at > ?", "pending", time.Now()).
		Order("created_at asc").
		Find(&stages).Error
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	return stages, nil
}

// Get loads one stage by ID.
func (s *StageStore) Get(id string) (*models.Stage, error) {
	var stage models.Stage
	if err := s.db.First(&stage, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading stage %s: %w", id, err)
	}
	return &stage, nil
}

// MarkApplied flips a stage to applied and records the apply, in one
// transaction.
func (s *StageStore) MarkApplied(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var stage models.Stage
		if err := tx.First(&stage, "id = ?", id).Error; err != nil {
			return fmt.Errorf("loading stage %s: %w", id, err)
		}
		now := time.Now()
		if err := tx.Model(&stage).Updates(map[string]any{
			"status":     "applied",
			"applied_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("updating stage %s: %w", id, err)
		}
		apply := models.Apply{
			ID:          uuid.NewString(),
			StageID:     stage.ID,
			BaseDigest:  stage.BaseDigest,
			AfterDigest: stage.AfterDigest,
		}
		if err := tx.Create(&apply).Error; err != nil {
			return fmt.Errorf("recording apply for stage %s: %w", id, err)
		}
		return nil
	})
}
