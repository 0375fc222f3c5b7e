// Package models defines the persistence schema for staged rewrites.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stage is a pending rewrite of one file: the rewrite ran, the result
// was recorded, nothing touched the file yet. Committing a stage writes
// the modified text through the atomic writer.
type Stage struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	// Operation details
	Language        string `gorm:"type:varchar(50);not null"`
	MatchPattern    string `gorm:"type:text;not null"`
	RewriteTemplate string `gorm:"type:text;not null"`

	// Target file
	Path string `gorm:"type:varchar(512);index"`

	// Content
	Original string `gorm:"type:text"`
	Modified string `gorm:"type:text"`
	Diff     string `gorm:"type:text"`

	// Checksums for validation at commit time
	BaseDigest  string `gorm:"type:varchar(64)"` // SHA256 of original
	AfterDigest string `gorm:"type:varchar(64)"` // SHA256 of modified

	// Captured placeholder bindings, printed to source text
	Bindings   datatypes.JSON `gorm:"type:jsonb"`
	MatchCount int

	// Status tracking
	Status    string    `gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	ExpiresAt time.Time `gorm:"index"`
	AppliedAt *time.Time

	// Relationships
	Apply *Apply `gorm:"foreignKey:StageID"`
}

// Apply records a committed stage.
type Apply struct {
	ID      string `gorm:"primaryKey;type:varchar(36)"`
	StageID string `gorm:"type:varchar(36);uniqueIndex"`

	BaseDigest  string `gorm:"type:varchar(64)"`
	AfterDigest string `gorm:"type:varchar(64)"`

	AppliedAt time.Time `gorm:"autoCreateTime"`
}
