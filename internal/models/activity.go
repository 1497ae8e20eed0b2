package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity status values.
const (
	ActivityStatusReady = "ready"
)

// Activity is a finished, validated practice activity. Only external drafts
// are ever persisted: reference solutions never reach this table.
type Activity struct {
	ID            string             `gorm:"primaryKey;size:64" json:"id"`
	Language      string             `gorm:"size:16;not null" json:"language"`
	Status        string             `gorm:"size:32;not null" json:"status"`
	ProblemCount  int                `gorm:"not null" json:"problem_count"`
	Constraints   string             `gorm:"type:text" json:"constraints"`
	Rewrites      datatypes.JSON     `gorm:"type:jsonb" json:"rewrites,omitempty"`
	SoftFallbacks datatypes.JSON     `gorm:"type:jsonb" json:"soft_fallbacks,omitempty"`
	Problems      []GeneratedProblem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"problems"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// GeneratedProblem is one problem of an activity.
type GeneratedProblem struct {
	ID            string         `gorm:"primaryKey;size:64" json:"id"`
	ActivityID    string         `gorm:"size:64;index;not null" json:"activity_id"`
	Index         int            `gorm:"column:slot_index;not null" json:"index"`
	Language      string         `gorm:"size:16;not null" json:"language"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	StarterCode   string         `gorm:"type:text" json:"starter_code"`
	Workspace     datatypes.JSON `gorm:"type:jsonb" json:"workspace,omitempty"`
	TestSuite     string         `gorm:"type:text" json:"test_suite"`
	Constraints   string         `gorm:"type:text" json:"constraints"`
	SampleInputs  datatypes.JSON `gorm:"type:jsonb" json:"sample_inputs"`
	SampleOutputs datatypes.JSON `gorm:"type:jsonb" json:"sample_outputs"`
	Difficulty    string         `gorm:"size:16;not null" json:"difficulty"`
	TopicTag      string         `gorm:"size:64" json:"topic_tag"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
