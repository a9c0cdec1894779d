// Package jobs provides an asynchronous worker pool for chain-facing
// operations so HTTP handlers can return without waiting on the RPC node.
package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Job struct {
	ID        uuid.UUID      `gorm:"primary_key;type:uuid;"`
	Type      string         `gorm:"column:type"`
	State     State          `gorm:"column:state;default:1"`
	Error     string         `gorm:"column:error"`
	Errors    pq.StringArray `gorm:"column:errors;type:text[]"`
	Result    string         `gorm:"column:result"`
	ExecCount int            `gorm:"column:exec_count;default:0"`
	Signature string         `gorm:"column:signature"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}

type JSONResponse struct {
	ID        uuid.UUID `json:"jobId"`
	Type      string    `json:"type"`
	State     string    `json:"state"`
	Error     string    `json:"error,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Result    string    `json:"result,omitempty"`
	Signature string    `json:"signature,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j *Job) ToJSONResponse() JSONResponse {
	return JSONResponse{
		ID:        j.ID,
		Type:      j.Type,
		State:     j.State.String(),
		Error:     j.Error,
		Errors:    []string(j.Errors),
		Result:    j.Result,
		Signature: j.Signature,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
