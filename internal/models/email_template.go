package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// EmailTemplate holds admin-editable HTML with {{variable}} placeholders.
// ID is a slug ("welcome", "shipping-notice", ...).
type EmailTemplate struct {
	ID        string         `gorm:"size:64;primaryKey" json:"id"`
	Name      string         `gorm:"size:120;not null" json:"name"`
	Subject   string         `gorm:"size:255;not null" json:"subject"`
	HTML      string         `gorm:"type:text;not null" json:"html"`
	Variables datatypes.JSON `json:"variables"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (t *EmailTemplate) DecodeVariables() []string {
	if len(t.Variables) == 0 {
		return nil
	}
	var vars []string
	if err := json.Unmarshal(t.Variables, &vars); err != nil {
		return nil
	}
	return vars
}
