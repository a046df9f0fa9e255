package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AIConfig stores an AI provider endpoint. APIKeySealed is a compact JWE and never leaves the server
// except through the active-config lookup.
type AIConfig struct {
	bun.BaseModel `bun:"table:ai_configs,alias:ac"`

	ID                string    `bun:"id,pk,type:varchar(36)" json:"id"`
	Provider          string    `bun:"provider,notnull" json:"provider"`
	ModelName         string    `bun:"model_name,notnull" json:"model_name"`
	APIKeySealed      string    `bun:"api_key_encrypted,notnull,type:text" json:"-"`
	APIKeyFingerprint string    `bun:"api_key_fingerprint,notnull" json:"api_key_fingerprint"`
	APIEndpoint       *string   `bun:"api_endpoint" json:"api_endpoint"`
	Temperature       float64   `bun:"temperature,notnull" json:"temperature"`
	MaxTokens         int       `bun:"max_tokens,notnull" json:"max_tokens"`
	IsActive          bool      `bun:"is_active,notnull" json:"is_active"`
	Priority          int       `bun:"priority,notnull" json:"priority"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
