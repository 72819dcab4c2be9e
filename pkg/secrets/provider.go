package secrets

import (
	"context"
	"encoding/json"
)

// DatabaseCredentials is the JSON shape stored in the credentials secret.
type DatabaseCredentials struct {
	Host     string      `json:"host"`
	Port     json.Number `json:"port"` // number in RDS-managed secrets, string in hand-made ones
	DBName   string      `json:"dbname"`
	Username string      `json:"username"`
	Password string      `json:"password"`
}

// Provider retrieves store connection credentials.
type Provider interface {
	DatabaseCredentials(ctx context.Context, secretId string) (*DatabaseCredentials, error)
}
