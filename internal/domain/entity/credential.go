package entity

import "time"

type CredentialField struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Credential is the escrowed login data for a listing. It is written once.
type Credential struct {
	ID                 string            `json:"id"`
	ListingID          string            `json:"listing_id"`
	OriginalCredential []CredentialField `json:"original_credential"`
	CreatedAt          time.Time         `json:"created_at"`
}
