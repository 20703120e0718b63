package models

import "github.com/google/uuid"

// ensureID assigns a fresh UUID when a record is created without one.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
