// Package snapshot persists a learner's progress array and profile as JSON
// documents in a key-value store.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log"

	"kidslearning/internal/models"
)

// Keys under which the documents are stored
const (
	ProgressKey     = "kids-learning-progress"
	ProfileKey      = "kids-learning-profile"
	BackendTokenKey = "kids-learning-backend-token"
)

// KeyValueStore is the persistence collaborator. Get reports found=false for
// a key that was never set or has been removed.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Store reads and writes the snapshot documents
type Store struct {
	kv KeyValueStore
}

// NewStore wraps a key-value store
func NewStore(kv KeyValueStore) *Store {
	return &Store{kv: kv}
}

// LoadProgress returns the stored progress array. A missing or corrupt
// document yields an empty array; corruption is logged, not returned.
func (s *Store) LoadProgress() ([]models.Progress, error) {
	raw, found, err := s.kv.Get(ProgressKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	if !found || raw == "" {
		return []models.Progress{}, nil
	}

	var records []models.Progress
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		log.Printf("Stored progress is corrupt, starting empty: %v", err)
		return []models.Progress{}, nil
	}
	if records == nil {
		records = []models.Progress{}
	}
	for i := range records {
		records[i] = records[i].Clone()
	}
	return records, nil
}

// SaveProgress overwrites the whole progress array
func (s *Store) SaveProgress(records []models.Progress) error {
	if records == nil {
		records = []models.Progress{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := s.kv.Set(ProgressKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	return nil
}

// LoadProfile returns the stored profile, or nil when none exists or the
// document is corrupt
func (s *Store) LoadProfile() (*models.UserProfile, error) {
	raw, found, err := s.kv.Get(ProfileKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if !found || raw == "" || raw == "null" {
		return nil, nil
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		log.Printf("Stored profile is corrupt, ignoring it: %v", err)
		return nil, nil
	}
	return &profile, nil
}

// SaveProfile overwrites the profile. A nil profile removes it.
func (s *Store) SaveProfile(profile *models.UserProfile) error {
	if profile == nil {
		if err := s.kv.Remove(ProfileKey); err != nil {
			return fmt.Errorf("failed to remove profile: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.kv.Set(ProfileKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	return nil
}

// LoadBackendToken returns the bearer token of the linked student, if any
func (s *Store) LoadBackendToken() (string, error) {
	token, _, err := s.kv.Get(BackendTokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read backend token: %w", err)
	}
	return token, nil
}

// SaveBackendToken stores the bearer token. An empty token removes it.
func (s *Store) SaveBackendToken(token string) error {
	if token == "" {
		if err := s.kv.Remove(BackendTokenKey); err != nil {
			return fmt.Errorf("failed to remove backend token: %w", err)
		}
		return nil
	}
	if err := s.kv.Set(BackendTokenKey, token); err != nil {
		return fmt.Errorf("failed to persist backend token: %w", err)
	}
	return nil
}

// Clear removes every document this package owns
func (s *Store) Clear() error {
	for _, key := range []string{ProgressKey, ProfileKey, BackendTokenKey} {
		if err := s.kv.Remove(key); err != nil {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}
