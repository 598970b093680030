package snapshot

import (
	"fmt"
	"log"
)

// Store backend names accepted by OpenBackend
const (
	BackendDatabase = "database"
	BackendFile     = "file"
	BackendMemory   = "memory"
)

// OpenBackend picks where the learner snapshot lives. database is used for
// the database backend and may be nil otherwise.
func OpenBackend(backend, filePath string, database KeyValueStore) (KeyValueStore, error) {
	switch backend {
	case BackendDatabase, "":
		if database == nil {
			return nil, fmt.Errorf("database store backend requires a database")
		}
		return database, nil
	case BackendFile:
		log.Printf("Storing learner state in %s", filePath)
		return NewFileStore(filePath), nil
	case BackendMemory:
		log.Println("Warning: learner state is kept in memory and lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
