package handlers

import (
	"net/http"
	"sync"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Startup step names
const (
	StepDatabase     = "Database connection"
	StepMigrations   = "Running migrations"
	StepBlockedWords = "Seeding blocked words"
	StepLearnerState = "Loading learner state"
	StepServices     = "Initializing services"
	StepReady        = "Server ready"
)

var startupStatus = newStartupStatus()

func newStartupStatus() *StartupStatus {
	return &StartupStatus{
		Current: "Initializing...",
		Steps: []StartupStep{
			{Name: StepDatabase},
			{Name: StepMigrations},
			{Name: StepBlockedWords},
			{Name: StepLearnerState},
			{Name: StepServices},
			{Name: StepReady},
		},
	}
}

// SetCurrentStep updates the current initialization step
func SetCurrentStep(step string) {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()
	startupStatus.Current = step
}

// CompleteStep marks a step as completed and updates progress
func CompleteStep(stepName string) {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()

	for i := range startupStatus.Steps {
		if startupStatus.Steps[i].Name == stepName {
			startupStatus.Steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range startupStatus.Steps {
		if step.Completed {
			completed++
		}
	}
	startupStatus.Progress = (completed * 100) / len(startupStatus.Steps)
}

// MarkReady marks the server as fully initialized
func MarkReady() {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()
	for i := range startupStatus.Steps {
		startupStatus.Steps[i].Completed = true
	}
	startupStatus.Ready = true
	startupStatus.Current = StepReady
	startupStatus.Progress = 100
}

// IsReady returns whether the server is fully initialized
func IsReady() bool {
	startupStatus.mu.RLock()
	defer startupStatus.mu.RUnlock()
	return startupStatus.Ready
}

type healthResponse struct {
	Status   string        `json:"status"`
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// Health reports liveness and startup progress. It answers 503 until the
// server is ready.
func Health(w http.ResponseWriter, r *http.Request) {
	startupStatus.mu.RLock()
	resp := healthResponse{
		Status:   "starting",
		Ready:    startupStatus.Ready,
		Current:  startupStatus.Current,
		Progress: startupStatus.Progress,
		Steps:    append([]StartupStep(nil), startupStatus.Steps...),
	}
	startupStatus.mu.RUnlock()

	status := http.StatusServiceUnavailable
	if resp.Ready {
		resp.Status = "healthy"
		status = http.StatusOK
	}
	respondWithJSON(w, status, resp)
}
