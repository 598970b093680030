package handlers

import "net/http"

// Routes bundles the handlers mounted on the API mux. Backend may be nil when
// this server does not host the progress backend.
type Routes struct {
	Middleware *Middleware
	Progress   *ProgressHandler
	Profile    *ProfileHandler
	Snapshot   *SnapshotHandler
	Chat       *ChatHandler
	Backend    *BackendHandler
}

// Register mounts every API route on mux
func (rt Routes) Register(mux *http.ServeMux) {
	m := rt.Middleware

	mux.HandleFunc("GET /api/health", Health)
	mux.HandleFunc("GET /api/status", rt.Progress.Status)

	// Profile and data lifecycle
	mux.HandleFunc("GET /api/profile", rt.Profile.GetProfile)
	mux.HandleFunc("POST /api/profile", rt.Profile.CreateProfile)
	mux.HandleFunc("PUT /api/profile", rt.Profile.UpdateProfile)
	mux.HandleFunc("POST /api/profile/link", m.RateLimit(rt.Profile.Link))
	mux.HandleFunc("DELETE /api/data", rt.Profile.ClearData)

	// Progress ledger and rollups
	mux.HandleFunc("GET /api/progress", rt.Progress.ListProgress)
	mux.HandleFunc("GET /api/progress/overall", rt.Progress.Overall)
	mux.HandleFunc("GET /api/progress/subjects", rt.Progress.Subjects)
	mux.HandleFunc("GET /api/progress/{grade}/{subject}", rt.Progress.GetProgress)
	mux.HandleFunc("POST /api/progress/complete", rt.Progress.Complete)
	mux.HandleFunc("POST /api/progress/achievements", rt.Progress.AddAchievement)
	mux.HandleFunc("POST /api/progress/report", m.RateLimit(rt.Progress.SendReport))
	mux.HandleFunc("GET /api/achievements", rt.Progress.Achievements)

	// Import and export
	mux.HandleFunc("GET /api/export", rt.Snapshot.Export)
	mux.HandleFunc("POST /api/import", rt.Snapshot.Import)

	// Tutor
	mux.HandleFunc("POST /api/chat", m.RateLimit(rt.Chat.Chat))

	// Remote progress backend
	if rt.Backend != nil {
		mux.HandleFunc("POST /api/backend/students", m.RateLimit(rt.Backend.CreateStudent))
		mux.HandleFunc("GET /api/backend/students", m.RateLimit(rt.Backend.FindStudent))
		mux.HandleFunc("POST /api/backend/students/login", m.RateLimit(rt.Backend.Login))
		mux.HandleFunc("POST /api/backend/students/{id}/progress", m.RequireStudentToken(rt.Backend.AppendProgress))
		mux.HandleFunc("GET /api/backend/students/{id}/progress", m.RequireStudentToken(rt.Backend.ListProgress))
	}
}
