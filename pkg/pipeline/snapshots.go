package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Snapshots writes per-stage artifacts to disk as a debugging aid.
// Write failures are logged and never interrupt the pipeline; a nil
// *Snapshots disables writing entirely.
type Snapshots struct {
	dir string
}

// NewSnapshots creates a snapshot writer rooted at dir
func NewSnapshots(dir string) *Snapshots {
	return &Snapshots{dir: dir}
}

// WritePlan dumps the plan as JSON
func (s *Snapshots) WritePlan(runID string, plan interface{}) {
	s.writeJSON(runID, "plan.json", plan)
}

// WriteSelection dumps the tool selection as JSON
func (s *Snapshots) WriteSelection(runID string, selection interface{}) {
	s.writeJSON(runID, "tool_selection.json", selection)
}

// WriteCode dumps the generated script source
func (s *Snapshots) WriteCode(runID, code string) {
	if s == nil {
		return
	}
	path, ok := s.prepare(runID, "code.js")
	if !ok {
		return
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write code snapshot")
	}
}

func (s *Snapshots) writeJSON(runID, name string, v interface{}) {
	if s == nil {
		return
	}
	path, ok := s.prepare(runID, name)
	if !ok {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to marshal snapshot")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to write snapshot")
	}
}

func (s *Snapshots) prepare(runID, name string) (string, bool) {
	dir := filepath.Join(s.dir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Failed to create snapshot directory")
		return "", false
	}
	return filepath.Join(dir, name), true
}
