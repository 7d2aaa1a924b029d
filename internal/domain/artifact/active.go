package artifact

import "time"

// ChangeKind identifies what an activation change touched.
type ChangeKind string

const (
	ChangeEnv      ChangeKind = "env"      // environment variable set
	ChangePath     ChangeKind = "path"     // entry prepended to a path-list variable
	ChangeProperty ChangeKind = "property" // build property set
	ChangeTool     ChangeKind = "tool"     // tool alias set
)

// Change is a single environment mutation performed by activation.
type Change struct {
	Kind        ChangeKind `json:"kind"`
	Key         string     `json:"key"`
	Value       string     `json:"value"`
	Previous    string     `json:"previous,omitempty"`
	HadPrevious bool       `json:"had_previous,omitempty"`
}

// Handle describes what an activation changed, so it can be reverted when a
// different version of the same artifact is activated later.
type Handle struct {
	ID          string    `json:"id"`
	ActivatedAt time.Time `json:"activated_at"`
	Changes     []Change  `json:"changes"`
}

// ActiveArtifact is an artifact currently exposed in the session environment.
type ActiveArtifact struct {
	Name      string
	Version   string
	Source    string
	Languages []string
	Handle    Handle
}

// ID returns "name@version".
func (a ActiveArtifact) ID() string {
	return a.Name + "@" + a.Version
}
