package domain

// AgentType distinguishes top-level agents from the agents grouped under them.
type AgentType string

const (
	AgentPrimary  AgentType = "primary"
	AgentSubAgent AgentType = "sub-agent"
)

// ResourceType classifies a resource for display.
type ResourceType string

const (
	ResourceExcel      ResourceType = "excel"
	ResourceDatabase   ResourceType = "database"
	ResourceAPI        ResourceType = "api"
	ResourceFile       ResourceType = "file"
	ResourcePermission ResourceType = "permission"
)

// Permission labels that render as granted. Any other label renders as revoked.
const (
	PermRead  = "read"
	PermWrite = "write"
)

// Agent is a named assistant persona. Agents are created by the team
// builder or seeded at startup and are never removed.
type Agent struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Avatar       string     `json:"avatar"`
	Type         AgentType  `json:"type"`
	ParentID     string     `json:"parentId,omitempty"` // set iff Type == AgentSubAgent; not validated
	Capabilities []string   `json:"capabilities"`
	Resources    []Resource `json:"resources"`
	IsActive     bool       `json:"isActive"` // display-only; ChatState.ActiveAgentID is authoritative
}

// IsPrimary reports whether the agent is a top-level agent.
func (a Agent) IsPrimary() bool { return a.Type == AgentPrimary }

// Resource is a display-only tool, data source or grant owned by one agent.
type Resource struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ResourceType `json:"type"`
	Icon        string       `json:"icon"`
	Description string       `json:"description"`
	Permissions []string     `json:"permissions"`
}

// PermissionGranted reports whether a permission label renders with a check mark.
// Permissions are labels only and are never enforced.
func PermissionGranted(p string) bool {
	return p == PermRead || p == PermWrite
}
