package engine

import (
	"fmt"
	"strings"

	"agentchat/internal/domain"
)

var (
	readOnly  = []string{domain.PermRead}
	readWrite = []string{domain.PermRead, domain.PermWrite}
)

// specialist describes one sub-agent the team builder can add. Offset is the
// agent's position in the batch id namespace; the primary agent is offset 0.
type specialist struct {
	Name         string
	Avatar       string
	Offset       int64
	Keywords     []string // nil means the agent is always added
	GateKeywords []string // keywords used when base agents are gated
	Capabilities []string
	Resources    func(ts int64) []domain.Resource
}

var specialists = []specialist{
	{
		Name:         "Data Analyst",
		Avatar:       "📊",
		Offset:       1,
		GateKeywords: []string{"data", "analyze"},
		Capabilities: []string{"Data Analysis", "Statistical Modeling", "Data Visualization"},
		Resources: func(ts int64) []domain.Resource {
			return []domain.Resource{
				res(fmt.Sprintf("data_%d_1", ts), "Analytics Database", domain.ResourceDatabase, "🗄️", "Main analytics database", readOnly),
				res(fmt.Sprintf("data_%d_2", ts), "Python Analysis Tools", domain.ResourceAPI, "🐍", "Python-based analysis libraries", readWrite),
			}
		},
	},
	{
		Name:         "Report Generator",
		Avatar:       "📈",
		Offset:       2,
		GateKeywords: []string{"report", "create"},
		Capabilities: []string{"Report Generation", "Document Creation", "Visualization"},
		Resources: func(ts int64) []domain.Resource {
			return []domain.Resource{
				res(fmt.Sprintf("report_%d_1", ts), "Report Templates", domain.ResourceFile, "📄", "Pre-built report templates", readOnly),
				res(fmt.Sprintf("report_%d_2", ts), "Charting Tools", domain.ResourceAPI, "📊", "Advanced charting and visualization tools", readWrite),
			}
		},
	},
	{
		Name:         "Excel Processor",
		Avatar:       "📋",
		Offset:       3,
		Keywords:     []string{"excel", "spreadsheet"},
		Capabilities: []string{"Excel Processing", "Data Manipulation", "Formula Generation"},
		Resources: func(ts int64) []domain.Resource {
			return []domain.Resource{
				res(fmt.Sprintf("excel_%d_1", ts), "Excel Files", domain.ResourceExcel, "📊", "Excel spreadsheet files", readWrite),
			}
		},
	},
	{
		Name:         "Communication Manager",
		Avatar:       "📧",
		Offset:       4,
		Keywords:     []string{"email", "communication"},
		Capabilities: []string{"Email Management", "Communication", "Notification System"},
		Resources: func(ts int64) []domain.Resource {
			return []domain.Resource{
				res(fmt.Sprintf("comm_%d_1", ts), "Email System", domain.ResourceAPI, "📧", "Email sending and management system", readWrite),
				res(fmt.Sprintf("comm_%d_2", ts), "Notification Center", domain.ResourceAPI, "🔔", "Push notification system", readWrite),
			}
		},
	},
	{
		Name:         "Web Developer",
		Avatar:       "🌐",
		Offset:       5,
		Keywords:     []string{"web", "website", "frontend"},
		Capabilities: []string{"Web Development", "Frontend", "UI/UX"},
		Resources: func(ts int64) []domain.Resource {
			return []domain.Resource{
				res(fmt.Sprintf("web_%d_1", ts), "React Framework", domain.ResourceAPI, "⚛️", "React development framework", readWrite),
				res(fmt.Sprintf("web_%d_2", ts), "CSS Framework", domain.ResourceFile, "🎨", "Tailwind CSS framework", readWrite),
			}
		},
	},
}

// namespaceWidth is the number of consecutive timestamps one batch claims.
const namespaceWidth = 6

func res(id, name string, typ domain.ResourceType, icon, desc string, perms []string) domain.Resource {
	p := make([]string, len(perms))
	copy(p, perms)
	return domain.Resource{ID: id, Name: name, Type: typ, Icon: icon, Description: desc, Permissions: p}
}

// Team is the set of agents synthesized for one prompt.
type Team struct {
	Primary   domain.Agent
	SubAgents []domain.Agent
}

// Agents returns the primary agent followed by its sub-agents.
func (t Team) Agents() []domain.Agent {
	out := make([]domain.Agent, 0, 1+len(t.SubAgents))
	out = append(out, t.Primary)
	return append(out, t.SubAgents...)
}

// BuildTeam synthesizes a primary coordinator and its sub-agents for prompt.
// ts is the batch timestamp in Unix milliseconds; every id in the team is
// derived from it. Keyword tests are case-insensitive substring matches and
// independent of each other. Data Analyst and Report Generator are always
// added unless gateBase is set, in which case they need their own keywords.
func BuildTeam(prompt string, ts int64, gateBase bool) Team {
	lower := strings.ToLower(prompt)
	primaryID := fmt.Sprintf("agent_%d", ts)

	team := Team{
		Primary: domain.Agent{
			ID:           primaryID,
			Name:         fmt.Sprintf("Task Coordinator %d", (ts/1000)%100),
			Avatar:       "🎯",
			Type:         domain.AgentPrimary,
			Capabilities: []string{"Task Coordination", "Agent Management", "Workflow Planning"},
			Resources: []domain.Resource{
				res(fmt.Sprintf("coord_%d", ts), "Task Management System", domain.ResourceAPI, "⚙️", "Central task coordination system", readWrite),
			},
			IsActive: true,
		},
	}

	for _, sp := range specialists {
		keywords := sp.Keywords
		if keywords == nil && gateBase {
			keywords = sp.GateKeywords
		}
		if keywords != nil && !containsAny(lower, keywords) {
			continue
		}
		team.SubAgents = append(team.SubAgents, domain.Agent{
			ID:           fmt.Sprintf("agent_%d", ts+sp.Offset),
			Name:         sp.Name,
			Avatar:       sp.Avatar,
			Type:         domain.AgentSubAgent,
			ParentID:     primaryID,
			Capabilities: append([]string(nil), sp.Capabilities...),
			Resources:    sp.Resources(ts),
		})
	}
	return team
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
