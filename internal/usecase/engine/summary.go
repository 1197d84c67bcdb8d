package engine

import (
	"fmt"
	"strings"
)

// titleRunes is how much of a prompt a task conversation title keeps.
const titleRunes = 30

// TaskTitle returns the conversation title for a task prompt.
func TaskTitle(prompt string) string {
	r := []rune(prompt)
	if len(r) > titleRunes {
		r = r[:titleRunes]
	}
	return "Task: " + string(r) + "..."
}

// ChatTitle is the title of a conversation opened implicitly by SendMessage.
func ChatTitle(agentName string) string {
	return "Chat with " + agentName
}

// NewChatTitle is the title panels use when the user starts a conversation
// with an agent explicitly.
func NewChatTitle(agentName string) string {
	return "New chat with " + agentName
}

// EchoReply is the canned assistant reply to a user message.
func EchoReply(content string) string {
	return `I received your message: "` + content + `". This is a simulated response from the AI agent.`
}

// TeamSummary renders the markdown message announcing a new team.
func TeamSummary(t Team) string {
	var b strings.Builder
	b.WriteString("I've analyzed your request and created a team of specialized agents to help you accomplish this task:\n\n")
	fmt.Fprintf(&b, "**Main Agent: %s** 🎯\n", t.Primary.Name)
	b.WriteString("- Coordinates the overall workflow\n")
	b.WriteString("- Manages task distribution\n")
	b.WriteString("- Monitors progress\n\n")

	b.WriteString("**Specialized Agents Created:**\n")
	lines := make([]string, 0, len(t.SubAgents))
	for _, a := range t.SubAgents {
		lines = append(lines, fmt.Sprintf("- **%s** %s: %s", a.Name, a.Avatar, strings.Join(a.Capabilities, ", ")))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")

	b.WriteString("**Resources & Permissions Assigned:**\n")
	lines = lines[:0]
	for _, a := range t.SubAgents {
		res := make([]string, 0, len(a.Resources))
		for _, r := range a.Resources {
			res = append(res, fmt.Sprintf("%s (%s)", r.Name, strings.Join(r.Permissions, ", ")))
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s", a.Name, strings.Join(res, ", ")))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")

	b.WriteString("Each agent has been equipped with the necessary tools and permissions. You can now interact with any of these agents to get started with your task.")
	return b.String()
}
