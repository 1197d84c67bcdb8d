// Package uxerror turns errors into short cards with recovery hints for
// the chat panel.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"agentchat/internal/adapter/tui/theme"
	"agentchat/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Agent Not Found"
	Message string   // one-line explanation
	Hints   []string // recovery suggestions
	Code    domain.ErrorCode
	Raw     string // original error text
}

// Render formats the card for the message list.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

// patterns are tried in order; domain codes come before text matching.
var patterns = []errorPattern{
	{
		match: hasCode(domain.CodePromptEmpty),
		produce: constantError("Empty Prompt", "There is nothing to send.",
			[]string{"Describe the task you want the agents to work on"}),
	},
	{
		match: hasCode(domain.CodeAgentNotFound),
		produce: constantError("Agent Not Found", "That agent is not in the roster.",
			[]string{"Pick an agent from the left panel", "Start a new chat with Ctrl+N"}),
	},
	{
		match: hasCode(domain.CodeConversationNotFound),
		produce: constantError("Conversation Not Found", "That conversation no longer exists.",
			[]string{"Select an agent to see its conversations"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrMissingProvider) },
		produce: constantError("Store Unavailable", "The chat store was not wired into this view.",
			[]string{"Restart agentchat", "Report this as a bug"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrCancelled) },
		produce: constantError("Cancelled", "The pending work was cancelled.",
			[]string{"Send the message again"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrConfigLoad) },
		produce: constantError("Configuration Error", "The configuration could not be loaded.",
			[]string{"Check agentchat.yaml", "Run with AGENTCHAT_LOGGER_LEVEL=debug"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrInvalidInput) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Invalid Input",
				Message: err.Error(),
				Hints:   []string{"Check the command and try again", "Type /help for the command list"},
				Code:    domain.ErrorCodeOf(err),
				Raw:     err.Error(),
			}
		},
	},

	// Text patterns for errors from outside the domain.
	{
		match: containsAny("address already in use", "bind:"),
		produce: constantError("Gateway Could Not Start", "The gateway address is taken.",
			[]string{"Change gateway.addr in config", "Stop the other agentchat instance"}),
	},
	{
		match: containsAny("deadline exceeded", "timeout", "timed out"),
		produce: constantError("Timed Out", "The operation took too long.",
			[]string{"Try again"}),
	},
}

// Humanize converts err into a FriendlyError.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Code: domain.CodeUnknown, Raw: "nil"}
	}
	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}
	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with AGENTCHAT_LOGGER_LEVEL=debug for more details"},
		Code:    domain.ErrorCodeOf(err),
		Raw:     err.Error(),
	}
}

func hasCode(code domain.ErrorCode) func(error) bool {
	return func(err error) bool { return domain.ErrorCodeOf(err) == code }
}

// containsAny matches errors whose text contains any of substrs, ignoring case.
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Code:    domain.ErrorCodeOf(err),
			Raw:     err.Error(),
		}
	}
}
