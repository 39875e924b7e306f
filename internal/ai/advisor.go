package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/gravadigital/civicpulse-api/internal/domain/issue"
)

// Categorization is the model's suggested classification for an issue
type Categorization struct {
	Category   string   `json:"category"`
	Priority   string   `json:"priority"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}

// ModerationResult is the model's verdict on user-submitted text
type ModerationResult struct {
	IsAppropriate bool   `json:"is_appropriate"`
	Reason        string `json:"reason"`
	SuggestedEdit string `json:"suggested_edit"`
}

// EngagementAnalysis summarizes platform-wide issue activity
type EngagementAnalysis struct {
	Insights        []string `json:"insights"`
	Trends          []string `json:"trends"`
	Recommendations []string `json:"recommendations"`
}

const categorizeSystemPrompt = `You are an assistant for a civic issue tracker.
Classify the reported issue into exactly one of the provided category names and
one of the priorities: low, medium, high, urgent.
Reply with JSON only: {"category": string, "priority": string, "tags": [string], "confidence": number between 0 and 1}.`

// CategorizeIssue asks the model to classify an issue report
func (c *Client) CategorizeIssue(ctx context.Context, title, description string, categories []string) (*Categorization, error) {
	prompt := fmt.Sprintf("Available categories: %s\n\nTitle: %s\n\nDescription: %s",
		strings.Join(categories, ", "), title, description)

	reply, err := c.complete(ctx, categorizeSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var result Categorization
	if err := decodeJSONReply(reply, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

const moderateSystemPrompt = `You moderate content for a neighborhood civic platform.
Flag text containing harassment, hate speech, personal attacks, spam, or personal data.
Reply with JSON only: {"is_appropriate": boolean, "reason": string, "suggested_edit": string}.
When the text is fine, reason and suggested_edit are empty strings.`

// ModerateContent asks the model whether user text is acceptable to publish
func (c *Client) ModerateContent(ctx context.Context, content string) (*ModerationResult, error) {
	reply, err := c.complete(ctx, moderateSystemPrompt, content)
	if err != nil {
		return nil, err
	}

	var result ModerationResult
	if err := decodeJSONReply(reply, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

const summarizeSystemPrompt = `You summarize civic issue threads for busy municipal staff.
Write two or three plain sentences covering the problem, where it is, and the
state of the discussion. No markdown, no preamble.`

// SummarizeIssue produces a short plain-text summary of an issue and its discussion
func (c *Client) SummarizeIssue(ctx context.Context, iss *issue.Issue, comments []*issue.Comment) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nStatus: %s\nPriority: %s\n", iss.Title, iss.Status, iss.Priority)
	if iss.LocationAddress != "" {
		fmt.Fprintf(&b, "Location: %s\n", iss.LocationAddress)
	}
	fmt.Fprintf(&b, "Description: %s\n", iss.Description)

	if len(comments) > 0 {
		b.WriteString("\nComments:\n")
		for _, comment := range comments {
			role := "resident"
			if comment.IsOfficial {
				role = "official"
			}
			fmt.Fprintf(&b, "- (%s) %s\n", role, comment.Content)
		}
	}

	reply, err := c.complete(ctx, summarizeSystemPrompt, b.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

const suggestSystemPrompt = `You advise a city on fixing reported civic issues.
Propose practical next steps the city or community could take.
Reply with JSON only: {"suggestions": [string]} with at most five entries.`

// SuggestSolutions asks the model for practical next steps on an issue
func (c *Client) SuggestSolutions(ctx context.Context, iss *issue.Issue) ([]string, error) {
	prompt := fmt.Sprintf("Title: %s\n\nDescription: %s\n\nCurrent status: %s", iss.Title, iss.Description, iss.Status)

	reply, err := c.complete(ctx, suggestSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var result struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := decodeJSONReply(reply, &result); err != nil {
		return nil, err
	}

	if len(result.Suggestions) > 5 {
		result.Suggestions = result.Suggestions[:5]
	}
	return result.Suggestions, nil
}

const analyzeSystemPrompt = `You analyze civic engagement data for municipal staff.
Given recent issue reports, identify what residents care about and how the city is responding.
Reply with JSON only: {"insights": [string], "trends": [string], "recommendations": [string]}.`

// AnalyzeEngagement summarizes activity across recent issues. At most
// fifty issues are included to keep the prompt bounded.
func (c *Client) AnalyzeEngagement(ctx context.Context, issues []*issue.Issue) (*EngagementAnalysis, error) {
	if len(issues) > 50 {
		issues = issues[:50]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent issues (%d):\n", len(issues))
	for _, iss := range issues {
		fmt.Fprintf(&b, "- [%s/%s] %s (views: %d)\n", iss.Status, iss.Priority, iss.Title, iss.ViewCount)
	}

	reply, err := c.complete(ctx, analyzeSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var result EngagementAnalysis
	if err := decodeJSONReply(reply, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
