package chat

import (
	"encoding/json"
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/model"
)

const previewAction = "preview"

// embeddedResponse is an agent reply serialized into the content field.
type embeddedResponse struct {
	Type    string           `json:"type"`
	Content string           `json:"content"`
	Action  string           `json:"action"`
	Task    *model.TaskDraft `json:"task"`
}

// extractPreview returns the proposed draft when resp carries a preview, plus the text to show.
// The draft may sit on the response itself or inside a JSON object in Content.
func extractPreview(resp api.AgentResponse) (*model.TaskDraft, string) {
	if strings.EqualFold(resp.Action, previewAction) && resp.Task != nil {
		return cleanDraft(*resp.Task), resp.Content
	}
	text := strings.TrimSpace(resp.Content)
	if !strings.HasPrefix(text, "{") {
		return nil, resp.Content
	}
	var inner embeddedResponse
	if err := json.Unmarshal([]byte(text), &inner); err != nil {
		return nil, resp.Content
	}
	if strings.EqualFold(inner.Action, previewAction) && inner.Task != nil {
		return cleanDraft(*inner.Task), inner.Content
	}
	return nil, resp.Content
}

// cleanDraft keeps only the fields an agent may propose. Unknown priorities fall back to the
// server default.
func cleanDraft(d model.TaskDraft) *model.TaskDraft {
	out := model.TaskDraft{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		DueDate:     model.OptionalString(deref(d.DueDate)),
		Category:    model.OptionalString(deref(d.Category)),
	}
	if p, ok := model.ParsePriority(string(d.Priority)); ok {
		out.Priority = p
	}
	return &out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
