package history

import "time"

// Conversation roles. The system prompt is re-derived per request, so only
// user and assistant turns are ever stored or replayed.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is a single message in a conversation history.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// FilterReplayable drops entries whose role is neither user nor assistant.
// Stored histories may contain system-role rows from older writers; those
// must not be replayed into a model call.
func FilterReplayable(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Role == RoleUser || e.Role == RoleAssistant {
			out = append(out, e)
		}
	}
	return out
}
