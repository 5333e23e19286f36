package progress

import (
	"strings"

	"github.com/novahuman/compass/internal/models"
)

// Suggest is the local mentor: a small heuristic over the debrief's blocker
// so the user gets a next step even with the backend unreachable.
func Suggest(d models.Debrief) string {
	var out strings.Builder
	out.WriteString("Top priority: do the next smallest step.\n")

	if strings.TrimSpace(d.Summary) == "" {
		out.WriteString("\nFirst write a 1-line summary of what you did. Keep it simple.")
		return out.String()
	}

	blocker := strings.ToLower(strings.TrimSpace(d.Blocker))
	switch {
	case containsAny(blocker, "error", "bug", "import"):
		out.WriteString("\nNext step: reproduce the issue in the smallest case, then fix ONE root cause.")
	case containsAny(blocker, "time", "late", "tired"):
		out.WriteString("\nNext step: cut scope. Pick a 10-minute version of the task and finish it.")
	case containsAny(blocker, "confus", "not sure"):
		out.WriteString("\nNext step: write 3 micro tasks (10 min each). Choose the easiest and start.")
	case strings.TrimSpace(d.Next) != "":
		out.WriteString("\nNext step: " + strings.TrimSpace(d.Next))
	default:
		out.WriteString("\nNext step: write the next action in one sentence and do it.")
	}

	out.WriteString("\n\nRule: one action, done, then decide the next.")
	return out.String()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
