package chat

import "strings"

// Category is the topic bucket a message falls into. The matching order is
// fixed (business, career, creator, mental health, focus, general) and the
// first hit wins, so classification is deterministic even if keyword sets
// ever overlap.
type Category string

const (
	CategoryBusiness     Category = "business_dropshipping"
	CategoryCareer       Category = "career_job"
	CategoryCreator      Category = "creator_youtube"
	CategoryMentalHealth Category = "mental_health"
	CategoryFocus        Category = "clarity_focus"
	CategoryGeneral      Category = "general"
)

var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryBusiness, []string{"dropship", "shopify", "supplier", "ads"}},
	{CategoryCareer, []string{"resume", "cv", "interview", "job", "apply"}},
	{CategoryCreator, []string{"youtube", "channel", "video", "subscribers"}},
	{CategoryMentalHealth, []string{"anxious", "depressed", "panic", "stress", "sleep"}},
	{CategoryFocus, []string{"focus", "procrast", "stuck", "discipline"}},
}

// DetectCategory classifies an outgoing message by keyword match.
func DetectCategory(text string) Category {
	t := strings.ToLower(text)
	for _, set := range categoryKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(t, kw) {
				return set.category
			}
		}
	}
	return CategoryGeneral
}

// SystemPrompt is the coach persona sent with every message.
const SystemPrompt = `You are Compass: calm, direct, and practical.
Your job is to reduce confusion and convert talk into action.

Rules:
- Ask at most ONE clarifying question at a time.
- Give 1-3 steps max.
- End with ONE next action the user can do now.
- If user is overwhelmed, narrow to one choice (A/B/C).
- If mental/health concern: be supportive, recommend professional help when appropriate, do not diagnose.
- When direction context exists, align advice with it.`

// ResponseContract returns the category-specific response-shaping
// instruction attached to the request payload.
func ResponseContract(category Category) string {
	return `Output format:
1) One-line reflection of the user's situation.
2) Ask ONE clarifying question OR give A/B/C choices (not both).
3) Provide a mini plan (max 3 steps).
4) End with: "Your next step: ____" (one concrete action).

Category guidance:
- business_dropshipping: ask about budget, niche, traffic source; give safe, legal steps; avoid unrealistic claims.
- career_job: ask role + deadline; deliver tailored prep plan, resume bullets, interview practice.
- creator_youtube: ask niche + upload capacity; give content plan + first 3 videos.
- mental_health: be supportive; do not diagnose; suggest professional help if self-harm or crisis; give grounding + practical next step.
- clarity_focus: reduce overwhelm; shrink task; commit to 10-minute action.

Detected category: ` + string(category)
}
