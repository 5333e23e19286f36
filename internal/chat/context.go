package chat

import (
	"context"
	"encoding/json"

	"github.com/novahuman/compass/internal/api"
	"github.com/novahuman/compass/internal/models"
)

// LoadExecContext fetches the execution context attached to sends: the
// direction title and today's check-in. Both fetches are best-effort; a
// failure just leaves the field empty.
func LoadExecContext(ctx context.Context, client *api.Client) models.ChatContext {
	var execCtx models.ChatContext

	if raw, err := client.Get(ctx, "/memory/direction"); err == nil {
		var parsed struct {
			Title     string `json:"title"`
			Direction *struct {
				Title string `json:"title"`
			} `json:"direction"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			execCtx.Direction = parsed.Title
			if execCtx.Direction == "" && parsed.Direction != nil {
				execCtx.Direction = parsed.Direction.Title
			}
		}
	}

	if raw, err := client.Get(ctx, "/memory/checkin/today"); err == nil {
		var parsed struct {
			Tone        string `json:"tone"`
			TodayAction string `json:"today_action"`
			Checkin     *struct {
				TodayAction string `json:"today_action"`
			} `json:"checkin"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			execCtx.Tone = parsed.Tone
			execCtx.TodayAction = parsed.TodayAction
			if execCtx.TodayAction == "" && parsed.Checkin != nil {
				execCtx.TodayAction = parsed.Checkin.TodayAction
			}
		}
	}

	return execCtx
}
