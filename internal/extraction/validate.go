package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// parsePayload walks the decoded model output without assuming shape. Fields
// are taken only when they carry a usable type; entries without a readable
// exercise name are preserved in Unmatched instead of being dropped.
func parsePayload(payload map[string]any) Extraction {
	out := Extraction{
		PlanName:    stringField(payload, "name", "plan_name"),
		Description: stringField(payload, "description"),
	}
	if out.PlanName == "" {
		out.PlanName = "Workout Plan"
	}

	rawWorkouts, ok := payload["workouts"].([]any)
	if !ok {
		if _, present := payload["workouts"]; present {
			out.Unmatched = append(out.Unmatched, compact(payload["workouts"]))
		}
		return out
	}

	for i, rw := range rawWorkouts {
		wm, ok := rw.(map[string]any)
		if !ok {
			out.Unmatched = append(out.Unmatched, compact(rw))
			continue
		}

		workout := RawWorkout{
			Name:      stringField(wm, "name"),
			DayNumber: intField(wm, "day_number"),
		}
		if workout.Name == "" {
			workout.Name = fmt.Sprintf("Workout %d", i+1)
		}
		if workout.DayNumber <= 0 {
			workout.DayNumber = i + 1
		}

		rawItems, _ := wm["exercises"].([]any)
		for _, ri := range rawItems {
			item, ok := parseItem(ri)
			if !ok {
				out.Unmatched = append(out.Unmatched, compact(ri))
				continue
			}
			item.Sequence = len(workout.Items)
			workout.Items = append(workout.Items, item)
		}
		out.Workouts = append(out.Workouts, workout)
	}
	return out
}

// parseItem accepts an exercise entry. A readable name is the only hard
// requirement; sets and reps come through either as plain numbers or as the
// per-set array form the service sometimes emits.
func parseItem(raw any) (RawItem, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return RawItem{}, false
	}

	item := RawItem{
		OriginalText: stringField(m, "original_text", "exercise", "name"),
		Sets:         intField(m, "sets"),
		RepsMin:      intField(m, "reps_min"),
		RepsMax:      intField(m, "reps_max"),
		RestSeconds:  intField(m, "rest_seconds"),
		Notes:        stringField(m, "notes"),
	}
	if item.OriginalText == "" {
		return RawItem{}, false
	}

	if setList, ok := m["sets"].([]any); ok {
		item.Sets = len(setList)
		for _, s := range setList {
			sm, ok := s.(map[string]any)
			if !ok {
				continue
			}
			if lo := intField(sm, "reps_min"); lo > 0 && (item.RepsMin == 0 || lo < item.RepsMin) {
				item.RepsMin = lo
			}
			if hi := intField(sm, "reps_max"); hi > item.RepsMax {
				item.RepsMax = hi
			}
		}
	}

	if item.Sets < 0 {
		item.Sets = 0
	}
	if item.RepsMin < 0 {
		item.RepsMin = 0
	}
	if item.RepsMax < item.RepsMin {
		item.RepsMax = item.RepsMin
	}
	if item.RestSeconds < 0 {
		item.RestSeconds = 0
	}
	return item, true
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok {
			if clean := strings.TrimSpace(v); clean != "" {
				return clean
			}
		}
	}
	return ""
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}

func compact(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(buf)
}
