package careplan

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Placeholder strings substituted for absent generation output.
const (
	PlaceholderIngredient   = "Unknown Ingredient"
	PlaceholderInstructions = "No instructions available"
	PlaceholderWash         = "Not specified"
	PlaceholderTip          = "No tip available"
)

// Normalize collapses a raw generation payload into the canonical plan shape.
// It is total: any input yields a usable plan. The returned strings are
// warning diagnostics for the caller to log.
func Normalize(raw RawPlan) (CanonicalPlan, []string) {
	plan := CanonicalPlan{
		WashFrequency: PlaceholderWash,
		Tips:          []string{},
		Instructions:  map[string]string{},
		Resources:     []string{},
		RawResponse:   raw.RawResponse,
	}
	if raw.Instructions != nil {
		plan.Instructions = raw.Instructions
	}
	if raw.Resources != nil {
		plan.Resources = raw.Resources
	}
	if raw.WashFrequency != nil && strings.TrimSpace(*raw.WashFrequency) != "" {
		plan.WashFrequency = *raw.WashFrequency
	}
	for _, tip := range raw.Tips {
		if tip == nil || strings.TrimSpace(*tip) == "" {
			plan.Tips = append(plan.Tips, PlaceholderTip)
			continue
		}
		plan.Tips = append(plan.Tips, *tip)
	}

	var warnings []string
	plan.Ingredients, warnings = normalizeIngredients(raw)
	return plan, warnings
}

// normalizeIngredients reconciles the two wire shapes the generation service
// uses for ingredients: objects carrying their own usage text, or bare names
// resolved through the top-level instructions map.
func normalizeIngredients(raw RawPlan) ([]Ingredient, []string) {
	entries, ok := decodeArray(raw.Ingredients)
	if !ok {
		return []Ingredient{}, []string{"ingredients missing or not an array"}
	}
	if len(entries) == 0 {
		return []Ingredient{}, nil
	}

	if hasNameField(entries[0]) {
		out := make([]Ingredient, 0, len(entries))
		for _, entry := range entries {
			out = append(out, decodeNamedEntry(entry))
		}
		return out, nil
	}

	out := make([]Ingredient, 0, len(entries))
	for _, entry := range entries {
		name, decoded := decodeString(entry)
		if !decoded || strings.TrimSpace(name) == "" {
			name = PlaceholderIngredient
		}
		howToUse := PlaceholderInstructions
		if use, found := raw.Instructions[name]; found && strings.TrimSpace(use) != "" {
			howToUse = use
		}
		out = append(out, Ingredient{Name: name, HowToUse: howToUse})
	}
	return out, nil
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func hasNameField(entry json.RawMessage) bool {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	_, found := probe["name"]
	return found
}

func decodeNamedEntry(entry json.RawMessage) Ingredient {
	ing := Ingredient{Name: PlaceholderIngredient, HowToUse: PlaceholderInstructions}
	var wire struct {
		Name     *string `json:"name"`
		HowToUse *string `json:"howToUse"`
	}
	if err := json.Unmarshal(entry, &wire); err != nil {
		return ing
	}
	if wire.Name != nil && strings.TrimSpace(*wire.Name) != "" {
		ing.Name = *wire.Name
	}
	if wire.HowToUse != nil && strings.TrimSpace(*wire.HowToUse) != "" {
		ing.HowToUse = *wire.HowToUse
	}
	return ing
}

func decodeString(entry json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(entry, &s); err != nil {
		return "", false
	}
	return s, true
}
