package gemini

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRawPlanObjectIngredients(t *testing.T) {
	body := "```json\n{\"ingredients\":[{\"name\":\"Argan oil\",\"howToUse\":\"Twice a week\"}],\"washFrequency\":\"Every 2 days\",\"tips\":[\"Sleep on silk\"]}\n```"
	plan, err := ParseRawPlan(body)
	require.NoError(t, err)
	require.NotNil(t, plan.WashFrequency)
	require.Equal(t, "Every 2 days", *plan.WashFrequency)
	require.Len(t, plan.Tips, 1)
	require.JSONEq(t, `[{"name":"Argan oil","howToUse":"Twice a week"}]`, string(plan.Ingredients))
	require.True(t, json.Valid(plan.RawResponse))
}

func TestParseRawPlanBareNameIngredients(t *testing.T) {
	body := `{"ingredients":["Argan oil","Aloe"],"instructions":{"Argan oil":"Twice a week"}}`
	plan, err := ParseRawPlan(body)
	require.NoError(t, err)
	require.JSONEq(t, `["Argan oil","Aloe"]`, string(plan.Ingredients))
	require.Equal(t, "Twice a week", plan.Instructions["Argan oil"])
	require.Nil(t, plan.WashFrequency)
}

func TestParseRawPlanMalformed(t *testing.T) {
	_, err := ParseRawPlan("the model apologises and refuses")
	require.Error(t, err)
}

func TestBuildPromptDeterministic(t *testing.T) {
	survey := map[string]string{"hairType": "curly", "concerns": "dryness"}
	first := buildPrompt(survey)
	second := buildPrompt(survey)
	require.Equal(t, first, second)
	require.Contains(t, first, "hairType: curly")
	require.Contains(t, first, "concerns: dryness")
}
