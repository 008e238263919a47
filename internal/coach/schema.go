package coach

import "google.golang.org/genai"

// Output shapes for each generator. The model is forced onto these schemas
// instead of being asked nicely for JSON.

var roadmapSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"stages": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":          {Type: genai.TypeString},
					"description":    {Type: genai.TypeString},
					"duration_weeks": {Type: genai.TypeInteger},
					"skills": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"title", "description", "duration_weeks"},
			},
		},
	},
	Required: []string{"summary", "stages"},
}

var questionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"prompt":     {Type: genai.TypeString},
					"topic":      {Type: genai.TypeString},
					"difficulty": {Type: genai.TypeString},
				},
				Required: []string{"prompt", "topic", "difficulty"},
			},
		},
	},
	Required: []string{"questions"},
}

var feedbackSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":        {Type: genai.TypeInteger},
		"strengths":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"improvements": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"summary":      {Type: genai.TypeString},
	},
	Required: []string{"score", "strengths", "improvements", "summary"},
}

var pitchSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"clarity": {Type: genai.TypeInteger},
		"impact":  {Type: genai.TypeInteger},
		"brevity": {Type: genai.TypeInteger},
		"advice":  {Type: genai.TypeString},
	},
	Required: []string{"clarity", "impact", "brevity", "advice"},
}

var resumeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"current_role":     {Type: genai.TypeString},
		"experience_years": {Type: genai.TypeInteger},
		"skills":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"highlights":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"skills"},
}

var newsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":          {Type: genai.TypeString},
					"summary":        {Type: genai.TypeString},
					"why_it_matters": {Type: genai.TypeString},
				},
				Required: []string{"title", "summary", "why_it_matters"},
			},
		},
	},
	Required: []string{"items"},
}
