package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/pathforge/coach-backend/internal/profile"
)

// jsonGenerator is the seam between the feature methods and the model call,
// so feature logic tests without network access.
type jsonGenerator interface {
	generateJSON(ctx context.Context, system, prompt string, schema *genai.Schema, out any) error
}

// Service exposes the coaching content generators.
type Service struct {
	gen jsonGenerator
	log *slog.Logger
}

func NewService(client *Client, logger *slog.Logger) *Service {
	return &Service{
		gen: client,
		log: logger,
	}
}

const coachPersona = "You are a pragmatic career coach. Be specific and honest; " +
	"never pad answers with generic encouragement."

type RoadmapPlan struct {
	Summary string                 `json:"summary"`
	Stages  []profile.RoadmapStage `json:"stages"`
}

// Roadmap drafts a staged preparation plan from what the profile says about
// where the user is and where they want to go.
func (s *Service) Roadmap(ctx context.Context, p *profile.Profile) (*RoadmapPlan, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a career preparation roadmap.\nTarget track: %s\n", p.TargetTrack)
	if p.CurrentRole != "" {
		fmt.Fprintf(&b, "Current role: %s\n", p.CurrentRole)
	}
	if p.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", p.TargetRole)
	}
	fmt.Fprintf(&b, "Years of experience: %d\n", p.ExperienceYears)
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "Existing skills: %s\n", strings.Join(p.Skills, ", "))
	}
	b.WriteString("Produce 3 to 6 stages, each with a realistic duration in weeks.")

	var plan RoadmapPlan
	if err := s.gen.generateJSON(ctx, coachPersona, b.String(), roadmapSchema, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

type Question struct {
	Prompt     string `json:"prompt"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

func (s *Service) TechnicalQuestions(ctx context.Context, track, difficulty string, count int) ([]Question, error) {
	if count <= 0 || count > 10 {
		count = 5
	}
	if difficulty == "" {
		difficulty = "medium"
	}

	prompt := fmt.Sprintf(
		"Write %d %s-difficulty technical interview questions for the %s track. "+
			"Vary the topics; no two questions on the same topic.",
		count, difficulty, track)

	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := s.gen.generateJSON(ctx, coachPersona, prompt, questionsSchema, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

type Feedback struct {
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Summary      string   `json:"summary"`
}

func (s *Service) AnswerFeedback(ctx context.Context, question, answer string) (*Feedback, error) {
	prompt := fmt.Sprintf(
		"Grade this interview answer from 0 to 100.\nQuestion: %s\nAnswer: %s",
		question, answer)

	var fb Feedback
	if err := s.gen.generateJSON(ctx, coachPersona, prompt, feedbackSchema, &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}

type PitchScore struct {
	Clarity int    `json:"clarity"`
	Impact  int    `json:"impact"`
	Brevity int    `json:"brevity"`
	Advice  string `json:"advice"`
}

// ScorePitch grades an elevator pitch transcript on a 0-10 rubric per axis.
func (s *Service) ScorePitch(ctx context.Context, transcript, targetRole string) (*PitchScore, error) {
	prompt := fmt.Sprintf(
		"Score this elevator pitch for someone targeting a %s position. "+
			"Each axis is 0 to 10.\nPitch transcript: %s",
		targetRole, transcript)

	var score PitchScore
	if err := s.gen.generateJSON(ctx, coachPersona, prompt, pitchSchema, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

type ResumeExtract struct {
	CurrentRole     string   `json:"current_role"`
	ExperienceYears int      `json:"experience_years"`
	Skills          []string `json:"skills"`
	Highlights      []string `json:"highlights"`
}

// ParseResume turns extracted resume text into structured profile fields.
func (s *Service) ParseResume(ctx context.Context, resumeText string) (*ResumeExtract, error) {
	prompt := "Extract structured facts from this resume text. Invent nothing; " +
		"leave fields empty when the resume does not say.\n" + resumeText

	var extract ResumeExtract
	if err := s.gen.generateJSON(ctx, coachPersona, prompt, resumeSchema, &extract); err != nil {
		return nil, err
	}
	return &extract, nil
}

type NewsItem struct {
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	WhyItMatters string `json:"why_it_matters"`
}

func (s *Service) NewsDigest(ctx context.Context, track string) ([]NewsItem, error) {
	prompt := fmt.Sprintf(
		"Summarize 5 current developments someone preparing for a %s career should know about. "+
			"For each, say why it matters to a candidate.",
		track)

	var out struct {
		Items []NewsItem `json:"items"`
	}
	if err := s.gen.generateJSON(ctx, coachPersona, prompt, newsSchema, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
