package interview

import (
	"fmt"
	"strings"
)

// PromptInput is everything the interviewer persona needs to know about the
// candidate before the session opens.
type PromptInput struct {
	Name        string
	Track       string
	Difficulty  string
	ResumeFocus string
	// PastAnswers are recalled highlights from earlier sessions, used to
	// avoid repeating ground already covered.
	PastAnswers []string
}

// BuildSystemInstruction renders the interviewer system prompt for a live
// session.
func BuildSystemInstruction(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are a professional interviewer conducting a spoken mock interview. ")
	b.WriteString("Ask one question at a time, listen to the full answer, then follow up or move on. ")
	b.WriteString("Keep each of your turns under thirty seconds of speech. ")
	b.WriteString("Close the interview with two sentences of concrete feedback.\n\n")

	if in.Track != "" {
		fmt.Fprintf(&b, "The candidate is interviewing for a %s role.\n", strings.ReplaceAll(in.Track, "_", " "))
	}
	if in.Name != "" {
		fmt.Fprintf(&b, "The candidate's name is %s.\n", in.Name)
	}
	if in.Difficulty != "" {
		fmt.Fprintf(&b, "Pitch the questions at a %s level.\n", in.Difficulty)
	}
	if in.ResumeFocus != "" {
		fmt.Fprintf(&b, "Focus on this area from their resume: %s.\n", in.ResumeFocus)
	}

	if len(in.PastAnswers) > 0 {
		b.WriteString("\nThe candidate covered the following in earlier sessions; do not repeat these topics:\n")
		for _, ans := range in.PastAnswers {
			fmt.Fprintf(&b, "- %s\n", ans)
		}
	}

	return b.String()
}
