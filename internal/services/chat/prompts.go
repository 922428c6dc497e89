package chat

import (
	"fmt"
	"strings"

	"github.com/serendiv/pulse/internal/models"
)

const systemPrompt = `You are a news intelligence assistant covering Sri Lankan current affairs.
Answer concisely and factually. When article excerpts are provided, base your
answer only on those excerpts and cite them by number, e.g. [1]. If the
excerpts do not cover the question, say so. When no excerpts are provided,
answer from general knowledge and state clearly that the answer is not based
on indexed articles.`

// groundedPrompt lays the retrieved excerpts out as a numbered context block
// ahead of the question.
func groundedPrompt(query string, matches []models.RetrievedExcerpt) string {
	var sb strings.Builder
	sb.WriteString("Relevant article excerpts:\n\n")

	for i, match := range matches {
		sb.WriteString(fmt.Sprintf("[%d] %s (%s, published %s)\n%s\n\n",
			i+1,
			match.Title,
			match.Sector,
			match.PublishedAt.Format("2006-01-02"),
			match.Excerpt))
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	return sb.String()
}

// ungroundedPrompt asks the question directly, flagging the missing context.
func ungroundedPrompt(query string) string {
	return "No indexed articles matched this question. Answer from general knowledge " +
		"and say that the answer is not based on indexed articles.\n\nQuestion: " + query
}
