// Package prompt builds the context string sent to the answer service.
package prompt

import (
	"fmt"
	"strings"

	"docqa/internal/domain"
)

const template = `
Document Content:
%s

Instructions: Based on the document content above, please provide a comprehensive and accurate answer to the following question. If the answer is not explicitly stated in the document, indicate that the information is not available in the provided text.

Question: %s
`

// JoinContext concatenates chunk texts with single spaces.
func JoinContext(chunks []domain.Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

// Compose wraps the joined context and the question in the instruction template.
func Compose(question, joinedContext string) string {
	return strings.TrimSpace(fmt.Sprintf(template, joinedContext, question))
}
