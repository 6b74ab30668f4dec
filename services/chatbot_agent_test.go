package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourcesWereUsed(t *testing.T) {
	docContext := "Photosynthesis converts light into chemical energy."

	t.Run("grounded answer counts as sourced", func(t *testing.T) {
		assert.True(t, SourcesWereUsed(docContext, "According to the document, photosynthesis converts light into energy."))
	})

	t.Run("empty context is never sourced", func(t *testing.T) {
		assert.False(t, SourcesWereUsed("", "Photosynthesis is great."))
		assert.False(t, SourcesWereUsed("  \n ", "Photosynthesis is great."))
	})

	t.Run("decline phrases mark the reply unsourced", func(t *testing.T) {
		declines := []string{
			"I couldn't find information about that in your document.",
			"That appears to be OUTSIDE THE SCOPE of the uploaded material.",
			"This topic is not covered in the document.",
			"That is not mentioned in the material.",
		}
		for _, reply := range declines {
			assert.False(t, SourcesWereUsed(docContext, reply), "reply: %s", reply)
		}
	})
}
