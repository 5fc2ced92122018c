package rag

import (
	"fmt"

	wl "github.com/abadojack/whatlanggo"
)

const minLangConfidence = 0.5

// languageHint asks the model to answer in the language of the question. Short
// or mixed inputs detect poorly, so low-confidence results yield no hint.
func languageHint(question string) string {
	info := wl.Detect(question)
	if info.Confidence < minLangConfidence {
		return ""
	}
	return fmt.Sprintf("Answer in %s.", info.Lang.String())
}
