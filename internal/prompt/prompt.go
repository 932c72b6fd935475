// Package prompt renders the fixed instruction that accompanies every page
// image sent to Gemini. Building a prompt is pure and deterministic: same
// options in, same string out.
package prompt

import "strings"

const ExtractionSystemPrompt = "You are a document parser. Your task is to transcribe the content of a scanned document page into markdown format. Accuracy, detail, and information preservation are of utmost importance."

const extractionInstruction = `You will be provided with the image of a single document page.

Follow these instructions to transcribe the page into markdown format:

Text: Transcribe all text content directly into markdown text, preserving the reading order.
Lists: Transcribe all lists into markdown lists, maintaining the original structure and formatting.
Images: Replace each figure or photograph with a descriptive text that accurately describes its content. Be as detailed as possible in your description.
Tables: Transcribe all tables into markdown tables. If a table contains merged cells, normalize the table by copying and appending the content from the parent cells into the normalized child cells. This ensures that as much information as possible is preserved.
Headers and Footers: Ignore any irrelevant content in the header and footer, such as the publishing company's name, logo, address, or page numbers. Focus on preserving the core content of the page.

Return the markdown inside a single fenced code block. Do not include any preamble or commentary outside the code block.`

// Options parameterize the instruction. The zero value yields the default
// prompt used for every page.
type Options struct {
	// LanguageHint, when set, tells the model which language the document is
	// written in.
	LanguageHint string
}

// Build returns the instruction text for one page image. opts may be nil.
func Build(opts *Options) string {
	if opts == nil || opts.LanguageHint == "" {
		return extractionInstruction
	}

	var b strings.Builder
	b.WriteString(extractionInstruction)
	b.WriteString("\n\nThe document is written in ")
	b.WriteString(opts.LanguageHint)
	b.WriteString(". Keep the transcription in the original language.")
	return b.String()
}
