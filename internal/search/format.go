package search

import "strings"

// FormatResponse renders a search outcome for inclusion in a model prompt.
// Each result becomes a bolded title line followed by its content and a
// trailing newline; blocks are joined with a blank line between them. A
// failed response renders as a single "Search Error:" line so the model can
// react to the search being unavailable.
func FormatResponse(resp Response) string {
	if resp.Failed() {
		return "Search Error: " + resp.Err.Message
	}
	blocks := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		blocks = append(blocks, "**"+r.Title+"**\n"+r.Content+"\n")
	}
	return strings.Join(blocks, "\n")
}
