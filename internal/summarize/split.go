// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

// SplitText windows text into ordered, overlapping chunks of at most
// chunkSize characters. Consecutive windows share exactly overlap characters
// (clamped to chunkSize/2) and the final window ends at len(text), so
// concatenating the chunks with the overlap removed reproduces the input.
// Text no longer than chunkSize yields a single chunk equal to the input.
func SplitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		return []string{text}
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap > chunkSize/2 {
		overlap = chunkSize / 2
	}

	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end >= len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}
