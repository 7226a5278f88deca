package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

//splitter

func splitTextIntoChunks(text string, limit int, overlap int) []string {
	var chunks []string

	// If text is already small enough, just return it
	if len(text) <= limit {
		return []string{text}
	}

	// Separators ordered from "best" to "worst" for semantic meaning. The
	// empty separator always matches and splits per rune, so even a text
	// with no whitespace at all still chunks cleanly.
	separators := []string{"\n\n", "\n", ". ", " ", ""}

	var splitChar string
	for _, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			break
		}
	}

	parts := strings.Split(text, splitChar)
	var currentChunk strings.Builder

	for _, part := range parts {
		// If adding the part exceeds the limit
		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
			}

			// Start the next chunk with the tail of the previous one so
			// sentences cut at a boundary stay retrievable from both sides
			overlapContent := ""
			if currentChunk.Len() > overlap {
				tail := currentChunk.String()
				cut := len(tail) - overlap
				// back up to a rune boundary, the byte offset may land
				// mid-character
				for cut > 0 && !utf8.RuneStart(tail[cut]) {
					cut--
				}
				overlapContent = tail[cut:]
			}

			currentChunk.Reset()
			currentChunk.WriteString(overlapContent)
		}

		if currentChunk.Len() > 0 && splitChar != "" {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

func sectionForPage(page int) commonModels.Section {
	if page == 0 {
		return commonModels.SectionAbstract
	}
	return commonModels.SectionBody
}

// PrepareChunks splits each page independently so no chunk ever spans a
// page boundary, which keeps the page number on every chunk exact.
func PrepareChunks(pages []string, sourceName string) []commonModels.Chunk {
	var allChunks []commonModels.Chunk

	for pageNum, pageText := range pages {
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		stringChunks := splitTextIntoChunks(pageText, config.ChunkTargetSize, config.ChunkOverlap)

		for _, text := range stringChunks {
			allChunks = append(allChunks, commonModels.Chunk{
				Id:      utils.GetNewUUID(),
				Text:    text,
				Source:  sourceName,
				Page:    pageNum,
				Section: sectionForPage(pageNum),
				Type:    commonModels.ChunkTypeDocument,
			})
		}
	}

	return allChunks
}
