// ABOUTME: Help page handler backed by embedded markdown topics
// ABOUTME: Converts the selected topic to HTML with goldmark

package web

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

// helpTopic represents a help documentation topic.
type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

// handleHelpPage renders the help page for the selected topic.
func (h *Handler) handleHelpPage(w http.ResponseWriter, r *http.Request) {
	selectedTopic := r.URL.Query().Get("topic")
	if selectedTopic == "" {
		selectedTopic = "getting-started"
	}

	// List all help topics
	entries, err := helpDocsFS.ReadDir("docs")
	if err != nil {
		h.logger.Error("failed to read help docs", "error", err)
		http.Error(w, "Failed to load help", http.StatusInternalServerError)
		return
	}

	var topics []helpTopic
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(entry.Name(), ".md")
		topics = append(topics, helpTopic{
			Slug:   slug,
			Title:  formatHelpTitle(slug),
			Active: slug == selectedTopic,
		})
	}

	// Sort topics in a logical order
	topicOrder := map[string]int{
		"getting-started": 1,
		"exchange-rates":  2,
		"inflation":       3,
		"interest-rates":  4,
		"data-refresh":    5,
		"security":        6,
	}
	sort.Slice(topics, func(i, j int) bool {
		orderI, okI := topicOrder[topics[i].Slug]
		orderJ, okJ := topicOrder[topics[j].Slug]
		if !okI {
			orderI = 100
		}
		if !okJ {
			orderJ = 100
		}
		if orderI != orderJ {
			return orderI < orderJ
		}
		return topics[i].Slug < topics[j].Slug
	})

	// Read and convert the selected topic
	mdPath := filepath.Join("docs", selectedTopic+".md")
	mdContent, err := helpDocsFS.ReadFile(mdPath)
	if err != nil {
		h.logger.Error("failed to read help topic", "topic", selectedTopic, "error", err)
		mdContent = []byte("# Not Found\n\nThis help topic could not be found.")
	}

	// Convert markdown to HTML
	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(mdContent, &htmlBuf); err != nil {
		h.logger.Error("failed to convert markdown", "error", err)
		htmlBuf.WriteString("<p>Failed to render help content.</p>")
	}

	h.renderHelpPage(w, helpPageData{
		Title:   "Help",
		Topics:  topics,
		Content: template.HTML(htmlBuf.String()),
	})
}

// formatHelpTitle converts a slug to a display title.
func formatHelpTitle(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
