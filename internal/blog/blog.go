package blog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"productpulse-backend/internal/models"
)

const (
	CategoryAll     = "all"
	DefaultCategory = "General"

	excerptLength  = 150
	wordsPerMinute = 200
)

var Categories = []string{
	CategoryAll,
	"Product Research",
	"Business Strategy",
	"Marketing Psychology",
	"Trends",
	"Case Studies",
}

var ErrMissingFields = errors.New("title, content and author are required")

// Draft is what an admin submits from the editor.
type Draft struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Author   string   `json:"author"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`
}

// NewPost fills in the derived fields of a post from d.
func NewPost(d Draft, now time.Time) (*models.Post, error) {
	title := strings.TrimSpace(d.Title)
	content := strings.TrimSpace(d.Content)
	author := strings.TrimSpace(d.Author)
	if title == "" || content == "" || author == "" {
		return nil, ErrMissingFields
	}

	excerpt := strings.TrimSpace(d.Excerpt)
	if excerpt == "" {
		excerpt = truncate(content, excerptLength) + "..."
	}
	category := strings.TrimSpace(d.Category)
	if category == "" || category == CategoryAll {
		category = DefaultCategory
	}

	return &models.Post{
		Title:     title,
		Excerpt:   excerpt,
		Content:   content,
		Author:    author,
		Date:      now.UTC().Format(time.DateOnly),
		ReadTime:  ReadTime(content),
		Category:  category,
		Tags:      normalizeTags(d.Tags),
		Featured:  d.Featured,
		CreatedAt: now,
	}, nil
}

// ReadTime estimates reading time at 200 words per minute, rounded up.
func ReadTime(content string) string {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}

// Filter keeps posts whose title or excerpt contains query (case-insensitive)
// and whose category matches. An empty or "all" category matches everything.
func Filter(posts []models.Post, query, category string) []models.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Excerpt), q) {
			continue
		}
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func Featured(posts []models.Post) []models.Post {
	out := make([]models.Post, 0)
	for _, p := range posts {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
