package search

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"strings"

	"storefront-backend/internal/domain"
)

var (
	// ErrMissingQuery is returned when the free-text query parameter is absent.
	ErrMissingQuery = errors.New("query parameter required")
	// ErrQueryTooShort is returned by Suggest for queries under two characters.
	ErrQueryTooShort = errors.New("query must be at least 2 characters")
)

const (
	// DefaultLimit matches the search endpoint's default page size.
	DefaultLimit = 10
	// DefaultSuggestLimit bounds the suggestions endpoint.
	DefaultSuggestLimit = 5

	titleWeight       = 3.0
	descriptionWeight = 1.0

	// candidateLimit bounds how many catalog records one query scans.
	candidateLimit = 100
)

type productLister interface {
	List(ctx context.Context, limit int) ([]domain.Product, error)
	ListDeals(ctx context.Context, limit int) ([]domain.Product, error)
}

// Service translates storefront query parameters into a weighted fuzzy
// multi-field match over catalog records and reshapes the matches into hits.
// It adds no ranking of its own beyond term scoring.
type Service struct {
	repo   productLister
	logger *log.Logger
}

func New(repo productLister, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// Params carries the translated HTTP query parameters.
type Params struct {
	Query         string
	Category      string
	MinPriceCents *int64
	MaxPriceCents *int64
	Limit         int
	Offset        int
}

// Hit is one reshaped search match.
type Hit struct {
	Product    domain.Product    `json:"product"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Result is a page of hits plus paging metadata.
type Result struct {
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Hits   []Hit `json:"hits"`
}

// Search runs the fuzzy multi-field match, weighted toward the title field,
// with optional category and price-range filters.
func (s *Service) Search(ctx context.Context, p Params) (*Result, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, ErrMissingQuery
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	products, err := s.repo.List(ctx, candidateLimit)
	if err != nil {
		return nil, err
	}

	terms := tokenize(query)
	category := strings.ToLower(strings.TrimSpace(p.Category))

	var hits []Hit
	for _, prod := range products {
		if category != "" && strings.ToLower(prod.Category) != category {
			continue
		}
		if p.MinPriceCents != nil && prod.PriceCents < *p.MinPriceCents {
			continue
		}
		if p.MaxPriceCents != nil && prod.PriceCents > *p.MaxPriceCents {
			continue
		}
		score, matched := scoreProduct(prod, terms)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{
			Product:    prod,
			Score:      score,
			Highlights: highlight(prod, matched),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Product.Name < hits[j].Product.Name
	})

	total := len(hits)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	s.logger.Printf("search: query=%q total=%d limit=%d offset=%d", query, total, p.Limit, p.Offset)
	return &Result{
		Total:  total,
		Limit:  p.Limit,
		Offset: p.Offset,
		Hits:   hits[start:end],
	}, nil
}

// Suggest returns title completions for a prefix-phrase query. The query must
// be at least two characters long.
func (s *Service) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 2 {
		return nil, ErrQueryTooShort
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	products, err := s.repo.List(ctx, candidateLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, prod := range products {
		if len(out) >= limit {
			break
		}
		if !phrasePrefixMatch(prod.Name, query) {
			continue
		}
		if seen[prod.Name] {
			continue
		}
		seen[prod.Name] = true
		out = append(out, prod.Name)
	}
	return out, nil
}

// Popular returns the storefront's home-page list: current deals, topped up
// with the newest products when there are not enough deals.
func (s *Service) Popular(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	deals, err := s.repo.ListDeals(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(deals) >= limit {
		return deals[:limit], nil
	}
	rest, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(deals))
	for _, d := range deals {
		seen[d.SKU] = true
	}
	for _, p := range rest {
		if len(deals) >= limit {
			break
		}
		if seen[p.SKU] {
			continue
		}
		deals = append(deals, p)
	}
	return deals, nil
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}

// scoreProduct sums per-term field scores: title matches weigh three times
// description matches. A term matches a word exactly, by prefix, or within
// the term's edit-distance allowance.
func scoreProduct(p domain.Product, terms []string) (float64, map[string]bool) {
	matched := make(map[string]bool)
	var score float64
	titleWords := tokenize(p.Name)
	descWords := tokenize(p.Description)
	for _, term := range terms {
		if w, ok := bestWordMatch(term, titleWords); ok {
			score += titleWeight * w.strength
			matched[w.word] = true
		}
		if w, ok := bestWordMatch(term, descWords); ok {
			score += descriptionWeight * w.strength
			matched[w.word] = true
		}
	}
	return score, matched
}

type wordMatch struct {
	word     string
	strength float64
}

func bestWordMatch(term string, words []string) (wordMatch, bool) {
	best := wordMatch{}
	for _, w := range words {
		var strength float64
		switch {
		case w == term:
			strength = 1.0
		case strings.HasPrefix(w, term):
			strength = 0.75
		case levenshtein(term, w) <= fuzzAllowance(term):
			strength = 0.5
		default:
			continue
		}
		if strength > best.strength {
			best = wordMatch{word: w, strength: strength}
		}
	}
	return best, best.strength > 0
}

// fuzzAllowance mirrors the search engine's AUTO fuzziness: short terms must
// match exactly, mid-length terms allow one edit, long terms allow two.
func fuzzAllowance(term string) int {
	switch {
	case len(term) < 3:
		return 0
	case len(term) <= 5:
		return 1
	default:
		return 2
	}
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// highlight wraps matched words in <em> tags on the title and description.
func highlight(p domain.Product, matched map[string]bool) map[string]string {
	if len(matched) == 0 {
		return nil
	}
	out := make(map[string]string, 2)
	if h, changed := emphasize(p.Name, matched); changed {
		out["title"] = h
	}
	if h, changed := emphasize(p.Description, matched); changed {
		out["description"] = h
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func emphasize(text string, matched map[string]bool) (string, bool) {
	if text == "" {
		return "", false
	}
	words := strings.Fields(text)
	changed := false
	for i, w := range words {
		clean := strings.ToLower(strings.Trim(w, ".,;:!?"))
		if matched[clean] {
			words[i] = "<em>" + w + "</em>"
			changed = true
		}
	}
	if !changed {
		return "", false
	}
	return strings.Join(words, " "), true
}

func phrasePrefixMatch(title, query string) bool {
	lower := strings.ToLower(title)
	if strings.HasPrefix(lower, query) {
		return true
	}
	for i := 0; i+1 < len(lower); i++ {
		if lower[i] == ' ' && strings.HasPrefix(lower[i+1:], query) {
			return true
		}
	}
	return false
}
