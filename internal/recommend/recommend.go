// Package recommend turns a user's age and self-reported conditions into a
// short list of health content.
//
// A Recommender is built once from the loaded tables and never mutated, so a
// single instance can serve concurrent requests without locking.
package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Skufu/healthrec/internal/content"
	"github.com/Skufu/healthrec/internal/similarity"
)

const (
	DefaultReference = "Exercise for a Healthy Heart"
	DefaultLimit     = 5
)

// ErrReferenceNotFound is returned when the reference item is not among the
// items eligible for the requested age.
var ErrReferenceNotFound = errors.New("reference content item not found")

// Request is the input to Recommend. BMI is carried through but does not
// influence the result.
type Request struct {
	Age        int
	BMI        float64
	Conditions []string
}

type Recommender struct {
	items      []content.Item
	conditions map[string]string
	matrix     *similarity.Matrix
	reference  string
	limit      int
	log        zerolog.Logger
	observe    func(matched, unmatched int)
}

type Option func(*Recommender)

// WithReference sets the title of the item every ranking is anchored on.
func WithReference(title string) Option {
	return func(r *Recommender) {
		if title != "" {
			r.reference = title
		}
	}
}

// WithLimit caps the number of ranked content items.
func WithLimit(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.limit = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Recommender) {
		r.log = l
	}
}

// WithConditionObserver registers fn to receive the matched and unmatched
// counts of every MatchConditions call.
func WithConditionObserver(fn func(matched, unmatched int)) Option {
	return func(r *Recommender) {
		r.observe = fn
	}
}

// New indexes the condition table and computes the similarity matrix over
// all item texts.
func New(items []content.Item, conditions []content.Condition, opts ...Option) *Recommender {
	r := &Recommender{
		items:      items,
		conditions: make(map[string]string, len(conditions)),
		reference:  DefaultReference,
		limit:      DefaultLimit,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	// First row wins on duplicate names; blank names can never match.
	for _, c := range conditions {
		key := strings.ToLower(c.Name)
		if key == "" {
			continue
		}
		if _, ok := r.conditions[key]; !ok {
			r.conditions[key] = c.Recommendation
		}
	}

	docs := make([]string, len(items))
	for i, item := range items {
		docs[i] = item.Text
	}
	r.matrix = similarity.NewMatrix(docs)

	r.log.Debug().
		Int("items", len(items)).
		Int("conditions", len(r.conditions)).
		Str("reference", r.reference).
		Msg("recommender ready")
	return r
}

// Eligible returns the indices of items visible at the given age, in table
// order. Buckets are cumulative: "All" always, "30+" from 30, "40+" from 40.
func (r *Recommender) Eligible(age int) []int {
	var out []int
	for i, item := range r.items {
		if eligible(item.AgeGroup, age) {
			out = append(out, i)
		}
	}
	return out
}

func eligible(group string, age int) bool {
	switch group {
	case content.AgeGroupAll:
		return true
	case content.AgeGroup30:
		return age >= 30
	case content.AgeGroup40:
		return age >= 40
	default:
		return false
	}
}

type scored struct {
	idx   int
	score float64
}

// RankContent returns up to limit eligible items ordered by similarity to
// the reference item, which itself is never part of the result.
func (r *Recommender) RankContent(age int) ([]string, error) {
	pool := r.Eligible(age)

	ref := -1
	for _, idx := range pool {
		if r.items[idx].Text == r.reference {
			ref = idx
			break
		}
	}
	if ref < 0 {
		return nil, fmt.Errorf("%w: %q for age %d", ErrReferenceNotFound, r.reference, age)
	}

	candidates := make([]scored, 0, len(pool))
	for _, idx := range pool {
		if idx == ref {
			continue
		}
		candidates = append(candidates, scored{idx: idx, score: r.matrix.Score(ref, idx)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	n := min(r.limit, len(candidates))
	out := make([]string, 0, n)
	for _, c := range candidates[:n] {
		out = append(out, r.items[c.idx].Text)
	}
	return out, nil
}

// MatchConditions looks up each condition case- and whitespace-insensitively
// and returns the recommendations found, in input order. Unknown conditions
// are skipped.
func (r *Recommender) MatchConditions(conditions []string) []string {
	var out []string
	unmatched := 0
	for _, cond := range conditions {
		key := strings.ToLower(strings.TrimSpace(cond))
		if key == "" {
			continue
		}
		if rec, ok := r.conditions[key]; ok {
			out = append(out, rec)
			continue
		}
		unmatched++
		r.log.Debug().Str("condition", cond).Msg("no recommendation for condition")
	}
	if r.observe != nil {
		r.observe(len(out), unmatched)
	}
	return out
}

// Recommend returns the ranked content list followed by condition specific
// recommendations.
func (r *Recommender) Recommend(req Request) ([]string, error) {
	ranked, err := r.RankContent(req.Age)
	if err != nil {
		return nil, err
	}
	return append(ranked, r.MatchConditions(req.Conditions)...), nil
}

// BMI returns weight (kg) divided by height (m) squared.
func BMI(weight, height float64) float64 {
	return weight / (height * height)
}

// SplitConditions splits the free-text conditions field on commas. Names
// containing a literal comma cannot be expressed this way.
func SplitConditions(field string) []string {
	return strings.Split(field, ",")
}
