// Package board derives the filterable archive views and the status kanban
// from a vault snapshot. Every function is pure and recomputed per call.
package board

import (
	"sort"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
)

// Any matches every value of a facet
const Any = "all"

// Criteria narrows an archive listing. Empty or Any fields match everything.
type Criteria struct {
	Language string
	Month    string
	// Location is used to derive month names; nil means time.Local
	Location *time.Location
}

// Column is one kanban lane
type Column struct {
	Status models.Status      `json:"status"`
	Label  string             `json:"label"`
	Items  []models.VaultItem `json:"items"`
}

// AvailableLanguages returns the distinct source languages, sorted
func AvailableLanguages(items []models.VaultItem) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, item := range items {
		if _, ok := seen[item.SourceLanguage]; ok {
			continue
		}
		seen[item.SourceLanguage] = struct{}{}
		out = append(out, item.SourceLanguage)
	}
	sort.Strings(out)
	return out
}

// AvailableMonths returns the distinct month names of item creation times in calendar order
func AvailableMonths(items []models.VaultItem, loc *time.Location) []string {
	var present [13]bool
	for _, item := range items {
		present[monthOf(item, loc)] = true
	}

	out := []string{}
	for m := time.January; m <= time.December; m++ {
		if present[m] {
			out = append(out, m.String())
		}
	}
	return out
}

// Filter keeps items matching every set criterion, preserving order
func Filter(items []models.VaultItem, c Criteria) []models.VaultItem {
	out := []models.VaultItem{}
	for _, item := range items {
		if constrained(c.Language) && item.SourceLanguage != c.Language {
			continue
		}
		if constrained(c.Month) && monthOf(item, c.Location).String() != c.Month {
			continue
		}
		out = append(out, item)
	}
	return out
}

// GroupByStatus partitions items by status. All three statuses are always
// present. Empty or unrecognized statuses count as not-visited.
func GroupByStatus(items []models.VaultItem) map[models.Status][]models.VaultItem {
	groups := make(map[models.Status][]models.VaultItem, 3)
	for _, s := range models.Statuses() {
		groups[s] = []models.VaultItem{}
	}
	for _, item := range items {
		s := item.Status.Normalize()
		if !s.Valid() {
			s = models.StatusNotVisited
		}
		groups[s] = append(groups[s], item)
	}
	return groups
}

// Columns returns the kanban lanes in workflow order
func Columns(items []models.VaultItem) []Column {
	groups := GroupByStatus(items)
	cols := make([]Column, 0, len(groups))
	for _, s := range models.Statuses() {
		cols = append(cols, Column{Status: s, Label: s.Label(), Items: groups[s]})
	}
	return cols
}

func constrained(v string) bool {
	return v != "" && v != Any
}

func monthOf(item models.VaultItem, loc *time.Location) time.Month {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(item.CreatedAt).In(loc).Month()
}
