// Package catalog holds the predefined reports shown in the Top Insights view.
//
// Entries are operator-authored, parameterless SELECT statements. They are trusted by
// construction and never pass through the free-form read-only check.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Chart selects an extra visualisation rendered next to the result table.
type Chart int

const (
	// ChartNone renders the table only.
	ChartNone Chart = iota
	// ChartBar renders a bar chart keyed by the first column, valued by the second.
	ChartBar
)

// ParseChart maps the config spelling ("", "bar") to a Chart.
func ParseChart(s string) (Chart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "table":
		return ChartNone, nil
	case "bar":
		return ChartBar, nil
	}
	return ChartNone, fmt.Errorf("unknown chart %q", s)
}

// Entry is one report.
type Entry struct {
	// ID is the stable, command-line friendly name (e.g. "in-demand-skills").
	ID    string
	Label string
	SQL   string
	Chart Chart
}

// Catalog is an ordered, immutable list of entries.
type Catalog struct {
	entries []Entry
}

// Built-in report queries.
const (
	topPayingJobsSQL = `SELECT job_title, salary_range, company_id
FROM Job_Postings
ORDER BY CAST(REPLACE(REPLACE(salary_range, 'K', ''), '$', '') AS INTEGER) DESC
LIMIT 5`

	inDemandSkillsSQL = `SELECT s.skill_name, COUNT(*) AS demand
FROM Job_Skills js
JOIN Skills s ON js.skill_id = s.skill_id
GROUP BY s.skill_name
ORDER BY demand DESC
LIMIT 10`

	topHiringCompaniesSQL = `SELECT c.company_name, COUNT(j.job_id) AS job_post_count
FROM Companies c
JOIN Job_Postings j ON c.company_id = j.company_id
GROUP BY c.company_name
ORDER BY job_post_count DESC
LIMIT 10`
)

// Builtin returns the three reports of the job market dashboard, in display order.
func Builtin() []Entry {
	return []Entry{
		{ID: "top-paying-jobs", Label: "Top 5 Highest Paying Jobs", SQL: topPayingJobsSQL},
		{ID: "in-demand-skills", Label: "Top 10 Most In-Demand Skills", SQL: inDemandSkillsSQL, Chart: ChartBar},
		{ID: "top-hiring-companies", Label: "Companies with Most Job Postings", SQL: topHiringCompaniesSQL},
	}
}

// Default is the catalog made of the built-in reports only.
func Default() *Catalog {
	c, err := New(Builtin()...)
	if err != nil {
		panic(err) // built-ins are constants
	}
	return c
}

// New builds a catalog. IDs and labels must be non-empty and unique (labels compared
// case-insensitively), and every entry needs SQL.
func New(entries ...Entry) (*Catalog, error) {
	ids := make(map[string]bool, len(entries))
	labels := make(map[string]bool, len(entries))
	out := make([]Entry, 0, len(entries))

	for i, e := range entries {
		e.ID = strings.TrimSpace(e.ID)
		e.Label = strings.TrimSpace(e.Label)
		e.SQL = strings.TrimSpace(e.SQL)
		switch {
		case e.ID == "":
			return nil, fmt.Errorf("catalog entry %d: empty id", i)
		case e.Label == "":
			return nil, fmt.Errorf("catalog entry %q: empty label", e.ID)
		case e.SQL == "":
			return nil, fmt.Errorf("catalog entry %q: empty sql", e.ID)
		case ids[e.ID]:
			return nil, fmt.Errorf("catalog entry %q: duplicate id", e.ID)
		case labels[strings.ToLower(e.Label)]:
			return nil, fmt.Errorf("catalog entry %q: duplicate label %q", e.ID, e.Label)
		}
		ids[e.ID] = true
		labels[strings.ToLower(e.Label)] = true
		out = append(out, e)
	}
	return &Catalog{entries: out}, nil
}

// With returns a new catalog with extra entries appended after the existing ones.
func (c *Catalog) With(extra ...Entry) (*Catalog, error) {
	all := make([]Entry, 0, len(c.entries)+len(extra))
	all = append(all, c.entries...)
	all = append(all, extra...)
	return New(all...)
}

// Entries returns a copy of the entries in display order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Labels returns the display labels in order, for selectors.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Label
	}
	return out
}

// Len is the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// ErrUnknownReport is returned by Lookup when nothing matches.
var ErrUnknownReport = errors.New("unknown report")

// Lookup finds an entry by ID or by label (case-insensitive).
func (c *Catalog) Lookup(key string) (Entry, error) {
	key = strings.TrimSpace(key)
	for _, e := range c.entries {
		if e.ID == key || strings.EqualFold(e.Label, key) {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w %q; available: %s", ErrUnknownReport, key, strings.Join(c.ids(), ", "))
}

func (c *Catalog) ids() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.ID
	}
	return out
}
