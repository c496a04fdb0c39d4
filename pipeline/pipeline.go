// Package pipeline derives the displayed page of restaurants from the fetched
// record set and the current view inputs. Every function here is pure.
package pipeline

import (
	"math"
	"sort"
	"strings"

	"dinefind/geo"
	"dinefind/models"
)

const (
	// DefaultPageSize is the number of cards shown per page.
	DefaultPageSize = 12

	// windowWidth is the number of page links offered by the pager.
	windowWidth = 5
)

// View is the set of inputs the displayed page depends on.
type View struct {
	Query          string
	SortByDistance bool
	Location       *geo.Coordinate
	Page           int
}

// Item is one displayed record.
type Item struct {
	Restaurant models.Restaurant `json:"restaurant"`
	// Index is the record's position in the filtered, sorted set.
	Index int `json:"index"`
	// Distance in km from the user's location, nil when the location is
	// unknown or the record's coordinates do not parse.
	Distance *float64 `json:"distance,omitempty"`
}

// Result is the derived page.
type Result struct {
	Items      []Item `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	// Filtered is the size of the filtered set, Total the size of the full set.
	Filtered int `json:"filtered"`
	Total    int `json:"total"`
	// From and To are the 1-based bounds of the shown rows, both zero when
	// nothing is shown.
	From   int   `json:"from"`
	To     int   `json:"to"`
	Window []int `json:"window"`
}

// Compute runs filter, sort and paginate over records. The requested page is
// clamped to [1, max(1, TotalPages)].
func Compute(records []models.Restaurant, v View, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	filtered := Filter(records, v.Query)
	if v.SortByDistance && v.Location != nil {
		filtered = SortByDistance(filtered, *v.Location)
	}

	total := TotalPages(len(filtered), pageSize)
	page := ClampPage(v.Page, total)
	start, end := Bounds(page, pageSize, len(filtered))

	items := make([]Item, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, Item{
			Restaurant: filtered[i],
			Index:      i,
			Distance:   distanceTo(filtered[i], v.Location),
		})
	}

	res := Result{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total,
		Filtered:   len(filtered),
		Total:      len(records),
		Window:     Window(page, total),
	}
	if end > start {
		res.From, res.To = start+1, end
	}
	return res
}

// Filter keeps records whose name, road, suburb or city contains query,
// case-insensitively. A blank query returns records unchanged.
func Filter(records []models.Restaurant, query string) []models.Restaurant {
	if strings.TrimSpace(query) == "" {
		return records
	}

	q := strings.ToLower(query)
	out := make([]models.Restaurant, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r models.Restaurant, q string) bool {
	for _, field := range []string{r.DisplayName, r.Address.Road, r.Address.Suburb, r.Address.City} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// SortByDistance returns a copy of records stable-sorted by distance from
// origin. Records whose coordinates do not parse sort last, in their
// original relative order.
func SortByDistance(records []models.Restaurant, origin geo.Coordinate) []models.Restaurant {
	keys := make([]float64, len(records))
	idx := make([]int, len(records))
	for i, r := range records {
		idx[i] = i
		keys[i] = math.Inf(1)
		if c, ok := r.Coordinate(); ok {
			keys[i] = geo.Distance(origin, c)
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})

	out := make([]models.Restaurant, len(records))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out
}

// TotalPages is ceil(n / pageSize).
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage limits page to [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Bounds returns the half-open slice [start, end) shown for page.
func Bounds(page, pageSize, n int) (int, int) {
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}

// Window returns up to five page numbers around the current page, the way
// the pager renders them.
func Window(page, totalPages int) []int {
	n := min(totalPages, windowWidth)
	first := 1
	switch {
	case totalPages <= windowWidth || page <= 3:
		first = 1
	case page >= totalPages-2:
		first = totalPages - windowWidth + 1
	default:
		first = page - 2
	}

	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first+i)
	}
	return out
}

func distanceTo(r models.Restaurant, origin *geo.Coordinate) *float64 {
	if origin == nil {
		return nil
	}
	c, ok := r.Coordinate()
	if !ok {
		return nil
	}
	d := geo.Distance(*origin, c)
	return &d
}
