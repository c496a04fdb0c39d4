package pipeline

import (
	"dinefind/geo"
	"dinefind/models"
)

// State is a View plus the transition rules between inputs: changing the
// query, the sort toggle or the location sends the view back to page 1.
// State is not safe for concurrent use; callers serialize access.
type State struct {
	view View
}

// NewState returns a state on page 1 with no query and source ordering.
func NewState() *State {
	return &State{view: View{Page: 1}}
}

// View returns a copy of the current inputs.
func (s *State) View() View {
	v := s.view
	if v.Location != nil {
		loc := *v.Location
		v.Location = &loc
	}
	return v
}

// SetQuery changes the query text. It reports whether the view changed.
func (s *State) SetQuery(q string) bool {
	if q == s.view.Query {
		return false
	}
	s.view.Query = q
	s.view.Page = 1
	return true
}

// SetSortByDistance toggles distance ordering.
func (s *State) SetSortByDistance(on bool) bool {
	if on == s.view.SortByDistance {
		return false
	}
	s.view.SortByDistance = on
	s.view.Page = 1
	return true
}

// SetLocation records the user's coordinate; nil forgets it.
func (s *State) SetLocation(c *geo.Coordinate) bool {
	if sameLocation(s.view.Location, c) {
		return false
	}
	if c == nil {
		s.view.Location = nil
	} else {
		loc := *c
		s.view.Location = &loc
	}
	s.view.Page = 1
	return true
}

// SetPage requests page. The request is clamped against the current inputs
// the next time the state is rendered.
func (s *State) SetPage(page int) {
	s.view.Page = max(page, 1)
}

// Render computes the displayed page over records and stores the page that
// was actually shown, so a shrunken result set never leaves the state
// pointing past the last page.
func (s *State) Render(records []models.Restaurant, pageSize int) Result {
	r := Compute(records, s.view, pageSize)
	s.view.Page = r.Page
	return r
}

func sameLocation(a, b *geo.Coordinate) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
