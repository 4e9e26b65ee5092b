package stage

import (
	"sort"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
)

// RequiredSelections is how many competitors a user picks for the deep pass
const RequiredSelections = 3

// Selection tracks chosen competitor positions. It never holds more than
// RequiredSelections entries.
type Selection struct {
	picked map[int]struct{}
}

func NewSelection(indexes ...int) *Selection {
	s := &Selection{picked: make(map[int]struct{})}
	for _, i := range indexes {
		s.Toggle(i)
	}
	return s
}

// Toggle deselects i if selected, otherwise selects it while there is room.
func (s *Selection) Toggle(i int) {
	if s.picked == nil {
		s.picked = make(map[int]struct{})
	}
	if _, ok := s.picked[i]; ok {
		delete(s.picked, i)
		return
	}
	if len(s.picked) < RequiredSelections && i >= 0 {
		s.picked[i] = struct{}{}
	}
}

func (s *Selection) Selected(i int) bool {
	_, ok := s.picked[i]
	return ok
}

func (s *Selection) Count() int {
	return len(s.picked)
}

func (s *Selection) Ready() bool {
	return len(s.picked) == RequiredSelections
}

// Indexes returns the chosen positions in ascending order
func (s *Selection) Indexes() []int {
	out := make([]int, 0, len(s.picked))
	for i := range s.picked {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Chosen returns the selected competitors in list order, skipping
// positions that are out of range.
func (s *Selection) Chosen(competitors []domain.Competitor) []domain.Competitor {
	out := make([]domain.Competitor, 0, len(s.picked))
	for _, i := range s.Indexes() {
		if i < len(competitors) {
			out = append(out, competitors[i])
		}
	}
	return out
}
