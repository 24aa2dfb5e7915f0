package questions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yoockh/skillsage/internal/providers/llm"
)

type rawItem struct {
	Order         *int    `json:"order"`
	Question      *string `json:"question"`
	AllocatedTime *int    `json:"allocated_time"`
}

// Parse validates generator output: a JSON array whose items all carry an
// order, a non-blank question and a positive allocated_time, with orders
// forming 1..N. Items are returned sorted by order.
func Parse(raw string) ([]Item, error) {
	var rows []rawItem
	if err := llm.DecodeJSON(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode question list: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("question list is empty")
	}

	items := make([]Item, 0, len(rows))
	for i, r := range rows {
		switch {
		case r.Order == nil:
			return nil, fmt.Errorf("item %d: missing order", i)
		case r.Question == nil:
			return nil, fmt.Errorf("item %d: missing question", i)
		case r.AllocatedTime == nil:
			return nil, fmt.Errorf("item %d: missing allocated_time", i)
		case strings.TrimSpace(*r.Question) == "":
			return nil, fmt.Errorf("item %d: question is blank", i)
		case *r.AllocatedTime <= 0:
			return nil, fmt.Errorf("item %d: allocated_time must be positive, got %d", i, *r.AllocatedTime)
		}
		items = append(items, Item{
			Order:         *r.Order,
			Question:      strings.TrimSpace(*r.Question),
			AllocatedTime: *r.AllocatedTime,
		})
	}

	sort.SliceStable(items, func(a, b int) bool { return items[a].Order < items[b].Order })
	for i, it := range items {
		if it.Order != i+1 {
			return nil, fmt.Errorf("orders must be 1..%d without gaps or duplicates, found %d at position %d", len(items), it.Order, i+1)
		}
	}
	return items, nil
}
