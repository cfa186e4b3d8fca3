package points

// CategoryTotal is one category's accumulated sum.
type CategoryTotal struct {
	Category string `json:"category"`
	Points   int    `json:"points"`
}

// Totals accumulates point sums for one document. The grand total lives in
// its own field rather than under a reserved map key, so a category named
// "total" is just another label and cannot collide with it. Category order
// is first-encounter order during the document walk.
type Totals struct {
	grand int
	order []string
	sums  map[string]int
}

// NewTotals returns an empty accumulator.
func NewTotals() *Totals {
	return &Totals{sums: make(map[string]int)}
}

// Add records one annotation: value always counts toward the grand total,
// and toward the category's sum when category is non-empty.
func (t *Totals) Add(value int, category string) {
	t.grand += value
	if category == "" {
		return
	}
	if _, ok := t.sums[category]; !ok {
		t.order = append(t.order, category)
	}
	t.sums[category] += value
}

// Grand returns the sum of every annotation value regardless of category.
func (t *Totals) Grand() int {
	if t == nil {
		return 0
	}
	return t.grand
}

// Category returns the accumulated sum for one label.
func (t *Totals) Category(name string) (int, bool) {
	if t == nil {
		return 0, false
	}
	sum, ok := t.sums[name]
	return sum, ok
}

// Categories returns all category sums in first-encounter order.
func (t *Totals) Categories() []CategoryTotal {
	if t == nil {
		return nil
	}
	out := make([]CategoryTotal, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, CategoryTotal{Category: name, Points: t.sums[name]})
	}
	return out
}

// Len returns the number of distinct categories seen.
func (t *Totals) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Clone returns an independent copy.
func (t *Totals) Clone() *Totals {
	if t == nil {
		return nil
	}
	c := &Totals{
		grand: t.grand,
		order: make([]string, len(t.order)),
		sums:  make(map[string]int, len(t.sums)),
	}
	copy(c.order, t.order)
	for k, v := range t.sums {
		c.sums[k] = v
	}
	return c
}
