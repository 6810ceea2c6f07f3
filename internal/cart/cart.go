package cart

// Product is the catalog snapshot carried into a cart line. Prices are the
// ones shown at add time; the store never re-reads the catalog.
type Product struct {
	ItemCode      string  `json:"itemCode"`
	ItemName      string  `json:"itemName"`
	ItemNameLocal string  `json:"itemNameLocal,omitempty"`
	UnitPrice     float64 `json:"price"`
}

// Line is one product entry in the cart. Total is a pre-computed snapshot
// total; it is only trusted downstream when UnitPrice is absent (template
// snapshots carry a total but no live price).
type Line struct {
	Product
	Quantity int     `json:"quantity"`
	Total    float64 `json:"totalPrice,omitempty"`
}

// Store holds the cart for one session. It keeps at most one line per item
// code and never holds a line with quantity <= 0. Not safe for concurrent
// use; a session has a single writer.
type Store struct {
	lines map[string]*Line
	order []string
}

func NewStore() *Store {
	return &Store{lines: make(map[string]*Line)}
}

// Add merges qty into an existing line for the same item code, or appends a
// new line. qty <= 0 is a no-op: blank quantity fields from the UI must not
// create lines.
func (s *Store) Add(p Product, qty int) {
	if qty <= 0 {
		return
	}
	if ln, ok := s.lines[p.ItemCode]; ok {
		ln.Quantity += qty
		return
	}
	s.lines[p.ItemCode] = &Line{Product: p, Quantity: qty}
	s.order = append(s.order, p.ItemCode)
}

// AddOne is the tap-to-add path: quantity defaults to 1.
func (s *Store) AddOne(p Product) { s.Add(p, 1) }

func (s *Store) Increment(itemCode string) {
	if ln, ok := s.lines[itemCode]; ok {
		ln.Quantity++
	}
}

// Decrement lowers the quantity by one; at quantity 1 the line is removed
// entirely rather than left at zero.
func (s *Store) Decrement(itemCode string) {
	ln, ok := s.lines[itemCode]
	if !ok {
		return
	}
	if ln.Quantity > 1 {
		ln.Quantity--
		return
	}
	s.Remove(itemCode)
}

// SetQuantity sets an absolute quantity. Values <= 0 are rejected and the
// line is left unchanged; removal only happens through Remove or Decrement.
func (s *Store) SetQuantity(itemCode string, qty int) {
	if qty <= 0 {
		return
	}
	if ln, ok := s.lines[itemCode]; ok {
		ln.Quantity = qty
	}
}

func (s *Store) Remove(itemCode string) {
	if _, ok := s.lines[itemCode]; !ok {
		return
	}
	delete(s.lines, itemCode)
	for i, code := range s.order {
		if code == itemCode {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) Clear() {
	s.lines = make(map[string]*Line)
	s.order = nil
}

// Lines returns every line in order of first addition, including lines that
// TotalValue excludes. Screens render the full list; only the total filters.
func (s *Store) Lines() []Line {
	out := make([]Line, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, *s.lines[code])
	}
	return out
}

func (s *Store) Get(itemCode string) (Line, bool) {
	ln, ok := s.lines[itemCode]
	if !ok {
		return Line{}, false
	}
	return *ln, true
}

func (s *Store) Len() int { return len(s.lines) }

// TotalValue sums quantity*unitPrice over lines with a positive quantity and
// a positive unit price. Lines failing the filter stay visible in Lines()
// but contribute nothing here.
func (s *Store) TotalValue() float64 {
	var total float64
	for _, code := range s.order {
		ln := s.lines[code]
		if ln.Quantity >= 1 && ln.UnitPrice > 0 {
			total += float64(ln.Quantity) * ln.UnitPrice
		}
	}
	return total
}
