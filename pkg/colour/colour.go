// Package colour assigns stable fill and text colours to discrete values.
package colour

import "sync"

// Pair is a fill colour and a readable text colour on top of it.
type Pair struct {
	Fill string `json:"fill"`
	Text string `json:"text"`
}

// Entry is one legend line.
type Entry struct {
	Value string `json:"value"`
	Pair
}

// DefaultPalette is cycled through in order as new values appear.
var DefaultPalette = []Pair{
	{Fill: "#C8E6C9", Text: "#1B5E20"},
	{Fill: "#8aa249", Text: "#FFFFFF"},
	{Fill: "#8BC34A", Text: "#FFFFFF"},
	{Fill: "#388E3C", Text: "#FFFFFF"},
	{Fill: "#4CAF50", Text: "#FFFFFF"},
	{Fill: "#212121", Text: "#FFFFFF"},
	{Fill: "#727272", Text: "#FFFFFF"},
	{Fill: "#B6B6B6", Text: "#000000"},
	{Fill: "#e5f0a3", Text: "#000000"},
	{Fill: "#6f8c2b", Text: "#FFFFFF"},
	{Fill: "#ffb300", Text: "#000000"},
	{Fill: "#1976D2", Text: "#FFFFFF"},
}

// CommunityFill is the fill used for every community glyph.
const CommunityFill = "#333333"

// Mapper hands out palette colours in first-seen order and remembers them.
type Mapper struct {
	mu        sync.Mutex
	palette   []Pair
	assigned  map[string]int
	order     []string
	listeners []func()
}

// NewMapper creates a mapper over palette, or DefaultPalette if empty.
func NewMapper(palette ...Pair) *Mapper {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Mapper{
		palette:  append([]Pair(nil), palette...),
		assigned: make(map[string]int),
	}
}

// Pair returns the colours for value, assigning the next palette entry if
// value is new.
func (m *Mapper) Pair(value string) Pair {
	m.mu.Lock()
	i, ok := m.assigned[value]
	if !ok {
		i = len(m.order) % len(m.palette)
		m.assigned[value] = i
		m.order = append(m.order, value)
	}
	p := m.palette[i]
	listeners := m.listeners
	m.mu.Unlock()

	if !ok {
		for _, fn := range listeners {
			fn()
		}
	}
	return p
}

// Colour returns the fill colour for value.
func (m *Mapper) Colour(value string) string {
	return m.Pair(value).Fill
}

// TextColour returns the text colour for value.
func (m *Mapper) TextColour(value string) string {
	return m.Pair(value).Text
}

// CommunityColour returns the fill used for communities.
func (m *Mapper) CommunityColour() string {
	return CommunityFill
}

// Legend lists the assigned values in first-seen order.
func (m *Mapper) Legend() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.order))
	for _, v := range m.order {
		out = append(out, Entry{Value: v, Pair: m.palette[m.assigned[v]]})
	}
	return out
}

// Reset forgets all assignments.
func (m *Mapper) Reset() {
	m.mu.Lock()
	m.assigned = make(map[string]int)
	m.order = nil
	listeners := m.listeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnChange registers fn to run whenever the legend changes.
func (m *Mapper) OnChange(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}
