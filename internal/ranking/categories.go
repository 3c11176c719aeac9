package ranking

import "strings"

// GeneralLabel is returned when no category profile is close enough.
const GeneralLabel = "General"

// DefaultDescriptor stands in for a profile with no usable category.
const DefaultDescriptor = "artificial intelligence, machine learning, technology trends, general news."

// DefaultInterests are assumed for users without stored preferences.
var DefaultInterests = []string{"Technology", "Science", GeneralLabel}

// Category pairs a label with the text that describes it.
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// CategoryTable is an ordered, read-only set of categories. Order decides
// classification ties.
type CategoryTable struct {
	entries []Category
	index   map[string]int
}

// NewCategoryTable copies entries, dropping blank and repeated names.
func NewCategoryTable(entries []Category) CategoryTable {
	t := CategoryTable{index: make(map[string]int, len(entries))}
	for _, c := range entries {
		name := strings.TrimSpace(c.Name)
		if name == "" || strings.TrimSpace(c.Description) == "" {
			continue
		}
		if _, ok := t.index[name]; ok {
			continue
		}
		t.index[name] = len(t.entries)
		t.entries = append(t.entries, Category{Name: name, Description: c.Description})
	}
	return t
}

// DefaultCategoryTable returns the built-in news categories.
func DefaultCategoryTable() CategoryTable {
	return NewCategoryTable(defaultCategories)
}

// Len returns the number of categories.
func (t CategoryTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the categories in table order.
func (t CategoryTable) Entries() []Category {
	out := make([]Category, len(t.entries))
	copy(out, t.entries)
	return out
}

// Names returns the category labels in table order.
func (t CategoryTable) Names() []string {
	out := make([]string, len(t.entries))
	for i, c := range t.entries {
		out[i] = c.Name
	}
	return out
}

// Description looks a category up by name.
func (t CategoryTable) Description(name string) (string, bool) {
	i, ok := t.index[strings.TrimSpace(name)]
	if !ok {
		return "", false
	}
	return t.entries[i].Description, true
}

// Descriptions resolves names to descriptions, skipping unknown names and repeats.
func (t CategoryTable) Descriptions(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		desc, ok := t.Description(name)
		if !ok {
			continue
		}
		if _, dup := seen[desc]; dup {
			continue
		}
		seen[desc] = struct{}{}
		out = append(out, desc)
	}
	return out
}

var defaultCategories = []Category{
	{Name: "Technology", Description: "Artificial intelligence, machine learning, robotics, computer science, gadgets, software, internet, cybersecurity, and tech industry innovations."},
	{Name: "Business", Description: "Markets, finance, startups, economic policies, investments, corporate strategies, entrepreneurship, and business news."},
	{Name: "Science", Description: "Space exploration, research breakthroughs, biology, chemistry, physics, astronomy, and scientific discoveries."},
	{Name: "Health", Description: "Medical research, healthcare innovations, fitness, nutrition, disease prevention, mental wellness, and public health."},
	{Name: "Politics", Description: "Government, elections, international relations, policies, law, diplomacy, and political events."},
	{Name: "Sports", Description: "Football, cricket, tennis, tournaments, player performances, scores, championships, leagues, and athletic events."},
	{Name: "Entertainment", Description: "Movies, TV shows, celebrities, music, theater, pop culture, streaming platforms, and entertainment industry."},
	{Name: "Environment", Description: "Climate change, sustainability, renewable energy, wildlife conservation, environmental protection, and ecological issues."},
}
