package atrium

import (
	"fmt"
)

// Exhibit is one portfolio piece: the content the HUD shows when the piece
// is hovered or inspected. Placement lives in the gallery definition, not
// here - the catalog is pure content.
type Exhibit struct {
	Id               string     `json:"id"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	LongDescription  string     `json:"long_description"`
	TechTags         []string   `json:"tech_tags"`
	Accent           [3]float32 `json:"accent"`
}

// ExhibitCatalog is the ordered, id-unique set of exhibits in the gallery.
// Filled at load and refilled in place on a layout reload, so resource
// pointers held by systems stay valid.
type ExhibitCatalog struct {
	ordered []*Exhibit
	byId    map[string]*Exhibit
}

func MakeExhibitCatalog(exhibits ...Exhibit) *ExhibitCatalog {
	c := &ExhibitCatalog{}
	c.fill(exhibits)
	return c
}

// fill replaces the catalog contents. Panics on empty or duplicate ids;
// callers loading untrusted definitions validate first.
func (c *ExhibitCatalog) fill(exhibits []Exhibit) {
	c.ordered = make([]*Exhibit, 0, len(exhibits))
	c.byId = make(map[string]*Exhibit, len(exhibits))
	for i := range exhibits {
		ex := exhibits[i]
		if ex.Id == "" {
			panic(fmt.Sprintf("exhibit %d has an empty id", i))
		}
		if _, dup := c.byId[ex.Id]; dup {
			panic(fmt.Sprintf("duplicate exhibit id %q", ex.Id))
		}
		c.ordered = append(c.ordered, &ex)
		c.byId[ex.Id] = &ex
	}
}

func (c *ExhibitCatalog) ById(id string) (*Exhibit, bool) {
	ex, ok := c.byId[id]
	return ex, ok
}

func (c *ExhibitCatalog) All() []*Exhibit {
	return c.ordered
}

func (c *ExhibitCatalog) Len() int {
	return len(c.ordered)
}
