package summarize

// Section names used in reports.
const (
	SectionSummary         = "summary"
	SectionClasses         = "classes"
	SectionTodos           = "todos"
	SectionDependencyGraph = "dependency-graph"
	SectionSymbols         = "symbols"
)

// Section is one named block of the report.
type Section struct {
	Name    string
	Heading string
	Content string
}

// Report maps section names to content while keeping insertion order.
type Report struct {
	sections []Section
}

// Add appends a section, replacing the content of an existing one with the same name
// in place.
func (r *Report) Add(name, heading, content string) {
	for i := range r.sections {
		if r.sections[i].Name == name {
			r.sections[i].Heading = heading
			r.sections[i].Content = content
			return
		}
	}
	r.sections = append(r.sections, Section{Name: name, Heading: heading, Content: content})
}

// Sections returns a copy of the sections in order.
func (r *Report) Sections() []Section {
	return append([]Section(nil), r.sections...)
}
