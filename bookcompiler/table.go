package bookcompiler

// tocFirstPage is the page placeholder of the first chapter: cover and
// contents come first.
const tocFirstPage = 3

// tableOfContents lists the chapters in presentation order.
func (m *manuscript) tableOfContents() []ToCEntry {
	toc := make([]ToCEntry, len(m.Sections))
	for i, s := range m.Sections {
		toc[i] = ToCEntry{
			Number:  s.Number,
			Title:   s.Title,
			Anchor:  s.Anchor,
			PageNum: i + tocFirstPage,
		}
	}
	return toc
}
