package document

import "strings"

// Source is an ordered sequence of atomic text segments — pages for page-mode
// chunking, single words for word-mode. Indices are 1-based and inclusive.
type Source interface {
	// Len returns the total number of segments.
	Len() int
	// Slice returns the combined text of segments [start, end].
	// Callers must keep 1 <= start <= end <= Len().
	Slice(start, end int) string
}

// Document is a parsed file: a title plus its ordered page texts.
type Document struct {
	Title string
	Pages []string
}

func (d *Document) Len() int { return len(d.Pages) }

// Slice joins the pages in [start, end] with newlines.
func (d *Document) Slice(start, end int) string {
	return strings.Join(d.Pages[start-1:end], "\n")
}

// Text returns the whole document as one string, pages joined by newlines.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Words is a word-level segment source over flat text.
type Words []string

// SplitWords splits text on whitespace into a word source.
func SplitWords(text string) Words {
	return Words(strings.Fields(text))
}

func (w Words) Len() int { return len(w) }

// Slice joins the words in [start, end] with single spaces.
func (w Words) Slice(start, end int) string {
	return strings.Join(w[start-1:end], " ")
}
