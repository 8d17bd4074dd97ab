// Package text implements the string transforms that turn extracted article
// body text into corpus lines.
//
// Every function is pure: it takes a string and returns a new one. The
// transforms are applied in a fixed order by Normalize:
//
//	Clean -> Segment -> Clean
//
// where Clean is StripCitations followed by CollapseSpaces. Changing the order
// or dropping the second Clean changes the corpus output.
package text
