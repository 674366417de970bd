package fsx

// Paragraph styles generated by authoring tool which never make it into the
// output.
var defaultFilteredStyles = []string{"TOC Heading", "Modify Date"}

// Character styles used for multi-run quotations, trailing space of such run
// moves to the beginning of the next one.
var defaultTrimStyles = []string{"Citation-ReadThis", "Quote-ReadThis"}

// Options tunes decoding.
type Options struct {
	// Charset used for text and style names, nil selects DefaultEncoding.
	Charset *Charset
	// FilteredStyles are paragraph styles which are never emitted. Nil
	// selects "TOC Heading" and "Modify Date", empty non-nil slice filters
	// nothing.
	FilteredStyles []string
	// TrimStyles are character styles subject to trailing space transfer on
	// style change. Nil selects "Citation-ReadThis" and "Quote-ReadThis",
	// empty non-nil slice disables transfer.
	TrimStyles []string
	// DropUnterminated discards content not closed by paragraph break or
	// paragraph start at the end of stream instead of emitting it.
	DropUnterminated bool
}

// DefaultOptions returns options matching stream producer conventions.
func DefaultOptions() Options {
	return Options{
		FilteredStyles: append([]string(nil), defaultFilteredStyles...),
		TrimStyles:     append([]string(nil), defaultTrimStyles...),
	}
}

func styleSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
