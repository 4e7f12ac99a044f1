package output

import (
	"fmt"
	"io"
	"strings"
)

// ListingRule separates a directory listing from the surrounding output.
var ListingRule = strings.Repeat("-", 20)

// ListingRenderer is implemented by LS results.
type ListingRenderer interface {
	// ListingOwner is the side whose directory was listed ("client" or "server").
	ListingOwner() string
	// ListingEntries are the entry names, one per line.
	ListingEntries() []string
}

// PrintListing writes a directory listing as a block:
//
//	Current files in server's directory:
//	--------------------
//	a.txt
//	b.txt
//	--------------------
func PrintListing(w io.Writer, owner string, entries []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\nCurrent files in %s's directory:\n", owner)
	b.WriteString(ListingRule)
	b.WriteByte('\n')
	for _, e := range entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	b.WriteString(ListingRule)
	b.WriteString("\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}
