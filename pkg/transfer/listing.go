package transfer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marmos91/sfmp/internal/protocol/sfmp"
)

// MaxListingSize bounds a decoded directory listing.
const MaxListingSize = 16 << 20

// ListDir returns the entry names of dir, sorted by name.
func ListDir(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// SendListing writes names as a newline-joined framed payload. An empty
// list is sent as the empty sentinel.
func SendListing(w io.Writer, names []string) (Stats, error) {
	fw := sfmp.NewFrameWriter(w)
	if len(names) > 0 {
		if _, err := io.WriteString(fw, strings.Join(names, "\n")); err != nil {
			return Stats{Bytes: fw.Written()}, err
		}
	}
	if err := fw.Close(); err != nil {
		return Stats{Bytes: fw.Written()}, err
	}
	return Stats{Bytes: fw.Written(), Empty: len(names) == 0}, nil
}

// ReceiveListing decodes a listing sent by SendListing.
func ReceiveListing(r io.Reader) ([]string, error) {
	fr := sfmp.NewFrameReader(r)

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(fr, MaxListingSize+1))
	if err != nil {
		return nil, err
	}
	if n > MaxListingSize {
		if _, err := fr.Drain(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: listing exceeds %d bytes", ErrLocal, MaxListingSize)
	}
	if buf.Len() == 0 {
		return []string{}, nil
	}
	return strings.Split(buf.String(), "\n"), nil
}
