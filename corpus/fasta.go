// SPDX-License-Identifier: MIT

package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLine bounds one FASTA line; UniRef sequences fit comfortably.
const maxLine = 1 << 20

// Record is one FASTA entry.
type Record struct {
	Name string
	Seq  string
}

// ReadFASTA parses every record of r. Sequence lines are concatenated with
// surrounding whitespace removed; blank lines and ';' comments are skipped.
// Residue data before the first header is an error.
// Complexity: O(total input size).
func ReadFASTA(r io.Reader) ([]Record, error) {
	var (
		sc   = bufio.NewScanner(r)
		recs []Record
		seq  strings.Builder
		line string
		n    int
		open bool
	)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	flush := func() {
		if open {
			recs[len(recs)-1].Seq = seq.String()
			seq.Reset()
		}
	}
	for sc.Scan() {
		n++
		line = strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, ">"):
			flush()
			recs = append(recs, Record{Name: strings.TrimSpace(line[1:])})
			open = true
		case !open:
			return nil, fmt.Errorf("ReadFASTA: line %d: residues before header: %w", n, ErrFASTA)
		default:
			seq.WriteString(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadFASTA: line %d: %w", n+1, err)
	}
	flush()

	return recs, nil
}

// WriteFASTA writes recs with sequences on a single line each.
func WriteFASTA(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		if _, err := fmt.Fprintf(bw, ">%s\n%s\n", rec.Name, rec.Seq); err != nil {
			return err
		}
	}

	return bw.Flush()
}
