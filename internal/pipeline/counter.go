package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// nplcitTag is the literal opening tag counted by CountCitations.
const nplcitTag = "<nplcit"

// FileCount is the pre-tagged citation count of one file.
type FileCount struct {
	File  string
	Count int
}

// CountCitations counts occurrences of the <nplcit opening tag in every XML
// file of dir.  Results keep directory listing order.
func CountCitations(dir string) ([]FileCount, int, error) {
	files, err := listXMLFiles(dir)
	if err != nil {
		return nil, 0, err
	}
	if len(files) == 0 {
		return nil, 0, apperrors.New(apperrors.ErrCodeBatchNoFiles, "no XML files in folder").WithDetail(dir)
	}

	var (
		counts []FileCount
		total  int
	)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, apperrors.ErrCodeNotFound, "read XML file").WithDetail(path)
		}
		n := strings.Count(string(data), nplcitTag)
		counts = append(counts, FileCount{File: filepath.Base(path), Count: n})
		total += n
	}
	return counts, total, nil
}

// WriteCountTable renders the counts as the aligned summary table the count
// command prints.
func WriteCountTable(w io.Writer, counts []FileCount, total int) {
	nameWidth := len("Filename")
	for _, c := range counts {
		if len(c.File) > nameWidth {
			nameWidth = len(c.File)
		}
	}
	countWidth := len("Count")
	if l := len(fmt.Sprint(total)); l > countWidth {
		countWidth = l
	}

	divider := strings.Repeat("-", nameWidth+countWidth+7)
	row := fmt.Sprintf("| %%-%ds | %%%dd |\n", nameWidth, countWidth)
	header := fmt.Sprintf("| %%-%ds | %%%ds |\n", nameWidth, countWidth)

	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, header, "Filename", "Count")
	fmt.Fprintln(w, divider)
	for _, c := range counts {
		fmt.Fprintf(w, row, c.File, c.Count)
	}
	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, row, "TOTAL", total)
	fmt.Fprintln(w, divider)
}
