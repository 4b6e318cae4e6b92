// Command ppm-redact is a small CLI around internal/redact: ad hoc
// structural editing of a JSON document by member name or dotted path,
// outside the streaming handler's hot path (spec.md §4.6).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jpo-ppm/ppm/internal/redact"
)

func main() {
	var (
		byName   string
		byPath   string
		search   bool
		inFile   string
	)
	flag.StringVar(&byName, "name", "", "remove every member with this key, however deeply nested")
	flag.StringVar(&byPath, "path", "", "remove the member at this dot-separated path")
	flag.BoolVar(&search, "search", false, "report presence only, do not mutate")
	flag.StringVar(&inFile, "f", "", "input file (default: stdin)")
	flag.Parse()

	if byName == "" && byPath == "" {
		fmt.Fprintln(os.Stderr, "ppm-redact: one of -name or -path is required")
		os.Exit(2)
	}

	doc, err := readInput(inFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ppm-redact: %v\n", err)
		os.Exit(1)
	}

	var (
		result  string
		changed bool
	)
	switch {
	case search && byName != "":
		found := redact.SearchForMemberByName(doc, byName)
		fmt.Println(found)
		return
	case search && byPath != "":
		found := redact.SearchForMemberByPath(doc, byPath)
		fmt.Println(found)
		return
	case byName != "":
		result, changed = redact.RedactAllInstancesByName(doc, byName)
	default:
		result, changed = redact.RedactByPath(doc, byPath)
	}

	if !changed {
		fmt.Fprintln(os.Stderr, "ppm-redact: no matching member found")
		os.Exit(1)
	}
	fmt.Println(redact.Pretty(result))
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
