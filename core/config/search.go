package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultConfigExt is the extension matched by config searches.
const DefaultConfigExt = ".json"

// SearchMode selects how much a config search prints.
type SearchMode int

const (
	// ListOnly prints only the matching paths.
	ListOnly SearchMode = iota
	// WithContent also prints each file it checks and the parsed content of
	// every match.
	WithContent
)

// SearchConfigs walks dir and reports every regular file whose name ends in
// ext. Errors for individual entries are reported to errw and the walk
// continues.
func SearchConfigs(fsys afero.Fs, dir, ext string, mode SearchMode, w, errw io.Writer) error {
	return afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			fmt.Fprintf(errw, "Failed to open: %s: %v\n", path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if mode == WithContent {
				fmt.Fprintf(w, "Searching for %s files in %s\n", ext, path)
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if mode == WithContent {
			fmt.Fprintf(w, "Checking file: %s\n", path)
		}

		name := info.Name()
		if len(name) <= len(ext) || !strings.HasSuffix(name, ext) {
			return nil
		}

		fmt.Fprintf(w, "Directory: %s\n", path)
		if mode == WithContent {
			displayConfig(fsys, path, w, errw)
		}
		return nil
	})
}

func displayConfig(fsys afero.Fs, path string, w, errw io.Writer) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		fmt.Fprintf(errw, "read failed: %v\n", err)
		return
	}

	var buf bytes.Buffer
	if err := PrintJSON(&buf, data); err != nil {
		fmt.Fprintf(w, "Error parsing JSON: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Reading configuration file: %s\n", path)
	w.Write(buf.Bytes())
}

// PrintJSON writes the JSON document in data as one line per node, keeping
// the document's key order. Scalars print as key=value, containers as
// key=[Array] or key={Object} followed by their children indented two
// spaces per level.
func PrintJSON(w io.Writer, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := printNode(w, dec, "", 0); err != nil {
		return err
	}

	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

func printNode(w io.Writer, dec *json.Decoder, key string, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	indent := strings.Repeat("  ", depth)

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			if key != "" {
				fmt.Fprintf(w, "%s%s={Object}\n", indent, key)
			} else {
				fmt.Fprintf(w, "%s{Object}\n", indent)
			}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				if err := printNode(w, dec, keyTok.(string), depth+1); err != nil {
					return err
				}
			}
		case '[':
			fmt.Fprintf(w, "%s%s=[Array]\n", indent, key)
			for dec.More() {
				if err := printNode(w, dec, "", depth+1); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		_, err := dec.Token()
		return err
	case bool:
		fmt.Fprintf(w, "%s%s=%t\n", indent, key, v)
	case nil:
		fmt.Fprintf(w, "%s%s=NULL\n", indent, key)
	case json.Number:
		fmt.Fprintf(w, "%s%s=%s\n", indent, key, formatNumber(v))
	case string:
		fmt.Fprintf(w, "%s%s=%s\n", indent, key, v)
	}

	return nil
}

func formatNumber(n json.Number) string {
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%f", f)
}
