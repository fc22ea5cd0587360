package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// MaxMetrics bounds the number of names read into a Catalog.
const MaxMetrics = 64

var ErrInvalidMetric = errors.New("invalid metric number")

// Catalog is the ordered list of metric names the monitor exposes. Metrics
// are addressed by their 1-based position.
type Catalog struct {
	names []string
}

// NewCatalog creates a catalog holding names.
func NewCatalog(names ...string) *Catalog {
	if len(names) > MaxMetrics {
		names = names[:MaxMetrics]
	}
	return &Catalog{names: append([]string(nil), names...)}
}

// ParseCatalog reads metric names from the monitor's metrics file. Each line
// of the form "<label>: <name>" contributes one name, other lines are
// skipped.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	c := &Catalog{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() && len(c.names) < MaxMetrics {
		_, name, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		name = strings.TrimPrefix(name, " ")
		c.names = append(c.names, strings.TrimRight(name, "\r\n"))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}

	return c, nil
}

// LoadCatalog parses the metrics file at path.
func LoadCatalog(fs afero.Fs, path string) (*Catalog, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metrics file: %w", err)
	}
	defer f.Close()

	return ParseCatalog(f)
}

// Names returns a copy of the metric names in order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of metrics.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Lookup returns the name of the metric at the 1-based index idx.
func (c *Catalog) Lookup(idx int) (string, error) {
	if idx < 1 || idx > len(c.names) {
		return "", fmt.Errorf("%w: %d", ErrInvalidMetric, idx)
	}
	return c.names[idx-1], nil
}

// WriteMapping prints the numbered list of metrics as a table.
func (c *Catalog) WriteMapping(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "==================== Available Metrics ====================")
	fmt.Fprintf(w, "  %-5s | %s\n", "ID", "Metric Name")
	fmt.Fprintln(w, "----------------------------------------------------------")
	for i, name := range c.names {
		fmt.Fprintf(w, "  %-5d | %s\n", i+1, name)
	}
	fmt.Fprintln(w, "==========================================================")
	fmt.Fprintln(w)
}
