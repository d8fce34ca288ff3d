package quote

import (
	"bufio"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"strings"
)

// Static serves quotes from a fixed in-memory list. It is the resource the
// puzzle gates.
type Static struct {
	list []string
	r    *mrand.Rand
}

var defaultQuotes = []string{
	"“Do. Or do not. There is no try.” – Yoda",
	"“Simplicity is the soul of efficiency.” – Austin Freeman",
	"“Programs must be written for people to read.” – Harold Abelson",
	"“Premature optimization is the root of all evil.” – Donald Knuth",
	"“Talk is cheap. Show me the code.” – Linus Torvalds",
}

func NewStatic() *Static {
	return &Static{list: defaultQuotes}
}

// NewStaticWith is for tests and DI.
func NewStaticWith(list []string, r *mrand.Rand) *Static {
	return &Static{list: list, r: r}
}

// NewFromFile loads one quote per line. Blank lines and lines starting with
// '#' are skipped.
func NewFromFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quotes: %w", err)
	}
	defer f.Close()

	var list []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no quotes in %s", path)
	}
	return &Static{list: list}, nil
}

func (s *Static) Len() int { return len(s.list) }

func (s *Static) Random() string {
	if len(s.list) == 0 {
		return ""
	}
	if s.r != nil {
		return s.list[s.r.IntN(len(s.list))]
	}
	return s.list[mrand.IntN(len(s.list))]
}
