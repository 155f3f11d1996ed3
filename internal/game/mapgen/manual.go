package mapgen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/Paratroopers/internal/game/core"
)

// ParseRows reads k lines of k whitespace-separated cell values. Blank lines
// are skipped. Values are validated when the topology is built.
func ParseRows(r io.Reader, k int) ([]int, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: size must be at least 1, got %d", core.ErrInvalidTopology, k)
	}

	scanner := bufio.NewScanner(r)
	values := make([]int, 0, k*k)
	row := 0
	for row < k && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != k {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", core.ErrInvalidTopology, row, len(fields), k)
		}
		for col, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", core.ErrInvalidTopology, row, col, err)
			}
			values = append(values, v)
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading board rows: %w", err)
	}
	if row < k {
		return nil, fmt.Errorf("%w: got %d rows, want %d", core.ErrInvalidTopology, row, k)
	}
	return values, nil
}

// ReadTopology parses k rows from r and builds the topology.
func ReadTopology(r io.Reader, k int) (*core.Topology, error) {
	values, err := ParseRows(r, k)
	if err != nil {
		return nil, err
	}
	return core.NewTopology(k, values)
}
