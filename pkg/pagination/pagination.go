package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Params is a keyset page request. A zero Limit with no Cursor asks for
// every row.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the (created_at, id) key of the last row already delivered.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func (p Params) Unbounded() bool {
	return p.Limit <= 0 && strings.TrimSpace(p.Cursor) == ""
}

// Size is the clamped number of rows a page holds.
func (p Params) Size() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Fetch is how many rows to ask the store for. One row past the page size
// tells Trim whether another page follows; zero means no limit.
func (p Params) Fetch() int {
	if p.Unbounded() {
		return 0
	}
	return p.Size() + 1
}

// String encodes the cursor for use in a query string.
func (c Cursor) String() string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "." + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a cursor produced by Cursor.String. Blank input is no cursor.
func Decode(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	nanos, id, ok := strings.Cut(string(raw), ".")
	if !ok {
		return nil, fmt.Errorf("malformed cursor")
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cursor timestamp: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.Unix(0, n).UTC(), ID: parsed}, nil
}

// Trim cuts rows fetched with p.Fetch down to one page and returns the
// cursor for the next page, or "" on the last one.
func Trim[T any](rows []T, p Params, key func(T) Cursor) ([]T, string) {
	if p.Unbounded() || len(rows) <= p.Size() {
		return rows, ""
	}
	page := rows[:p.Size()]
	return page, key(page[len(page)-1]).String()
}
