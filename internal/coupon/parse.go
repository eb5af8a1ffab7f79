package coupon

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Catalog files are gzip-compressed CSV with the columns
// CODE,TYPE,VALUE,MIN_ORDER,MAX_DISCOUNT,EXPIRES_AT. The last two may be empty.
const minFields = 4

// parseCatalog reads a gzipped CSV catalog from r.
func parseCatalog(ctx context.Context, r io.Reader) (*mapCatalog, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	catalog := NewMapCatalog(64).(*mapCatalog)
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read coupon catalog: %w", err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "code") {
			continue
		}

		rule, err := parseRule(record)
		if err != nil {
			return nil, fmt.Errorf("coupon catalog line %d: %w", line, err)
		}
		catalog.Add(rule)
	}

	return catalog, nil
}

func parseRule(record []string) (Rule, error) {
	if len(record) < minFields {
		return Rule{}, fmt.Errorf("expected at least %d fields, got %d", minFields, len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	rule := Rule{
		Code: record[0],
		Type: DiscountType(strings.ToLower(record[1])),
	}
	if rule.Code == "" {
		return Rule{}, errors.New("empty code")
	}

	value, err := decimal.NewFromString(record[2])
	if err != nil {
		return Rule{}, fmt.Errorf("invalid value %q: %w", record[2], err)
	}
	rule.Value = value

	switch rule.Type {
	case DiscountPercentage:
		if !value.IsPositive() || value.GreaterThan(decimal.NewFromInt(100)) {
			return Rule{}, fmt.Errorf("percentage out of range: %s", value)
		}
	case DiscountFixed:
		if !value.IsPositive() || !value.IsInteger() {
			return Rule{}, fmt.Errorf("fixed amount must be a positive whole number of centavos: %s", value)
		}
	default:
		return Rule{}, fmt.Errorf("unknown discount type %q", record[1])
	}

	if record[3] != "" {
		rule.MinOrder, err = strconv.ParseInt(record[3], 10, 64)
		if err != nil || rule.MinOrder < 0 {
			return Rule{}, fmt.Errorf("invalid minimum order %q", record[3])
		}
	}

	if len(record) > 4 && record[4] != "" {
		maxDiscount, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil || maxDiscount < 0 {
			return Rule{}, fmt.Errorf("invalid max discount %q", record[4])
		}
		rule.MaxDiscount = &maxDiscount
	}

	if len(record) > 5 && record[5] != "" {
		expiresAt, err := time.Parse(time.RFC3339, record[5])
		if err != nil {
			return Rule{}, fmt.Errorf("invalid expiry %q: %w", record[5], err)
		}
		rule.ExpiresAt = &expiresAt
	}

	return rule, nil
}
