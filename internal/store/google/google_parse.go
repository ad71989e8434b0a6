package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"txdash/internal/core"
)

// dateLayouts are tried in order for the dateOfSale column.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// parseRecords converts a values matrix (as returned by Sheets API) into
// records. The first row must be a header naming at least id, title, price
// and dateOfSale; description, category, image and sold are optional.
func parseRecords(values [][]interface{}) ([]core.Record, error) {
	records := make([]core.Record, 0)
	if len(values) == 0 {
		return records, nil
	}

	headers := toStrings(values[0])
	col := map[string]int{}
	for _, name := range []string{"id", "title", "description", "price", "category", "image", "sold", "dateOfSale"} {
		col[name] = indexOf(headers, name)
	}
	missing := make([]string, 0, 4)
	for _, name := range []string{"id", "title", "price", "dateOfSale"} {
		if col[name] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, col)
		if err != nil {
			// i+1 is the row number users see in the sheet
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, col map[string]int) (core.Record, error) {
	var rec core.Record

	id, err := strconv.ParseInt(safeGet(row, col["id"]), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("invalid id %q", safeGet(row, col["id"]))
	}
	price, err := parsePrice(safeGet(row, col["price"]))
	if err != nil {
		return rec, err
	}
	date, err := parseDate(safeGet(row, col["dateOfSale"]))
	if err != nil {
		return rec, err
	}
	sold, err := parseSold(safeGet(row, col["sold"]))
	if err != nil {
		return rec, err
	}

	rec = core.Record{
		ID:          id,
		Title:       safeGet(row, col["title"]),
		Description: safeGet(row, col["description"]),
		Price:       price,
		Category:    safeGet(row, col["category"]),
		Image:       safeGet(row, col["image"]),
		Sold:        sold,
		DateOfSale:  date,
	}
	return rec, nil
}

// parsePrice accepts both "1,299.50" and "1.299,50". The rightmost
// separator is the decimal point unless it repeats, in which case every
// separator groups thousands. A lone comma is a decimal comma.
func parsePrice(s string) (float64, error) {
	n := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	dot, comma := strings.LastIndex(n, "."), strings.LastIndex(n, ",")
	switch {
	case comma > dot && strings.Count(n, ",") > 1:
		n = strings.ReplaceAll(n, ",", "")
	case comma > dot:
		n = strings.ReplaceAll(n, ".", "")
		n = strings.Replace(n, ",", ".", 1)
	case dot > comma && comma < 0 && strings.Count(n, ".") > 1:
		n = strings.ReplaceAll(n, ".", "")
	case dot > comma:
		n = strings.ReplaceAll(n, ",", "")
	}

	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid dateOfSale %q", s)
}

func parseSold(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1", "x":
		return true, nil
	}
	return false, fmt.Errorf("invalid sold flag %q", s)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
