package google

import (
	"fmt"
	"strconv"
	"strings"

	"legisbase/internal/core"
)

// Column headers expected on the first row of the bills sheet. Matching is
// case-insensitive and column order is free.
const (
	colID               = "ID"
	colTitle            = "Title"
	colBillNumber       = "Bill Number"
	colStatus           = "Status"
	colSummary          = "Summary"
	colAIInterpretation = "AI Interpretation"
	colTags             = "Tags"
	colDateIntroduced   = "Date Introduced"
	colSponsor          = "Sponsor"
)

// parseBills converts a values matrix (as returned by the Sheets API) into
// bills. Rows with an empty ID cell are skipped.
func parseBills(values [][]interface{}) ([]core.Bill, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	idx := map[string]int{}
	var missing []string
	for _, h := range []string{colID, colTitle, colBillNumber, colStatus, colSummary, colAIInterpretation, colTags, colDateIntroduced, colSponsor} {
		i := indexOf(headers, h)
		if i == -1 && (h == colID || h == colTitle) {
			missing = append(missing, h)
		}
		idx[h] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected bills header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	var out []core.Bill
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		rawID := safeGet(row, idx[colID])
		if rawID == "" {
			continue
		}
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q: %w", i+1, rawID, err)
		}
		out = append(out, core.Bill{
			ID:               id,
			Title:            safeGet(row, idx[colTitle]),
			BillNumber:       safeGet(row, idx[colBillNumber]),
			Status:           safeGet(row, idx[colStatus]),
			Summary:          safeGet(row, idx[colSummary]),
			AIInterpretation: safeGet(row, idx[colAIInterpretation]),
			Tags:             splitTags(safeGet(row, idx[colTags])),
			DateIntroduced:   safeGet(row, idx[colDateIntroduced]),
			Sponsor:          safeGet(row, idx[colSponsor]),
		})
	}
	return out, nil
}

func splitTags(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return []string{}
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
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
