package ingest

import "strings"

// SplitLine splits one CSV line on commas. A double quote toggles the quoted
// state and is dropped; commas inside quotes are kept. No further unescaping
// is done, so "" inside a quoted field yields nothing.
func SplitLine(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}

// Lines returns the non-blank lines of text with trailing carriage returns
// removed.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Records splits text into header names and positional rows. Rows shorter
// than the header are padded with empty strings.
func Records(text string) (headers []string, rows [][]string) {
	lines := Lines(text)
	if len(lines) == 0 {
		return nil, nil
	}
	headers = SplitLine(strings.TrimPrefix(lines[0], "\ufeff"))
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	for _, l := range lines[1:] {
		f := SplitLine(l)
		for len(f) < len(headers) {
			f = append(f, "")
		}
		rows = append(rows, f)
	}
	return headers, rows
}
