/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "encoding/csv"
    "fmt"
    "sort"
    "strconv"
    "strings"

    "github.com/HamedShams/effort-pulse/internal/effort"
)

// RenderText formats bucket reports as the classic plaintext effort report:
// a header per bucket, then per program a TOTAL line and indented ticket
// hours and user utilization percentages.
func RenderText(reports []effort.BucketReport) string {
    b := &strings.Builder{}
    for _, r := range reports {
        hdr := fmt.Sprintf("Week of %s (%d work days)", r.Range.Start.Format("2006-01-02"), r.Workdays)
        if r.Range.Start.Day() == 1 && r.Range.End.AddDate(0, 0, 1).Day() == 1 {
            hdr = fmt.Sprintf("Month of %s (%d work days)", r.Range.Start.Format("2006-01"), r.Workdays)
        }
        sep := strings.Repeat("=", len(hdr))
        fmt.Fprintf(b, "%s\n%s\n%s\n\n", sep, hdr, sep)
        for _, name := range sortedKeys(r.Projects) {
            p := r.Projects[name]
            sep := strings.Repeat("-", len(p.Name))
            fmt.Fprintf(b, "%s\n%s\n%s\n", sep, p.Name, sep)
            fmt.Fprintf(b, "TOTAL: %vh\n", p.TotalHours())
            fmt.Fprintf(b, "\tTickets\n")
            hours := p.TicketHours()
            for _, t := range sortedKeys(hours) {
                fmt.Fprintf(b, "\t\t%s: %vh\n", t, hours[t])
            }
            fmt.Fprintf(b, "\tUsers\n")
            percents := p.UserEffort(r.Workdays)
            for _, u := range sortedKeys(percents) {
                fmt.Fprintf(b, "\t\t%s: %.1f %%\n", u, percents[u])
            }
        }
        for _, w := range r.Warnings {
            fmt.Fprintf(b, "Warning: %s\n", w)
        }
        b.WriteString("\n")
    }
    return b.String()
}

// RenderCSV flattens every (program, ticket, user, seconds) row, prefixed
// with the bucket start date.
func RenderCSV(reports []effort.BucketReport) (string, error) {
    b := &strings.Builder{}
    w := csv.NewWriter(b)
    for _, r := range reports {
        start := r.Range.Start.Format("2006-01-02")
        for _, name := range sortedKeys(r.Projects) {
            rows := r.Projects[name].Rows()
            sort.Slice(rows, func(i, j int) bool {
                if rows[i].Ticket != rows[j].Ticket { return rows[i].Ticket < rows[j].Ticket }
                return rows[i].User < rows[j].User
            })
            for _, row := range rows {
                rec := []string{start, row.Program, row.Ticket, row.User, strconv.Itoa(row.Seconds)}
                if err := w.Write(rec); err != nil { return "", err }
            }
        }
    }
    w.Flush()
    if err := w.Error(); err != nil { return "", err }
    return b.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
    keys := make([]string, 0, len(m))
    for k := range m { keys = append(keys, k) }
    sort.Strings(keys)
    return keys
}

// chunkText splits text into chunks of up to max runes, attempting to break on line boundaries.
func chunkText(s string, max int) []string {
    if max <= 0 { return []string{s} }
    var chunks []string
    lines := strings.Split(s, "\n")
    cur := ""
    curlen := 0
    for _, ln := range lines {
        rl := len([]rune(ln))
        // If a single line exceeds max, hard-split the line
        if rl > max {
            if curlen > 0 { chunks = append(chunks, cur); cur = ""; curlen = 0 }
            r := []rune(ln)
            for i := 0; i < rl; i += max {
                j := i + max
                if j > rl { j = rl }
                chunks = append(chunks, string(r[i:j]))
            }
            continue
        }
        // account for newline when appending to non-empty cur
        extra := rl
        if curlen > 0 { extra += 1 }
        if curlen+extra > max {
            chunks = append(chunks, cur)
            cur = ln
            curlen = rl
        } else {
            if curlen == 0 { cur = ln; curlen = rl } else { cur += "\n" + ln; curlen += extra }
        }
    }
    if curlen > 0 { chunks = append(chunks, cur) }
    if len(chunks) == 0 { chunks = []string{""} }
    return chunks
}
