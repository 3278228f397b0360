/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package effort

import "math"

// userMaxHoursDaily is the focus-hour capacity per workday:
// 32 focus hours per week / 5 work days per week.
const userMaxHoursDaily = 6.4

// ProjectEffort accumulates worklog seconds for one funding program,
// keyed by ticket and by user. One instance per (bucket, program) pair;
// never shared, never merged across buckets.
type ProjectEffort struct {
    Name    string
    Tickets map[string]int
    Users   map[string]int
    Total   int
    data    map[string]map[string]int // ticket -> user -> seconds
}

func NewProjectEffort(name string) *ProjectEffort {
    return &ProjectEffort{
        Name:    name,
        Tickets: map[string]int{},
        Users:   map[string]int{},
        data:    map[string]map[string]int{},
    }
}

// AddWorklog adds secs to the per-ticket, per-user and per-program totals.
// Callers own the secs >= 0 invariant; nothing is validated here.
func (p *ProjectEffort) AddWorklog(ticket, user string, secs int) {
    inner := p.data[ticket]
    if inner == nil { inner = map[string]int{}; p.data[ticket] = inner }
    inner[user] += secs
    p.Tickets[ticket] += secs
    p.Users[user] += secs
    p.Total += secs
}

func (p *ProjectEffort) TicketHours() map[string]float64 {
    out := make(map[string]float64, len(p.Tickets))
    for t, v := range p.Tickets { out[t] = SecondsToHours(v) }
    return out
}

func (p *ProjectEffort) TotalHours() float64 { return SecondsToHours(p.Total) }

// UserEffort reports each user's logged seconds as a percent of their
// focus-hour capacity over numDays workdays. No date arithmetic here;
// numDays is the caller-supplied workday count for the bucket.
func (p *ProjectEffort) UserEffort(numDays int) map[string]float64 {
    out := make(map[string]float64, len(p.Users))
    for u, secs := range p.Users {
        out[u] = float64(secs) / 3600 / (float64(numDays) * userMaxHoursDaily) * 100
    }
    return out
}

// Row is one flattened (program, ticket, user, seconds) attribution entry.
type Row struct {
    Program string
    Ticket  string
    User    string
    Seconds int
}

// Rows flattens the 2-level ticket/user map for tabular or CSV export.
// Iteration order is not stable; every non-zero pair appears exactly once.
func (p *ProjectEffort) Rows() []Row {
    var out []Row
    for t, users := range p.data {
        for u, secs := range users {
            out = append(out, Row{Program: p.Name, Ticket: t, User: u, Seconds: secs})
        }
    }
    return out
}

// SecondsToHours converts seconds to hours, rounding up to the nearest
// quarter hour. Effort is never under-reported; 0 stays 0.
func SecondsToHours(seconds int) float64 {
    return math.Ceil(float64(seconds)/900) * 0.25
}
