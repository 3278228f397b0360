/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package domain

import "time"

// FieldKind enumerates the shapes a resolved issue field can take.
// Classification switches on these exhaustively; anything the tracker
// returns that does not fit is KindUnsupported, never a silent fallthrough.
type FieldKind int

const (
    KindMissing FieldKind = iota
    KindScalar            // plain string value
    KindOption            // single select-list option, carries its value string
    KindOptions           // multi select-list, zero or more option values
    KindUnsupported       // anything else (numbers, objects without a value key, ...)
)

type FieldValue struct {
    Kind    FieldKind
    Value   string   // KindScalar, KindOption
    Values  []string // KindOptions
    RawType string   // KindUnsupported: description of the offending shape
}

// Issue is the immutable identity plus classification inputs for one work
// item. Fields maps a dotted field path (e.g. "project.key") to its value.
type Issue struct {
    Key    string
    Fields map[string]FieldValue
}

type Worklog struct {
    IssueKey string
    Author   string
    Started  time.Time // calendar date, UTC midnight
    Seconds  int
}

// DateRange is an inclusive [Start, End] day span; both are UTC midnights.
type DateRange struct {
    Start time.Time
    End   time.Time
}

func (r DateRange) Contains(day time.Time) bool {
    return !day.Before(r.Start) && !day.After(r.End)
}
