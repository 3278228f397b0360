/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package effort

import (
    "fmt"

    "github.com/HamedShams/effort-pulse/internal/domain"
)

// Rule maps raw values of one issue field to program names. Rules are
// evaluated in slice order; the order is rule priority and must never be
// normalized by sorting.
type Rule struct {
    FieldPath string            `json:"field"`
    HumanName string            `json:"name"`
    Programs  map[string]string `json:"programs"`
}

type AmbiguousFieldError struct {
    Field    string // rule's human name
    IssueKey string
}

func (e *AmbiguousFieldError) Error() string {
    return fmt.Sprintf("multiple values for field %q in issue %s", e.Field, e.IssueKey)
}

type UnsupportedFieldError struct {
    Field    string
    IssueKey string
    Got      string
}

func (e *UnsupportedFieldError) Error() string {
    return fmt.Sprintf("unknown value type %s for field %q in issue %s", e.Got, e.Field, e.IssueKey)
}

type NoProgramError struct{ IssueKey string }

func (e *NoProgramError) Error() string {
    return fmt.Sprintf("no program for issue %s", e.IssueKey)
}

// Classify resolves an issue to a funding program by walking rules in
// order. A missing field skips to the next rule; the first rule whose
// lookup table contains the resolved value wins. A small set of
// authoritative fields placed first can this way override a larger set of
// legacy ones.
func Classify(issue domain.Issue, rules []Rule) (string, error) {
    for _, rule := range rules {
        fv, ok := issue.Fields[rule.FieldPath]
        if !ok { continue }
        var key string
        switch fv.Kind {
        case domain.KindMissing:
            continue
        case domain.KindScalar, domain.KindOption:
            key = fv.Value
        case domain.KindOptions:
            if len(fv.Values) > 1 {
                return "", &AmbiguousFieldError{Field: rule.HumanName, IssueKey: issue.Key}
            }
            if len(fv.Values) == 0 { continue }
            key = fv.Values[0]
        default:
            return "", &UnsupportedFieldError{Field: rule.HumanName, IssueKey: issue.Key, Got: fv.RawType}
        }
        if program, ok := rule.Programs[key]; ok {
            return program, nil
        }
    }
    return "", &NoProgramError{IssueKey: issue.Key}
}
