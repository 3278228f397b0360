/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package effort

import (
    "context"
    "fmt"
    "time"

    "github.com/HamedShams/effort-pulse/internal/domain"
)

// Source supplies candidate issues and their worklogs. The search query is
// expected to be scoped to the range and authors already, but only as an
// optimization: the tracker may return worklogs outside the range or from
// other authors, so Run re-filters everything itself.
type Source interface {
    IssuesForRange(ctx context.Context, r domain.DateRange, authors []string) ([]domain.Issue, error)
    IssueWorklogs(ctx context.Context, issueKey string) ([]domain.Worklog, error)
}

// BucketReport is the attribution result for one date range.
type BucketReport struct {
    Range    domain.DateRange
    Workdays int
    Projects map[string]*ProjectEffort
    Warnings []string
}

// Run attributes worklog effort to programs, one BucketReport per input
// range, in input order. Buckets are processed strictly sequentially; each
// run builds fresh accumulators and holds nothing afterwards. A worklog
// counts only if its started date falls inside the bucket and its author
// is in authors. Classification failures become per-bucket warnings, never
// abort the bucket; source errors propagate unchanged.
func Run(ctx context.Context, src Source, buckets []domain.DateRange, authors []string, holidays []time.Time, rules []Rule) ([]BucketReport, error) {
    authorSet := make(map[string]struct{}, len(authors))
    for _, a := range authors { authorSet[a] = struct{}{} }

    out := make([]BucketReport, 0, len(buckets))
    for _, bucket := range buckets {
        report := BucketReport{
            Range:    bucket,
            Workdays: Workdays(bucket.Start, bucket.End, holidays),
            Projects: map[string]*ProjectEffort{},
        }
        issues, err := src.IssuesForRange(ctx, bucket, authors)
        if err != nil { return nil, err }
        for _, issue := range issues {
            program, err := Classify(issue, rules)
            if err != nil {
                report.Warnings = append(report.Warnings, err.Error())
                continue
            }
            worklogs, err := src.IssueWorklogs(ctx, issue.Key)
            if err != nil { return nil, err }
            for _, w := range worklogs {
                if !bucket.Contains(Day(w.Started)) { continue }
                if _, ok := authorSet[w.Author]; !ok { continue }
                project := report.Projects[program]
                if project == nil {
                    project = NewProjectEffort(program)
                    report.Projects[program] = project
                }
                project.AddWorklog(issue.Key, w.Author, w.Seconds)
            }
        }
        if len(report.Projects) == 0 {
            report.Warnings = append(report.Warnings,
                fmt.Sprintf("no worklogs found for %s", bucket.Start.Format("2006-01-02")))
        }
        out = append(out, report)
    }
    return out, nil
}
