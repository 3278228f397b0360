/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/HamedShams/effort-pulse/internal/config"
    "github.com/HamedShams/effort-pulse/internal/domain"
    "github.com/HamedShams/effort-pulse/internal/effort"
    "github.com/HamedShams/effort-pulse/internal/repo"
    "github.com/rs/zerolog"
)

type LLM interface {
    Summarize(ctx context.Context, totals map[string]float64, warnings []string) (string, error)
}

type Notifier interface {
    SendMessage(ctx context.Context, chatID int64, text string) error
    SendMessagePlain(ctx context.Context, chatID int64, text string) error
    SendMarkdownV2(ctx context.Context, chatID int64, text string) error
}

type Service struct {
    cfg config.Config
    log zerolog.Logger
    repo *repo.Repository
    src  effort.Source
    llm  LLM
    tg   Notifier
}

func New(cfg config.Config, log zerolog.Logger, r *repo.Repository, src effort.Source, llm LLM, tg Notifier) *Service {
    return &Service{cfg: cfg, log: log, repo: r, src: src, llm: llm, tg: tg}
}

// WeeklyReport attributes effort over the last weeks ISO weeks, most
// recent first.
func (s *Service) WeeklyReport(ctx context.Context, weeks int) ([]effort.BucketReport, error) {
    if weeks <= 0 { weeks = s.cfg.ReportWeeks }
    buckets := effort.WeekBounds(weeks, time.Now())
    return effort.Run(ctx, s.src, buckets, s.cfg.WorklogAuthors, s.cfg.Holidays, s.cfg.Rules)
}

// MonthlyReport attributes effort over one calendar month; offset -1 is
// last month.
func (s *Service) MonthlyReport(ctx context.Context, offset int) ([]effort.BucketReport, error) {
    bucket := effort.MonthBounds(offset, time.Now())
    return effort.Run(ctx, s.src, []domain.DateRange{bucket}, s.cfg.WorklogAuthors, s.cfg.Holidays, s.cfg.Rules)
}

// RunScheduledReport is the cron entrypoint: generate the weekly report,
// snapshot the rows, and deliver the rendered text to the configured chats.
func (s *Service) RunScheduledReport(ctx context.Context) error {
    s.log.Info().Int("weeks", s.cfg.ReportWeeks).Msg("scheduled report: start")
    scope := fmt.Sprintf("last %d weeks", s.cfg.ReportWeeks)
    runID, err := s.repo.StartReportRun(ctx, "weekly", scope)
    if err != nil { s.log.Error().Err(err).Msg("start report run failed") }

    reports, runErr := s.WeeklyReport(ctx, s.cfg.ReportWeeks)
    issues, rows, warnings := s.persistRows(ctx, runID, reports)
    if runID != 0 {
        _ = s.repo.FinishReportRun(ctx, runID, issues, rows, warnings, runErr == nil, errString(runErr))
    }
    if runErr != nil {
        s.log.Error().Err(runErr).Msg("scheduled report: engine run failed")
        return runErr
    }

    text := RenderText(reports)
    if digest := s.narrativeDigest(ctx, reports); digest != "" {
        text = text + "\n" + digest + "\n"
    }
    s.deliver(ctx, text)
    s.log.Info().Int("buckets", len(reports)).Int("rows", rows).Int("warnings", warnings).Msg("scheduled report: done")
    return nil
}

// RunOnDemandReport answers a /report chat command with a report covering
// roughly the last sinceDays days, as whole weeks.
func (s *Service) RunOnDemandReport(ctx context.Context, chatID int64, sinceDays int) error {
    if chatID == 0 { return nil }
    if sinceDays <= 0 { sinceDays = 7 }
    weeks := (sinceDays + 6) / 7
    reports, err := s.WeeklyReport(ctx, weeks)
    if err != nil {
        _ = s.tg.SendMessagePlain(ctx, chatID, "report failed: "+err.Error())
        return err
    }
    for _, part := range chunkText(RenderText(reports), 3800) {
        if err := s.tg.SendMessagePlain(ctx, chatID, part); err != nil { return err }
    }
    return nil
}

// SendHelp replies with bot capabilities and commands.
func (s *Service) SendHelp(ctx context.Context, chatID int64) error {
    if chatID == 0 { return nil }
    help := "Effort Pulse Bot\n" +
        "Worklog effort attributed to funding programs.\n\n" +
        "Commands:\n" +
        "- /report 7d : report for the current week\n" +
        "- /report 30d : report for the last ~4 weeks\n" +
        "Setup: Admin configures Jira, worklog authors, and schedule."
    return s.tg.SendMessagePlain(ctx, chatID, help)
}

func (s *Service) GetLastRun(ctx context.Context) (*repo.LastRun, error) {
    return s.repo.GetLastRun(ctx)
}

func (s *Service) persistRows(ctx context.Context, runID int64, reports []effort.BucketReport) (issues, rows, warnings int) {
    if runID == 0 { return }
    seen := map[string]struct{}{}
    for _, r := range reports {
        warnings += len(r.Warnings)
        var bucketRows []effort.Row
        for _, p := range r.Projects {
            for _, row := range p.Rows() {
                bucketRows = append(bucketRows, row)
                seen[row.Ticket] = struct{}{}
            }
        }
        if err := s.repo.BulkInsertEffortRows(ctx, runID, r.Range.Start, bucketRows); err != nil {
            s.log.Error().Err(err).Time("bucket", r.Range.Start).Msg("persist effort rows failed")
        }
        rows += len(bucketRows)
    }
    issues = len(seen)
    return
}

// narrativeDigest is best-effort: a missing key or API failure only logs.
func (s *Service) narrativeDigest(ctx context.Context, reports []effort.BucketReport) string {
    if s.llm == nil || strings.TrimSpace(s.cfg.OpenAIKey) == "" { return "" }
    totals := map[string]float64{}
    var warnings []string
    for _, r := range reports {
        day := r.Range.Start.Format("2006-01-02")
        for name, p := range r.Projects {
            totals[day+"/"+name] = p.TotalHours()
        }
        warnings = append(warnings, r.Warnings...)
    }
    digest, err := s.llm.Summarize(ctx, totals, warnings)
    if err != nil {
        s.log.Error().Err(err).Msg("digest summarize failed")
        return ""
    }
    return digest
}

func (s *Service) deliver(ctx context.Context, text string) {
    parts := chunkText(text, 3800)
    for _, chat := range s.cfg.TelegramChatIDs {
        for _, p := range parts {
            if err := s.tg.SendMessagePlain(ctx, chat, p); err != nil {
                s.log.Error().Err(err).Int64("chat", chat).Msg("telegram send failed")
            }
        }
    }
    // If no numeric IDs, try usernames via resolver if available
    type usernameResolver interface{ ResolveUsername(ctx context.Context, username string) (int64, error) }
    if len(s.cfg.TelegramChatIDs) == 0 && len(s.cfg.TelegramChatUsernames) > 0 {
        r, ok := s.tg.(usernameResolver)
        if !ok {
            s.log.Error().Msg("telegram client does not support username resolution; set TELEGRAM_CHAT_IDS")
            return
        }
        for _, u := range s.cfg.TelegramChatUsernames {
            id, err := r.ResolveUsername(ctx, u)
            if err != nil { s.log.Error().Err(err).Str("username", u).Msg("resolve username failed"); continue }
            for _, p := range parts {
                if err := s.tg.SendMessagePlain(ctx, id, p); err != nil {
                    s.log.Error().Err(err).Str("username", u).Int64("chat", id).Msg("telegram send failed")
                }
            }
        }
    }
}

func errString(err error) string {
    if err == nil { return "" }
    return err.Error()
}
