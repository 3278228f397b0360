package services

import (
    "strings"
    "testing"
    "time"

    "github.com/HamedShams/effort-pulse/internal/domain"
    "github.com/HamedShams/effort-pulse/internal/effort"
)

func sampleReports() []effort.BucketReport {
    p := effort.NewProjectEffort("Delta")
    p.AddWorklog("DELTA-1", "alice", 3600)
    p.AddWorklog("DELTA-2", "bob", 900)
    return []effort.BucketReport{{
        Range: domain.DateRange{
            Start: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
            End:   time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC),
        },
        Workdays: 5,
        Projects: map[string]*effort.ProjectEffort{"Delta": p},
        Warnings: []string{"no program for issue MISC-1"},
    }}
}

func TestRenderText(t *testing.T) {
    out := RenderText(sampleReports())
    for _, want := range []string{
        "Week of 2024-06-10 (5 work days)",
        "Delta",
        "TOTAL: 1.25h",
        "DELTA-1: 1h",
        "DELTA-2: 0.25h",
        "Warning: no program for issue MISC-1",
    } {
        if !strings.Contains(out, want) {
            t.Fatalf("report missing %q:\n%s", want, out)
        }
    }
}

func TestRenderCSV(t *testing.T) {
    out, err := RenderCSV(sampleReports())
    if err != nil { t.Fatalf("csv: %v", err) }
    lines := strings.Split(strings.TrimSpace(out), "\n")
    if len(lines) != 2 { t.Fatalf("got %d lines:\n%s", len(lines), out) }
    if lines[0] != "2024-06-10,Delta,DELTA-1,alice,3600" {
        t.Fatalf("line 0 = %q", lines[0])
    }
    if lines[1] != "2024-06-10,Delta,DELTA-2,bob,900" {
        t.Fatalf("line 1 = %q", lines[1])
    }
}

func TestChunkText_BreaksOnLines(t *testing.T) {
    text := strings.Repeat("aaaa\n", 10)
    chunks := chunkText(strings.TrimSpace(text), 12)
    for _, c := range chunks {
        if len([]rune(c)) > 12 { t.Fatalf("chunk too long: %q", c) }
    }
    if joined := strings.Join(chunks, "\n"); joined != strings.TrimSpace(text) {
        t.Fatalf("chunks lost content: %q", joined)
    }
}
