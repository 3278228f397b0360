package jira

import (
    "testing"
    "time"

    "github.com/HamedShams/effort-pulse/internal/domain"
)

func TestResolvePath_NestedAndMissing(t *testing.T) {
    fields := map[string]any{
        "project": map[string]any{"key": "DELTA", "name": "Delta Project"},
        "customfield_10406": map[string]any{"value": "Delta", "id": "123"},
    }
    fv, ok := resolvePath(fields, "project.key")
    if !ok || fv.Kind != domain.KindScalar || fv.Value != "DELTA" {
        t.Fatalf("project.key = %#v ok=%v", fv, ok)
    }
    fv, ok = resolvePath(fields, "customfield_10406")
    if !ok || fv.Kind != domain.KindOption || fv.Value != "Delta" {
        t.Fatalf("customfield_10406 = %#v ok=%v", fv, ok)
    }
    if _, ok := resolvePath(fields, "customfield_99999"); ok {
        t.Fatalf("absent field should resolve to missing")
    }
    if _, ok := resolvePath(fields, "project.key.deeper"); ok {
        t.Fatalf("descending into a scalar should resolve to missing")
    }
}

func TestFieldValue_Shapes(t *testing.T) {
    if fv := fieldValue(nil); fv.Kind != domain.KindMissing {
        t.Fatalf("nil = %#v", fv)
    }
    fv := fieldValue([]any{map[string]any{"value": "HAL"}, map[string]any{"value": "Boneyard"}})
    if fv.Kind != domain.KindOptions || len(fv.Values) != 2 {
        t.Fatalf("option list = %#v", fv)
    }
    if fv := fieldValue([]any{}); fv.Kind != domain.KindOptions || len(fv.Values) != 0 {
        t.Fatalf("empty list = %#v", fv)
    }
    if fv := fieldValue(3.14); fv.Kind != domain.KindUnsupported || fv.RawType != "float64" {
        t.Fatalf("number = %#v", fv)
    }
    if fv := fieldValue(map[string]any{"id": "1"}); fv.Kind != domain.KindUnsupported {
        t.Fatalf("object without value key = %#v", fv)
    }
}

func TestWorklogJQL_PadsDatesByOneDay(t *testing.T) {
    r := domain.DateRange{
        Start: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
        End:   time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC),
    }
    jql := worklogJQL([]string{"alice", "bob"}, r)
    want := `worklogauthor in ("alice","bob") AND worklogdate > "2024-06-09" AND worklogdate < "2024-06-17"`
    if jql != want {
        t.Fatalf("jql = %q, want %q", jql, want)
    }
}
