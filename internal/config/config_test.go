package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"
)

func TestLoadRulesFileOrderIsPriority(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "rules.json")
    data := `[
        {"field":"customfield_10409","name":"Research System","programs":{"HAL":"HAL"}},
        {"field":"project.key","name":"Jira Project","programs":{"DELTA":"Delta"}}
    ]`
    if err := os.WriteFile(path, []byte(data), 0o644); err != nil { t.Fatal(err) }
    rules := loadRules(path)
    if len(rules) != 2 { t.Fatalf("expected 2 rules, got %d", len(rules)) }
    if rules[0].FieldPath != "customfield_10409" || rules[1].FieldPath != "project.key" {
        t.Fatalf("rule order not preserved: %q then %q", rules[0].FieldPath, rules[1].FieldPath)
    }
    if rules[0].Programs["HAL"] != "HAL" { t.Fatalf("program table not parsed") }
}

func TestLoadRulesFallsBackToDefaults(t *testing.T) {
    rules := loadRules(filepath.Join(t.TempDir(), "missing.json"))
    if len(rules) != 3 { t.Fatalf("expected 3 default rules, got %d", len(rules)) }
    if rules[0].FieldPath != "project.key" { t.Fatalf("first default rule = %q", rules[0].FieldPath) }
    if rules[2].Programs["Boneyard"] != "Innovative Systems Lab" {
        t.Fatalf("research system table: Boneyard -> %q", rules[2].Programs["Boneyard"])
    }

    bad := filepath.Join(t.TempDir(), "bad.json")
    if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil { t.Fatal(err) }
    if got := loadRules(bad); len(got) != 3 { t.Fatalf("unparseable file should fall back, got %d rules", len(got)) }
}

func TestLoadHolidaysMergesFileAndEnv(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "holidays.json")
    if err := os.WriteFile(path, []byte(`["2024-12-25"," 2024-07-04"]`), 0o644); err != nil { t.Fatal(err) }
    got := loadHolidays(path, "2024-01-01,bogus")
    if len(got) != 3 { t.Fatalf("expected 3 holidays, got %d: %v", len(got), got) }
    want := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
    if !got[0].Equal(want) { t.Fatalf("first holiday = %v, want %v", got[0], want) }
    if got[2].Month() != time.January || got[2].Day() != 1 { t.Fatalf("env holiday = %v", got[2]) }
}
