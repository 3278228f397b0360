package effort

import (
    "errors"
    "strings"
    "testing"

    "github.com/HamedShams/effort-pulse/internal/domain"
)

func testRules() []Rule {
    return []Rule{
        {
            FieldPath: "project.key",
            HumanName: "Jira Project",
            Programs:  map[string]string{"DELTA": "Delta", "HYDRO": "Hydro"},
        },
        {
            FieldPath: "customfield_10409",
            HumanName: "Research System",
            Programs:  map[string]string{"HAL": "HAL", "Boneyard": "Innovative Systems Lab"},
        },
    }
}

func TestClassify_FirstMatchWins(t *testing.T) {
    issue := domain.Issue{Key: "DELTA-42", Fields: map[string]domain.FieldValue{
        "project.key": {Kind: domain.KindScalar, Value: "DELTA"},
        // Ambiguous second field must never be evaluated once rule 1 matched.
        "customfield_10409": {Kind: domain.KindOptions, Values: []string{"HAL", "Boneyard"}},
    }}
    program, err := Classify(issue, testRules())
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if program != "Delta" { t.Fatalf("program = %q, want Delta", program) }
}

func TestClassify_RuleOrderIsObservable(t *testing.T) {
    issue := domain.Issue{Key: "DELTA-7", Fields: map[string]domain.FieldValue{
        "project.key":       {Kind: domain.KindScalar, Value: "DELTA"},
        "customfield_10409": {Kind: domain.KindOptions, Values: []string{"HAL"}},
    }}
    rules := testRules()
    forward, err := Classify(issue, rules)
    if err != nil { t.Fatalf("forward: %v", err) }
    reordered := []Rule{rules[1], rules[0]}
    backward, err := Classify(issue, reordered)
    if err != nil { t.Fatalf("backward: %v", err) }
    if forward != "Delta" || backward != "HAL" {
        t.Fatalf("forward=%q backward=%q; evaluation order must be observable", forward, backward)
    }
}

func TestClassify_FallsThroughMissingAndEmptyFields(t *testing.T) {
    issue := domain.Issue{Key: "SUP-1", Fields: map[string]domain.FieldValue{
        "project.key":       {Kind: domain.KindScalar, Value: "SUP"}, // not in table
        "customfield_10409": {Kind: domain.KindOptions, Values: []string{"HAL"}},
    }}
    program, err := Classify(issue, testRules())
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if program != "HAL" { t.Fatalf("program = %q, want HAL", program) }

    // Empty option list skips the rule rather than failing.
    issue.Fields["customfield_10409"] = domain.FieldValue{Kind: domain.KindOptions}
    if _, err := Classify(issue, testRules()); err == nil {
        t.Fatalf("expected NoProgramError after all rules fell through")
    }
}

func TestClassify_AmbiguousField(t *testing.T) {
    issue := domain.Issue{Key: "SVCPLAN-3", Fields: map[string]domain.FieldValue{
        "customfield_10409": {Kind: domain.KindOptions, Values: []string{"HAL", "Boneyard"}},
    }}
    _, err := Classify(issue, testRules())
    var ambiguous *AmbiguousFieldError
    if !errors.As(err, &ambiguous) { t.Fatalf("expected AmbiguousFieldError, got %v", err) }
    if ambiguous.Field != "Research System" || ambiguous.IssueKey != "SVCPLAN-3" {
        t.Fatalf("error fields = %#v", ambiguous)
    }
    if !strings.Contains(err.Error(), "Research System") {
        t.Fatalf("message should name the rule: %q", err.Error())
    }
}

func TestClassify_UnsupportedFieldType(t *testing.T) {
    issue := domain.Issue{Key: "SVCPLAN-4", Fields: map[string]domain.FieldValue{
        "customfield_10409": {Kind: domain.KindUnsupported, RawType: "float64"},
    }}
    _, err := Classify(issue, testRules())
    var unsupported *UnsupportedFieldError
    if !errors.As(err, &unsupported) { t.Fatalf("expected UnsupportedFieldError, got %v", err) }
    if unsupported.Got != "float64" { t.Fatalf("got = %q", unsupported.Got) }
}

func TestClassify_NoProgramNamesIssueKey(t *testing.T) {
    issue := domain.Issue{Key: "MISC-99", Fields: map[string]domain.FieldValue{}}
    _, err := Classify(issue, testRules())
    var noProgram *NoProgramError
    if !errors.As(err, &noProgram) { t.Fatalf("expected NoProgramError, got %v", err) }
    if !strings.Contains(err.Error(), "MISC-99") {
        t.Fatalf("message should name the issue: %q", err.Error())
    }
}
