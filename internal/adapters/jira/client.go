/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "os"
    "strings"
    "time"

    "github.com/HamedShams/effort-pulse/internal/config"
    "github.com/HamedShams/effort-pulse/internal/domain"
    "github.com/rs/zerolog"
)

type Client struct {
    baseURL string
    token   string
    basic   string
    user    string
    pass    string
    http    *http.Client
    log     zerolog.Logger
    apiVer  string
    paths   []string // dotted field paths the classifier needs
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    paths := make([]string, 0, len(cfg.Rules))
    for _, r := range cfg.Rules { paths = append(paths, r.FieldPath) }
    return &Client{
        baseURL: cfg.JiraBaseURL,
        token:   cfg.JiraPAT,
        basic:   getenvBasic(),
        user:    cfg.JiraUsername,
        pass:    cfg.JiraPassword,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
        apiVer:  cfg.JiraAPIVersion,
        paths:   paths,
    }
}

// getenvBasic reads JIRA_BASIC_AUTH from environment if present (format: user:pass base64), optional
func getenvBasic() string {
    v := ""
    if s := strings.TrimSpace(os.Getenv("JIRA_BASIC_AUTH")); s != "" { v = s }
    return v
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if q != nil && len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
    var r io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        r = strings.NewReader(string(b))
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return nil, err }
        if body != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        } else if c.basic != "" {
            req.Header.Set("Authorization", "Basic "+c.basic)
        }
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            defer resp.Body.Close()
            if resp.StatusCode >= 300 {
                b, _ := io.ReadAll(resp.Body)
                // retry on 429/5xx
                if resp.StatusCode == 429 || resp.StatusCode >= 500 {
                    lastErr = fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                } else {
                    return nil, fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                }
            } else {
                var out map[string]any
                if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return nil, err }
                return out, nil
            }
        }
        // backoff
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return nil, lastErr
}

func (c *Client) search(ctx context.Context, jql string, startAt, max int) (map[string]any, error) {
    if jql == "" { return nil, errors.New("jira: empty jql") }
    if c.apiVer == "2" {
        q := url.Values{}
        q.Set("jql", jql)
        if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
        if max > 0 { q.Set("maxResults", fmt.Sprint(max)) }
        q.Set("fields", "*all")
        u := c.apiURL("/rest/api/2/search", q)
        return c.doJSON(ctx, http.MethodGet, u, nil)
    }
    // default to v3
    body := map[string]any{"jql": jql, "startAt": startAt, "maxResults": max}
    u := c.apiURL("/rest/api/3/search", url.Values{"fields": []string{"*all"}})
    return c.doJSON(ctx, http.MethodPost, u, body)
}

func (c *Client) worklogsPage(ctx context.Context, key string, startAt, max int) (map[string]any, error) {
    if key == "" { return nil, errors.New("jira: empty issue key") }
    q := url.Values{}
    if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
    if max > 0 { q.Set("maxResults", fmt.Sprint(max)) }
    path := "/rest/api/3/issue/"+url.PathEscape(key)+"/worklog"
    if c.apiVer == "2" { path = "/rest/api/2/issue/"+url.PathEscape(key)+"/worklog" }
    u := c.apiURL(path, q)
    return c.doJSON(ctx, http.MethodGet, u, nil)
}

// worklogJQL scopes the search to worklogs by the given authors inside the
// range. The date bounds are padded by one day because JQL comparisons are
// exclusive; this scope is advisory only and the engine re-filters.
func worklogJQL(authors []string, r domain.DateRange) string {
    quoted := make([]string, 0, len(authors))
    for _, a := range authors { quoted = append(quoted, fmt.Sprintf("%q", a)) }
    author := fmt.Sprintf("worklogauthor in (%s)", strings.Join(quoted, ","))
    start := fmt.Sprintf("worklogdate > %q", r.Start.AddDate(0, 0, -1).Format("2006-01-02"))
    end := fmt.Sprintf("worklogdate < %q", r.End.AddDate(0, 0, 1).Format("2006-01-02"))
    return strings.Join([]string{author, start, end}, " AND ")
}

// IssuesForRange pages the search results for the bucket and maps each raw
// issue into a domain.Issue carrying the classifier's field paths.
func (c *Client) IssuesForRange(ctx context.Context, r domain.DateRange, authors []string) ([]domain.Issue, error) {
    jql := worklogJQL(authors, r)
    var out []domain.Issue
    startAt := 0
    for {
        page, err := c.search(ctx, jql, startAt, 50)
        if err != nil { return nil, err }
        arr, _ := page["issues"].([]any)
        if len(arr) == 0 { break }
        for _, it := range arr {
            im, _ := it.(map[string]any)
            if im == nil { continue }
            key := toStrAny(im["key"])
            if key == "" { continue }
            fields, _ := im["fields"].(map[string]any)
            out = append(out, domain.Issue{Key: key, Fields: c.resolveFields(fields)})
        }
        if len(arr) < 50 { break }
        startAt += 50
    }
    return out, nil
}

// IssueWorklogs returns the full worklog history for an issue; the engine
// does its own date and author filtering.
func (c *Client) IssueWorklogs(ctx context.Context, key string) ([]domain.Worklog, error) {
    var out []domain.Worklog
    startAt := 0
    for {
        page, err := c.worklogsPage(ctx, key, startAt, 100)
        if err != nil { return nil, err }
        arr, _ := page["worklogs"].([]any)
        if len(arr) == 0 { break }
        for _, w0 := range arr {
            wi, _ := w0.(map[string]any)
            if wi == nil { continue }
            started := parseTime(wi["started"])
            if started == nil { continue }
            author := ""
            if a, ok := wi["author"].(map[string]any); ok {
                author = toStrAny(a["name"])
                if author == "" { author = toStrAny(a["accountId"]) }
            }
            secs := 0
            if v, ok := wi["timeSpentSeconds"].(float64); ok { secs = int(v) }
            // the calendar date as written, ignoring the zone offset
            day := time.Date(started.Year(), started.Month(), started.Day(), 0, 0, 0, 0, time.UTC)
            out = append(out, domain.Worklog{IssueKey: key, Author: author, Started: day, Seconds: secs})
        }
        total, _ := page["total"].(float64)
        startAtResp, _ := page["startAt"].(float64)
        maxResp, _ := page["maxResults"].(float64)
        if total == 0 { break }
        next := int(startAtResp) + int(maxResp)
        if float64(next) >= total { break }
        startAt = next
    }
    return out, nil
}

// resolveFields walks each configured dotted path into the raw fields map
// and builds the typed union the classifier consumes.
func (c *Client) resolveFields(fields map[string]any) map[string]domain.FieldValue {
    out := make(map[string]domain.FieldValue, len(c.paths))
    for _, path := range c.paths {
        fv, ok := resolvePath(fields, path)
        if !ok { continue }
        out[path] = fv
    }
    return out
}

func resolvePath(fields map[string]any, path string) (domain.FieldValue, bool) {
    var cur any = fields
    for _, part := range strings.Split(path, ".") {
        m, ok := cur.(map[string]any)
        if !ok { return domain.FieldValue{}, false }
        cur, ok = m[part]
        if !ok { return domain.FieldValue{}, false }
    }
    return fieldValue(cur), true
}

func fieldValue(v any) domain.FieldValue {
    switch t := v.(type) {
    case nil:
        return domain.FieldValue{Kind: domain.KindMissing}
    case string:
        return domain.FieldValue{Kind: domain.KindScalar, Value: t}
    case map[string]any:
        if s, ok := t["value"].(string); ok {
            return domain.FieldValue{Kind: domain.KindOption, Value: s}
        }
        return domain.FieldValue{Kind: domain.KindUnsupported, RawType: "object"}
    case []any:
        vals := make([]string, 0, len(t))
        for _, it := range t {
            switch m := it.(type) {
            case string:
                vals = append(vals, m)
            case map[string]any:
                if s, ok := m["value"].(string); ok { vals = append(vals, s); continue }
                return domain.FieldValue{Kind: domain.KindUnsupported, RawType: "list of objects"}
            default:
                return domain.FieldValue{Kind: domain.KindUnsupported, RawType: fmt.Sprintf("list of %T", it)}
            }
        }
        return domain.FieldValue{Kind: domain.KindOptions, Values: vals}
    default:
        return domain.FieldValue{Kind: domain.KindUnsupported, RawType: fmt.Sprintf("%T", v)}
    }
}

func parseTime(v any) *time.Time {
    s, _ := v.(string)
    if s == "" { return nil }
    layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000-0700", "2006-01-02T15:04:05-0700"}
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil { return &t }
    }
    return nil
}

func toStrAny(v any) string {
    if v == nil { return "" }
    if s, ok := v.(string); ok { return s }
    return fmt.Sprintf("%v", v)
}
