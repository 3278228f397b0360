package effort

import (
    "math"
    "testing"
)

func TestSecondsToHours_CeilsToQuarterHour(t *testing.T) {
    cases := []struct {
        secs int
        want float64
    }{
        {0, 0},
        {1, 0.25},
        {899, 0.25},
        {900, 0.25},
        {901, 0.5},
        {3600, 1.0},
        {3601, 1.25},
        {23040, 6.5}, // 6.4h of seconds rounds up
    }
    for _, c := range cases {
        if got := SecondsToHours(c.secs); got != c.want {
            t.Fatalf("SecondsToHours(%d) = %v, want %v", c.secs, got, c.want)
        }
    }
}

func TestAddWorklog_TotalsStayConsistent(t *testing.T) {
    p := NewProjectEffort("Delta")
    p.AddWorklog("DELTA-1", "alice", 1800)
    p.AddWorklog("DELTA-1", "bob", 900)
    p.AddWorklog("DELTA-2", "alice", 450)

    if p.Total != 3150 { t.Fatalf("total = %d, want 3150", p.Total) }
    sumTickets := 0
    for _, v := range p.Tickets { sumTickets += v }
    sumUsers := 0
    for _, v := range p.Users { sumUsers += v }
    if sumTickets != p.Total || sumUsers != p.Total {
        t.Fatalf("tickets sum %d, users sum %d, want both %d", sumTickets, sumUsers, p.Total)
    }
    if p.TotalHours() != SecondsToHours(3150) {
        t.Fatalf("TotalHours = %v, want %v", p.TotalHours(), SecondsToHours(3150))
    }
    if h := p.TicketHours()["DELTA-1"]; h != 0.75 {
        t.Fatalf("DELTA-1 hours = %v, want 0.75", h)
    }
}

func TestUserEffort_PercentOfCapacity(t *testing.T) {
    p := NewProjectEffort("Hydro")
    // 5 workdays * 6.4 focus hours = 32h capacity; 16h logged = 50%
    p.AddWorklog("HYDRO-9", "carol", 16*3600)
    got := p.UserEffort(5)["carol"]
    if math.Abs(got-50.0) > 1e-9 {
        t.Fatalf("UserEffort = %v, want 50", got)
    }
}

func TestUserEffort_Monotonic(t *testing.T) {
    a := NewProjectEffort("X")
    a.AddWorklog("X-1", "u", 3600)
    b := NewProjectEffort("X")
    b.AddWorklog("X-1", "u", 7200)
    if a.UserEffort(5)["u"] >= b.UserEffort(5)["u"] {
        t.Fatalf("more seconds should mean higher percent")
    }
    if b.UserEffort(10)["u"] >= b.UserEffort(5)["u"] {
        t.Fatalf("more workdays should mean lower percent")
    }
}

func TestRows_RoundTripsPerTicketPerUser(t *testing.T) {
    p := NewProjectEffort("Nightingale")
    adds := []struct {
        ticket, user string
        secs         int
    }{
        {"NUS-1", "alice", 600},
        {"NUS-1", "alice", 300},
        {"NUS-1", "bob", 900},
        {"NUS-2", "bob", 1200},
    }
    for _, a := range adds { p.AddWorklog(a.ticket, a.user, a.secs) }

    resummed := map[string]int{}
    total := 0
    for _, r := range p.Rows() {
        if r.Program != "Nightingale" { t.Fatalf("program = %q", r.Program) }
        resummed[r.Ticket+"/"+r.User] += r.Seconds
        total += r.Seconds
    }
    if total != p.Total { t.Fatalf("rows total = %d, want %d", total, p.Total) }
    if resummed["NUS-1/alice"] != 900 || resummed["NUS-1/bob"] != 900 || resummed["NUS-2/bob"] != 1200 {
        t.Fatalf("resummed rows = %#v", resummed)
    }
    if len(resummed) != 3 { t.Fatalf("expected 3 (ticket,user) pairs, got %d", len(resummed)) }
}
