/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "net/http"
    "strconv"

    "github.com/gin-gonic/gin"
    "github.com/HamedShams/effort-pulse/internal/config"
    "github.com/HamedShams/effort-pulse/internal/effort"
    "github.com/HamedShams/effort-pulse/internal/services"
    "github.com/rs/zerolog"
)

type Handlers struct {
    cfg config.Config
    log zerolog.Logger
    svc *services.Service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc *services.Service) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    if lr == nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "no runs yet"})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    // Run in background detached from the HTTP request to avoid context cancellation
    go func(){ _ = h.svc.RunScheduledReport(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// bucketPayload is the JSON shape for one bucket; warnings ride alongside
// the per-program breakdown rather than failing the request.
type bucketPayload struct {
    Start    string                   `json:"start"`
    End      string                   `json:"end"`
    Workdays int                      `json:"workdays"`
    Projects map[string]projectView   `json:"projects"`
    Warnings []string                 `json:"warnings"`
}

type projectView struct {
    TotalHours  float64            `json:"total_hours"`
    TicketHours map[string]float64 `json:"ticket_hours"`
    UserEffort  map[string]float64 `json:"user_effort_pct"`
}

func toPayload(reports []effort.BucketReport) []bucketPayload {
    out := make([]bucketPayload, 0, len(reports))
    for _, r := range reports {
        bp := bucketPayload{
            Start:    r.Range.Start.Format("2006-01-02"),
            End:      r.Range.End.Format("2006-01-02"),
            Workdays: r.Workdays,
            Projects: map[string]projectView{},
            Warnings: r.Warnings,
        }
        if bp.Warnings == nil { bp.Warnings = []string{} }
        for name, p := range r.Projects {
            bp.Projects[name] = projectView{
                TotalHours:  p.TotalHours(),
                TicketHours: p.TicketHours(),
                UserEffort:  p.UserEffort(r.Workdays),
            }
        }
        out = append(out, bp)
    }
    return out
}

func (h *Handlers) WeeklyJSON(c *gin.Context) {
    weeks, _ := strconv.Atoi(c.DefaultQuery("weeks", "0"))
    reports, err := h.svc.WeeklyReport(c.Request.Context(), weeks)
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"weekly_data": toPayload(reports)})
}

func (h *Handlers) WeeklyCSV(c *gin.Context) {
    weeks, _ := strconv.Atoi(c.DefaultQuery("weeks", "0"))
    reports, err := h.svc.WeeklyReport(c.Request.Context(), weeks)
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    csv, err := services.RenderCSV(reports)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.Data(http.StatusOK, "text/csv", []byte(csv))
}

func (h *Handlers) MonthlyJSON(c *gin.Context) {
    offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
    reports, err := h.svc.MonthlyReport(c.Request.Context(), offset)
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"monthly_data": toPayload(reports)})
}

func (h *Handlers) MonthlyCSV(c *gin.Context) {
    offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
    reports, err := h.svc.MonthlyReport(c.Request.Context(), offset)
    if err != nil {
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    csv, err := services.RenderCSV(reports)
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.Data(http.StatusOK, "text/csv", []byte(csv))
}

func (h *Handlers) TelegramWebhook(c *gin.Context) {
    headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
    pathSecret := c.Param("secret")
    // Accept either header secret (preferred) or path secret
    if headerSecret != h.cfg.TelegramWebhookSecret && pathSecret != h.cfg.TelegramWebhookSecret {
        c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
        return
    }
    h.log.Info().Str("ip", c.ClientIP()).Str("ua", c.GetHeader("User-Agent")).Msg("telegram webhook received")

    var upd struct {
        Message *struct {
            Chat struct { ID int64 `json:"id"` } `json:"chat"`
            Text string `json:"text"`
        } `json:"message"`
    }
    if err := c.ShouldBindJSON(&upd); err == nil && upd.Message != nil {
        chatID := upd.Message.Chat.ID
        text := upd.Message.Text
        // accept only configured chats if provided
        allowed := len(h.cfg.TelegramChatIDs) == 0
        if !allowed {
            for _, id := range h.cfg.TelegramChatIDs { if id == chatID { allowed = true; break } }
        }
        if allowed {
            switch text {
            case "/report 7d":
                go func(){ _ = h.svc.RunOnDemandReport(context.Background(), chatID, 7) }()
            case "/report 30d":
                go func(){ _ = h.svc.RunOnDemandReport(context.Background(), chatID, 30) }()
            case "/start", "/help":
                go func(){ _ = h.svc.SendHelp(context.Background(), chatID) }()
            }
        }
    }

    c.JSON(http.StatusOK, gin.H{"ok": true})
}
