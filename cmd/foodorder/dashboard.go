package main

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/syp1xd/food-ordering-app/config"
	"github.com/syp1xd/food-ordering-app/models"
)

// Dashboard renders a status page with live bus and order counters
type Dashboard struct {
	services *config.Services
}

// NewDashboard creates a new dashboard handler
func NewDashboard(s *config.Services) *Dashboard {
	return &Dashboard{services: s}
}

// ServeHTTP renders the status dashboard
func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := d.services.Store.CountOrdersByStatus(ctx)
	if err != nil {
		d.services.Logger.Warn("dashboard: failed to count orders", slog.String("error", err.Error()))
	}

	snap, err := d.services.Telemetry.Snapshot(ctx)
	if err != nil {
		d.services.Logger.Warn("dashboard: failed to collect metrics", slog.String("error", err.Error()))
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Order Service Status</title>
    <meta http-equiv="refresh" content="10">
    <style>
        body {
            font-family: 'Courier New', monospace;
            background: #1a1a1a;
            color: #00ff00;
            padding: 20px;
            margin: 0;
        }
        .container {
            max-width: 900px;
            margin: 0 auto;
        }
        h1 {
            border-bottom: 2px solid #00ff00;
            padding-bottom: 10px;
        }
        h2 {
            color: #00cc00;
            margin-top: 0;
        }
        .section {
            background: #0d0d0d;
            border: 1px solid #00ff00;
            padding: 20px;
            margin: 20px 0;
            border-radius: 5px;
        }
        .label {
            color: #808080;
            display: inline-block;
            width: 200px;
        }
        .value {
            font-weight: bold;
        }
        .timestamp {
            color: #808080;
            font-size: 0.9em;
            text-align: right;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Order Service Status</h1>

        <div class="section">
            <h2>Status Stream</h2>
            <div><span class="label">Open streams:</span><span class="value">%d</span></div>
            <div><span class="label">Events published:</span><span class="value">%d</span></div>
            <div><span class="label">Events delivered:</span><span class="value">%d</span></div>
            <div><span class="label">Events dropped:</span><span class="value">%d</span></div>
        </div>

        <div class="section">
            <h2>Orders</h2>
            %s
        </div>

        <div class="timestamp">
            Last updated: %s (auto-refresh every 10s)
        </div>
    </div>
</body>
</html>`,
		d.services.Bus.Subscribers(),
		snap.Published,
		snap.Delivered,
		snap.Dropped,
		renderOrderCounts(counts),
		time.Now().Format("2006-01-02 15:04:05 MST"),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// renderOrderCounts lists every status in lifecycle order
func renderOrderCounts(counts map[models.OrderStatus]int) string {
	var b strings.Builder
	for _, status := range models.OrderStatuses() {
		fmt.Fprintf(&b, `<div><span class="label">%s:</span><span class="value">%d</span></div>`,
			html.EscapeString(string(status)), counts[status])
		b.WriteString("\n")
	}
	return b.String()
}
