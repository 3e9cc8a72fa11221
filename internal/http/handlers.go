package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"climbreg/internal/core"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title          string
		Date           string
		Location       string
		Venmo          string
		Minimum        string
		Default        string
		Categories     []core.Category
		RefreshSeconds int
	}{
		Title:          s.event.Title,
		Date:           s.event.Date,
		Location:       s.event.Location,
		Venmo:          s.event.VenmoHandle,
		Minimum:        core.FormatDollars(s.event.MinimumDonation.Cents),
		Default:        core.FormatDollars(s.event.DefaultDonation.Cents),
		Categories:     core.Categories,
		RefreshSeconds: s.refreshSeconds(),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	email := sanitizeInput(r.Form.Get("email"))
	category := core.Category(sanitizeInput(r.Form.Get("category")))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid donation amount</div>`))
		return
	}

	reg := core.Registration{
		Name:        name,
		Email:       email,
		Category:    category,
		Amount:      core.Money{Cents: cents},
		AmountValid: true,
	}
	if err := reg.Validate(s.event.MinimumDonation); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	if !s.svc.Append(r.Context(), reg) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Registration could not be saved. Please try again.</div>`))
		return
	}

	w.Header().Set("HX-Trigger", `{"registration:created": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">You're registered, ` +
		template.HTMLEscapeString(reg.Name) +
		`! Thanks for your ` + template.HTMLEscapeString(core.FormatDollars(reg.Amount.Cents)) +
		` donation.</div>`))
}

// handlePrizePool renders the prize-pool summary partial.
func (s *Server) handlePrizePool(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	stats := s.svc.PrizePool(r.Context())

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="prize-pool"><div class="placeholder">Prize pool: ` +
			template.HTMLEscapeString(core.FormatDollars(stats.Total.Cents)) + `</div></section>`))
		return
	}

	data := struct {
		Total          string
		Participants   int
		MenCount       int
		WomenCount     int
		RefreshSeconds int
	}{
		Total:          core.FormatDollars(stats.Total.Cents),
		Participants:   stats.ParticipantCount,
		MenCount:       stats.MenCount,
		WomenCount:     stats.WomenCount,
		RefreshSeconds: s.refreshSeconds(),
	}

	if err := s.templates.ExecuteTemplate(w, "prize_pool.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "prize_pool.html")
		_, _ = w.Write([]byte(`<section id="prize-pool"><div class="placeholder">Error rendering prize pool</div></section>`))
	}
}

// handleRecent renders the latest registrations partial, newest first.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	recent := s.svc.Recent(r.Context(), s.event.RecentCount)

	type row struct {
		Name     string
		Category string
		Amount   string
		When     string
	}
	data := struct {
		Rows           []row
		RefreshSeconds int
	}{RefreshSeconds: s.refreshSeconds()}
	for _, reg := range recent {
		amount := "—"
		if reg.AmountValid {
			amount = core.FormatDollars(reg.Amount.Cents)
		}
		when := ""
		if !reg.Timestamp.IsZero() {
			when = reg.Timestamp.Local().Format("Jan 2, 3:04 PM")
		}
		data.Rows = append(data.Rows, row{
			Name:     reg.Name,
			Category: string(reg.Category),
			Amount:   amount,
			When:     when,
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="recent"><div class="placeholder">` +
			template.HTMLEscapeString(time.Now().Format(time.RFC3339)) + `</div></section>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "recent.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "recent.html")
		_, _ = w.Write([]byte(`<section id="recent"><div class="placeholder">Error rendering recent registrations</div></section>`))
	}
}

// handleRefresh drops both caches so the next partial load refetches from
// the store.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.svc.InvalidateRegistrations()
	s.svc.InvalidateStats()

	slog.InfoContext(r.Context(), "Caches invalidated by manual refresh")

	w.Header().Set("HX-Trigger", `{"data:refreshed": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Refreshed</div>`))
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
