package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/julianstephens/timebox/internal/constants"
	"github.com/julianstephens/timebox/internal/models"
	"github.com/julianstephens/timebox/internal/planner"
	"github.com/julianstephens/timebox/internal/schedule"
)

type slotRow struct {
	Key     string
	End     string
	Task    string
	Checked bool
	Color   string
}

type indexPage struct {
	Date          string
	Today         string
	Prev          string
	Next          string
	TopPriorities string
	BrainDump     string
	Rows          []slotRow
	Options       []string
	Message       string
}

type historyRow struct {
	Date    string
	Summary string
	Filled  int
	Done    int
}

type historyPage struct {
	Today   string
	Entries []historyRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.planner.Today()
	}

	entry, err := s.planner.Load(r.Context(), date)
	if err != nil {
		s.fail(w, r, "could not load entry", err)
		return
	}

	page := indexPage{
		Date:          entry.Date,
		Today:         s.planner.Today(),
		TopPriorities: entry.TopPriorities,
		BrainDump:     entry.BrainDump,
		Options:       models.TaskOptions(entry.TopPriorities, entry.BrainDump),
	}
	page.Prev, page.Next = neighbours(entry.Date)
	if r.URL.Query().Get("saved") != "" {
		page.Message = constants.SaveSuccessMessage
	}
	for _, key := range schedule.Keys() {
		slot := entry.Schedule[key]
		end, _ := schedule.SlotEnd(key)
		page.Rows = append(page.Rows, slotRow{
			Key:     key,
			End:     end,
			Task:    slot.Task,
			Checked: slot.Checked,
			Color:   slot.Color.Normalize().String(),
		})
	}

	s.render(w, r, "index", page)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request: could not parse form", http.StatusBadRequest)
		return
	}

	entry := entryFromForm(r.PostForm)

	// A client that disconnects mid-request must not abort a save already issued.
	res, err := s.planner.Save(context.WithoutCancel(r.Context()), entry)
	if err != nil {
		s.fail(w, r, "could not save entry", err)
		return
	}
	requestLog(r).Info("Entry saved", "date", res.Date, "id", res.ID, "created", res.Created)

	q := url.Values{}
	q.Set("date", res.Date)
	q.Set("saved", "1")
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.planner.History(r.Context())
	if err != nil {
		s.fail(w, r, "could not list entries", err)
		return
	}

	page := historyPage{Today: s.planner.Today()}
	for _, e := range entries {
		page.Entries = append(page.Entries, historyRow{
			Date:    e.Date,
			Summary: e.Summary(),
			Filled:  e.FilledSlots(),
			Done:    e.DoneSlots(),
		})
	}

	s.render(w, r, "history", page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.planner.Store().Ping(r.Context()); err != nil {
		requestLog(r).Warn("Health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(appCSS))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf strings.Builder
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.fail(w, r, "could not render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}

// fail maps an error to a status code. Bad dates are the caller's fault;
// everything else is reported as a server error and logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, planner.ErrInvalidDate) {
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}
	requestLog(r).Error("Request failed", "msg", msg, "error", err)
	http.Error(w, "Internal Server Error: "+msg, http.StatusInternalServerError)
}

// entryFromForm builds an entry from the posted fields. Every grid key is
// filled; absent or malformed slot fields fall back to the slot defaults.
func entryFromForm(form url.Values) models.Entry {
	sched := schedule.Empty()
	for _, key := range schedule.Keys() {
		slot := models.EmptySlot()
		slot.Task = form.Get(key)
		slot.Checked = isChecked(form.Get(key + "_checked"))
		if c := form.Get(key + "_color"); c != "" {
			slot.Color = models.CoerceColor(c)
		}
		sched[key] = slot
	}

	return models.Entry{
		Date:          form.Get("date"),
		TopPriorities: form.Get("top_priorities"),
		BrainDump:     form.Get("brain_dump"),
		Schedule:      sched,
	}
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func neighbours(date string) (prev, next string) {
	t, err := models.ParseDate(date)
	if err != nil {
		return "", ""
	}
	return t.AddDate(0, 0, -1).Format(constants.DateFormat), t.AddDate(0, 0, 1).Format(constants.DateFormat)
}
