package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/username/appkit/pkg/dateutil"
)

// DateResponse describes one calendar date.
type DateResponse struct {
	Date        string `json:"date"`
	Offset      int    `json:"offset"`
	Weekday     int    `json:"weekday"`
	WeekdayName string `json:"weekday_name"`
	UnixDays    int    `json:"unix_days"`
	ISO         string `json:"iso"`
}

type diffResponse struct {
	A    string `json:"a"`
	B    string `json:"b"`
	Days int    `json:"days"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.describe(dateutil.Today(s.clock)))
}

func (s *Server) handleDate(w http.ResponseWriter, r *http.Request) {
	d, err := dateutil.Parse(chi.URLParam(r, "date"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(d))
}

func (s *Server) handleOffset(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "offset")
	offset, err := strconv.Atoi(raw)
	if err != nil {
		s.badRequest(w, r, fmt.Errorf("offset %q is not an integer", raw))
		return
	}
	d, err := dateutil.FromOffset(offset)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(d))
}

// handleDiff returns offset(a) - offset(b), negative when a precedes b.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	a, err := dateutil.Parse(chi.URLParam(r, "a"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	b, err := dateutil.Parse(chi.URLParam(r, "b"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diffResponse{A: a.String(), B: b.String(), Days: dateutil.DaysBetween(a, b)})
}

func (s *Server) describe(d dateutil.Date) DateResponse {
	idx := d.WeekdayIndex()
	return DateResponse{
		Date:        d.String(),
		Offset:      d.Offset(),
		Weekday:     idx,
		WeekdayName: s.dayName(d, idx),
		UnixDays:    d.UnixDays(),
		ISO:         d.Time().Format("2006-01-02"),
	}
}

func (s *Server) dayName(d dateutil.Date, idx int) string {
	if s.days != nil {
		return s.days.DayName(idx)
	}
	return d.Weekday().String()
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Bad request",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	msg := err.Error()
	switch {
	case errors.Is(err, dateutil.ErrBadFormat):
		msg = dateutil.ErrBadFormat.Error()
	case errors.Is(err, dateutil.ErrBeforeEpoch):
		msg = dateutil.ErrBeforeEpoch.Error()
	case errors.Is(err, dateutil.ErrOutOfRange):
		msg = dateutil.ErrOutOfRange.Error()
	}
	writeError(w, http.StatusBadRequest, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
