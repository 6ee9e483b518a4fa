package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/and161185/fill-monitor/internal/errs"
	"github.com/and161185/fill-monitor/model"
)

// IngestHandler accepts distance=<float>&fill=<int> and stores the reading.
func (srv *Server) IngestHandler(w http.ResponseWriter, r *http.Request) {
	reading, err := parseReading(r)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrMissingField):
			srv.metrics.ReadingRejected("missing")
			writeText(w, http.StatusBadRequest, "Missing distance/fill")
		default:
			srv.metrics.ReadingRejected("invalid")
			writeText(w, http.StatusBadRequest, "Invalid distance/fill")
		}
		srv.logger.Debugf("rejected reading: %v", err)
		return
	}

	reading.Timestamp = srv.now()

	if err := srv.log.Append(reading); err != nil {
		srv.logger.Errorf("failed to append reading to log: %v", err)
		writeText(w, http.StatusInternalServerError, "internal error")
		return
	}
	srv.slot.Set(reading)
	srv.metrics.ReadingAccepted(reading.Distance, reading.Fill)

	if srv.journal != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), journalTimeout)
		if err := srv.journal.Insert(ctx, reading); err != nil {
			srv.metrics.JournalError()
			srv.logger.Warnf("journal insert failed: %v", err)
		}
		cancel()
	}

	writeText(w, http.StatusOK, "OK")
}

func parseReading(r *http.Request) (model.Reading, error) {
	if err := r.ParseForm(); err != nil {
		return model.Reading{}, fmt.Errorf("%w: %v", errs.ErrInvalidField, err)
	}

	form := r.PostForm
	if !form.Has("distance") || !form.Has("fill") {
		return model.Reading{}, errs.ErrMissingField
	}

	distance, err := strconv.ParseFloat(form.Get("distance"), 64)
	if err != nil || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return model.Reading{}, fmt.Errorf("%w: distance %q", errs.ErrInvalidField, form.Get("distance"))
	}

	fill, err := strconv.Atoi(form.Get("fill"))
	if err != nil {
		return model.Reading{}, fmt.Errorf("%w: fill %q", errs.ErrInvalidField, form.Get("fill"))
	}

	return model.Reading{Distance: distance, Fill: fill}, nil
}

// StatusHandler renders the latest reading as an auto-refreshing HTML page.
func (srv *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	reading, ok := srv.slot.Get()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := renderStatus(w, newStatusView(reading, ok, srv.config)); err != nil {
		srv.logger.Errorf("failed to render status page: %v", err)
	}
}

func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "pong")
}

// LatestHandler returns the latest reading as JSON, 404 when there is none.
func (srv *Server) LatestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	reading, err := srv.latest()
	if errors.Is(err, errs.ErrNoReading) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data"})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (srv *Server) latest() (model.Reading, error) {
	reading, ok := srv.slot.Get()
	if !ok {
		return model.Reading{}, errs.ErrNoReading
	}
	return reading, nil
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
