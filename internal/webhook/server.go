// Package webhook receives feedback replies from the message gateway.
package webhook

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/elementsenergies/flexrank/internal/contracts"
	"github.com/elementsenergies/flexrank/pkg/logger"
)

// shiftOptions maps the reply button texts onto shifted percentages.
var shiftOptions = map[string]int{
	"10%":             10,
	"25%":             25,
	"50%":             50,
	"Could not shift": 0,
}

// Server handles inbound feedback webhooks. The gateway retries on
// non-2xx responses, so every parseable request is acknowledged with
// 200 even when the reply cannot be attributed or classified.
type Server struct {
	feedback contracts.FeedbackRepository
	router   *mux.Router
	now      func() time.Time
	logger   *logger.Logger
}

// NewServer creates the webhook server and registers its routes.
func NewServer(feedback contracts.FeedbackRepository, log *logger.Logger) *Server {
	s := &Server{
		feedback: feedback,
		router:   mux.NewRouter(),
		now:      time.Now,
		logger:   log.WithField("module", "webhook"),
	}

	s.router.HandleFunc("/webhook/feedback", s.handleFeedback).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving webhooks until ctx is cancelled, then
// drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Webhook server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleFeedback records a client's reply. The gateway posts form data
// with From holding "whatsapp:+91..." and the reply in Body, or in
// ButtonText for quick-reply taps.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	phone := strings.TrimSpace(strings.TrimPrefix(r.PostFormValue("From"), "whatsapp:"))
	body := r.PostFormValue("Body")
	if body == "" {
		body = r.PostFormValue("ButtonText")
	}
	body = strings.TrimSpace(body)

	// Ack everything from here on; a retry would not improve anything
	defer func() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}()

	if phone == "" || body == "" {
		s.logger.Debug("Feedback without phone or body, ignored")
		return
	}

	scno, ok, err := s.feedback.SCNOByPhone(r.Context(), phone)
	if err != nil {
		s.logger.WithError(err).Error("Feedback phone lookup failed")
		return
	}
	if !ok {
		s.logger.WithField("phone", phone).Debug("Feedback from unknown number, ignored")
		return
	}

	shifted, recognized := shiftOptions[body]
	if !recognized {
		s.logger.WithFields(map[string]interface{}{
			"scno": scno,
			"body": body,
		}).Debug("Unrecognized feedback reply, ignored")
		return
	}

	now := s.now().UTC()
	response := contracts.FeedbackResponse{
		SCNO:           scno,
		Date:           time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		ShiftedPercent: shifted,
		RawBody:        body,
	}

	if err := s.feedback.Record(r.Context(), response); err != nil {
		s.logger.WithError(err).WithField("scno", scno).Error("Feedback record failed")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"scno":    scno,
		"shifted": shifted,
	}).Info("Feedback recorded")
}
