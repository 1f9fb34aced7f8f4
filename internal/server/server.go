// Package server exposes the RMA workflow over HTTP for the intake
// form: ticket preview, folder search and the submission itself.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/folders"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/models"
	"github.com/pressureprofile/rma-starter/internal/notes"
	"github.com/pressureprofile/rma-starter/internal/saga"
	"github.com/pressureprofile/rma-starter/internal/sheets"
)

// Server handles the intake form's HTTP requests.
type Server struct {
	config      *config.Config
	coordinator *saga.Coordinator
	finder      *folders.Finder
}

// NewServer wires a server to the real backing services.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		config:      cfg,
		coordinator: saga.NewCoordinator(cfg),
		finder:      folders.NewFinder(cfg),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rma", s.handleSubmit)
	mux.HandleFunc("/rma/ticket", s.handleTicket)
	mux.HandleFunc("/rma/folders", s.handleFolders)
	mux.HandleFunc("/rma/folderinfo", s.handleFolderInfo)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.coordinator.Start()
	defer s.coordinator.Stop()

	addr := fmt.Sprintf("%s:%d", s.config.ServerHost, s.config.ServerPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		// Submissions wait on remote duplication jobs.
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("Starting RMA server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logging.Infof("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// handleSubmit runs the whole workflow for one form submission.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ReturnJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var form models.RMAForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		ReturnJSONError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	logging.Infof("RMA starting for %s", form.Customer)
	result, err := s.coordinator.Run(r.Context(), form)
	if err != nil {
		switch {
		case errors.Is(err, notes.ErrTicketIDUnparseable):
			ReturnJSONError(w, http.StatusBadRequest, "tech support link is not a task URL or id")
		case errors.Is(err, sheets.ErrMissingColumns):
			ReturnJSONError(w, http.StatusBadGateway, err.Error())
		default:
			logging.Errorf("RMA run failed: %v", err)
			ReturnJSONError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, result)
}

// handleTicket previews the parsed summary of a support ticket. The
// form calls this when its ticket field changes.
func (s *Server) handleTicket(w http.ResponseWriter, r *http.Request) {
	linkOrID := r.URL.Query().Get("link")
	if linkOrID == "" {
		ReturnJSONError(w, http.StatusBadRequest, "missing link parameter")
		return
	}

	ticketID, summary, err := s.coordinator.TicketSummary(r.Context(), linkOrID)
	if err != nil {
		if errors.Is(err, notes.ErrTicketIDUnparseable) {
			ReturnJSONError(w, http.StatusBadRequest, "link is not a task URL or id")
			return
		}
		ReturnJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, map[string]interface{}{
		"ticketId": ticketID,
		"summary":  summary,
	})
}

// handleFolders searches the shipped projects archive, by company and
// distributor or by serial number.
func (s *Server) handleFolders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stripPrefix, _ := strconv.ParseBool(query.Get("strip"))

	var matches []string
	var err error
	if serial := query.Get("serial"); serial != "" {
		matches, err = s.finder.FromSerialNumber(r.Context(), serial)
	} else if company := query.Get("company"); company != "" {
		matches, err = s.finder.FindShippedProjects(r.Context(), company, query.Get("distributor"), stripPrefix)
	} else {
		ReturnJSONError(w, http.StatusBadRequest, "company or serial parameter required")
		return
	}

	if err != nil {
		if errors.Is(err, folders.ErrNotFound) {
			ReturnJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		ReturnJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, map[string]interface{}{"folders": matches})
}

// handleFolderInfo returns the derived view of one project folder.
func (s *Server) handleFolderInfo(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		ReturnJSONError(w, http.StatusBadRequest, "missing folder parameter")
		return
	}

	info, err := s.finder.FolderInfo(r.Context(), folder)
	if err != nil {
		ReturnJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

// ReturnJSONError writes a JSON error response with the given status code and message
func ReturnJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    statusCode,
			"message": message,
		},
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		// If JSON encoding fails, fall back to plain text
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(fmt.Sprintf("Error: %s", message)))
	}
}
