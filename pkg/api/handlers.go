package api

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/platformkit/knobstore/pkg/knob"
	"github.com/platformkit/knobstore/pkg/varstore"
)

// maxSnapshotBytes caps the request body accepted on snapshot import.
const maxSnapshotBytes = 64 << 20

// Server holds the API server state
type Server struct {
	store    varstore.Store
	resolver *knob.Resolver
	config   ServerConfig
	metrics  *Metrics
}

// NewServer creates a new API server
func NewServer(store varstore.Store, resolver *knob.Resolver, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:    store,
		resolver: resolver,
		config:   config,
		metrics:  metrics,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleStats godoc
//
//	@Summary		Get store statistics
//	@Description	Get statistics about the variable store including variable count and data size
//	@Tags			diagnostics
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	varstore.StoreStats
//	@Failure		500	{object}	map[string]string
//	@Router			/stats [get]
//	@Security		ApiKeyAuth
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	// Update metrics with current stats
	s.metrics.UpdateStoreStats(stats.Variables, stats.DataSize)
	sendSuccess(w, stats)
}

// handleListVars godoc
//
//	@Summary		List variables
//	@Description	List all variables, optionally filtered by namespace GUID
//	@Tags			vars
//	@Accept			json
//	@Produce		json
//	@Param			namespace	query		string	false	"Namespace GUID filter"
//	@Success		200	{object}	map[string]interface{}
//	@Failure		400	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/vars [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListVars(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var filter *uuid.UUID
	if raw := r.URL.Query().Get("namespace"); raw != "" {
		namespace, err := uuid.Parse(raw)
		if err != nil {
			sendError(w, "Invalid namespace GUID", http.StatusBadRequest)
			return
		}
		filter = &namespace
	}

	keys, err := s.store.List()
	if err != nil {
		s.metrics.RecordStoreOperation("list", false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to list variables: %v", err), http.StatusInternalServerError)
		return
	}

	vars := make([]VarResponse, 0, len(keys))
	for _, key := range keys {
		if filter != nil && key.Namespace != *filter {
			continue
		}
		record, err := s.store.Get(key.Namespace, key.Name)
		if err != nil {
			continue // deleted between List and Get
		}
		vars = append(vars, VarResponse{
			Namespace:  key.Namespace.String(),
			Name:       key.Name,
			Attributes: record.Attributes,
			Size:       len(record.Data),
		})
	}

	s.metrics.RecordStoreOperation("list", true, time.Since(start))
	sendSuccess(w, map[string]interface{}{"variables": vars})
}

// handleGetVar godoc
//
//	@Summary		Get a variable
//	@Description	Retrieve a variable by namespace GUID and name
//	@Tags			vars
//	@Accept			json
//	@Produce		json
//	@Param			namespace	path		string	true	"Namespace GUID"
//	@Param			name		path		string	true	"Variable name"
//	@Success		200	{object}	VarResponse
//	@Failure		400	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/vars/{namespace}/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetVar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	namespace, name, ok := s.varParams(w, r)
	if !ok {
		return
	}

	record, err := s.store.Get(namespace, name)
	if err != nil {
		s.metrics.RecordStoreOperation("get", false, time.Since(start))
		if errors.Is(err, varstore.ErrNotFound) {
			sendError(w, "Variable not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to get variable: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordStoreOperation("get", true, time.Since(start))
	sendSuccess(w, VarResponse{
		Namespace:  namespace.String(),
		Name:       name,
		Attributes: record.Attributes,
		Size:       len(record.Data),
		Data:       base64.StdEncoding.EncodeToString(record.Data),
	})
}

// handlePutVar godoc
//
//	@Summary		Set a variable
//	@Description	Create or replace a variable; the value is base64-encoded in the JSON body
//	@Tags			vars
//	@Accept			json
//	@Produce		json
//	@Param			namespace	path		string		true	"Namespace GUID"
//	@Param			name		path		string		true	"Variable name"
//	@Param			request		body		VarRequest	true	"Variable attributes and data"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/vars/{namespace}/{name} [put]
//	@Security		ApiKeyAuth
func (s *Server) handlePutVar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	namespace, name, ok := s.varParams(w, r)
	if !ok {
		return
	}

	var req VarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordStoreOperation("set", false, time.Since(start))
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		s.metrics.RecordStoreOperation("set", false, time.Since(start))
		sendError(w, "data must be base64-encoded", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		s.metrics.RecordStoreOperation("set", false, time.Since(start))
		sendError(w, "data must not be empty", http.StatusBadRequest)
		return
	}

	if err := s.store.Set(namespace, name, req.Attributes, data); err != nil {
		s.metrics.RecordStoreOperation("set", false, time.Since(start))
		if errors.Is(err, varstore.ErrInvalidKey) {
			sendError(w, fmt.Sprintf("Invalid variable: %v", err), http.StatusBadRequest)
		} else {
			sendError(w, fmt.Sprintf("Failed to set variable: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordStoreOperation("set", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": "Variable stored successfully"})
}

// handleDeleteVar godoc
//
//	@Summary		Delete a variable
//	@Description	Delete a variable by namespace GUID and name
//	@Tags			vars
//	@Accept			json
//	@Produce		json
//	@Param			namespace	path		string	true	"Namespace GUID"
//	@Param			name		path		string	true	"Variable name"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	map[string]string
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/vars/{namespace}/{name} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteVar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	namespace, name, ok := s.varParams(w, r)
	if !ok {
		return
	}

	if err := s.store.Delete(namespace, name); err != nil {
		s.metrics.RecordStoreOperation("delete", false, time.Since(start))
		if errors.Is(err, varstore.ErrNotFound) {
			sendError(w, "Variable not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to delete variable: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordStoreOperation("delete", true, time.Since(start))
	sendSuccess(w, map[string]string{"message": "Variable deleted successfully"})
}

// handleExportSnapshot godoc
//
//	@Summary		Export a snapshot
//	@Description	Export every live variable as a binary variable list
//	@Tags			snapshot
//	@Produce		octet-stream
//	@Success		200	{string}	byte
//	@Failure		500	{object}	map[string]string
//	@Router			/snapshot [get]
//	@Security		ApiKeyAuth
func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	buf, err := varstore.Snapshot(s.store)
	if err != nil {
		s.metrics.RecordSnapshotOperation("export", false)
		sendError(w, fmt.Sprintf("Failed to export snapshot: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordSnapshotOperation("export", true)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Snapshot-ID", ksuid.New().String())
	_, _ = w.Write(buf)
}

// handleImportSnapshot godoc
//
//	@Summary		Import a snapshot
//	@Description	Apply a binary variable list to the store; a corrupt list changes nothing
//	@Tags			snapshot
//	@Accept			octet-stream
//	@Produce		json
//	@Param			body	body		[]byte	true	"Variable list"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/snapshot [post]
//	@Security		ApiKeyAuth
func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		s.metrics.RecordSnapshotOperation("import", false)
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := varstore.Apply(s.store, buf); err != nil {
		s.metrics.RecordSnapshotOperation("import", false)
		if errors.Is(err, varstore.ErrCorruption) {
			sendError(w, fmt.Sprintf("Snapshot rejected: %v", err), http.StatusBadRequest)
		} else {
			sendError(w, fmt.Sprintf("Failed to import snapshot: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordSnapshotOperation("import", true)
	sendSuccess(w, map[string]string{"message": "Snapshot applied successfully"})
}

// handleListKnobs godoc
//
//	@Summary		List knobs
//	@Description	Resolve and list every knob with its value source
//	@Tags			knobs
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/knobs [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListKnobs(w http.ResponseWriter, r *http.Request) {
	if s.resolver == nil {
		sendError(w, "No knobfile configured", http.StatusNotFound)
		return
	}

	table := s.resolver.Table()
	knobs := make([]KnobResponse, 0, table.Len())
	for id := knob.ID(0); int(id) < table.Len(); id++ {
		resp, err := s.knobResponse(id)
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to resolve knob: %v", err), http.StatusInternalServerError)
			return
		}
		knobs = append(knobs, resp)
	}

	sendSuccess(w, map[string]interface{}{"knobs": knobs})
}

// handleGetKnob godoc
//
//	@Summary		Get a knob
//	@Description	Resolve a single knob by name
//	@Tags			knobs
//	@Produce		json
//	@Param			name	path		string	true	"Knob name"
//	@Success		200	{object}	KnobResponse
//	@Failure		404	{object}	map[string]string
//	@Failure		500	{object}	map[string]string
//	@Router			/knobs/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetKnob(w http.ResponseWriter, r *http.Request) {
	if s.resolver == nil {
		sendError(w, "No knobfile configured", http.StatusNotFound)
		return
	}

	name := chi.URLParam(r, "name")
	id, ok := s.resolver.Table().ID(name)
	if !ok {
		sendError(w, "Knob not found", http.StatusNotFound)
		return
	}

	resp, err := s.knobResponse(id)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to resolve knob: %v", err), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, resp)
}

// knobResponse resolves one knob and shapes the response.
func (s *Server) knobResponse(id knob.ID) (KnobResponse, error) {
	value, err := s.resolver.Bytes(id)
	if err != nil {
		return KnobResponse{}, err
	}
	descriptor, err := s.resolver.Table().Descriptor(id)
	if err != nil {
		return KnobResponse{}, err
	}
	source, err := s.resolver.Source(id)
	if err != nil {
		return KnobResponse{}, err
	}

	s.metrics.RecordKnobResolution(source.String())
	return KnobResponse{
		Name:      descriptor.Name,
		Namespace: descriptor.Namespace.String(),
		Size:      descriptor.Size,
		Source:    source.String(),
		Value:     hex.EncodeToString(value),
	}, nil
}

// varParams parses the namespace and name path parameters, answering the
// request itself on failure.
func (s *Server) varParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	namespace, err := uuid.Parse(chi.URLParam(r, "namespace"))
	if err != nil {
		sendError(w, "Invalid namespace GUID", http.StatusBadRequest)
		return uuid.Nil, "", false
	}
	name := chi.URLParam(r, "name")
	if name == "" {
		sendError(w, "Variable name is required", http.StatusBadRequest)
		return uuid.Nil, "", false
	}
	return namespace, name, true
}

// startMetricsUpdater periodically updates store metrics
func (s *Server) startMetricsUpdater() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := s.store.Stats()
		s.metrics.UpdateStoreStats(stats.Variables, stats.DataSize)
	}
}
