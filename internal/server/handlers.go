package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lumipallolabs/treemapview/internal/core"
	"github.com/lumipallolabs/treemapview/internal/export"
	"github.com/lumipallolabs/treemapview/internal/model"
)

// maxBody bounds request bodies; every request is a few numbers or a URL
const maxBody = 1 << 16

// maxViewSize bounds each side of the view. Rendering allocates four bytes
// per pixel.
const maxViewSize = 8192

type statusResponse struct {
	Phase        string `json:"phase"`
	FilesScanned int64  `json:"files_scanned"`
	BytesFound   int64  `json:"bytes_found"`
	Freed        int64  `json:"freed"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := s.controller.ScanState()
	resp := statusResponse{
		Phase:        state.Phase.String(),
		FilesScanned: state.FilesScanned,
		BytesFound:   state.BytesFound,
		Freed:        s.controller.Freed(),
	}
	s.controller.Read(func(v *core.View) {
		resp.Width, resp.Height = v.Size()
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTreemap(w http.ResponseWriter, r *http.Request) {
	var doc export.Document
	s.controller.Read(func(v *core.View) {
		doc = document(v)
	})
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	var err error
	suppressed := false
	s.controller.Read(func(v *core.View) {
		if v.Treemap() == nil {
			suppressed = true
			return
		}
		img := export.Render(v.Treemap(), v.Config(), v.SelectedTile())
		err = export.WritePNG(&buf, img)
	})
	if suppressed {
		jsonError(w, "treemap suppressed: view too small", http.StatusConflict)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	var err error
	suppressed := false
	s.controller.Read(func(v *core.View) {
		if v.Treemap() == nil {
			suppressed = true
			return
		}
		err = export.WriteSVG(&buf, v.Tree(), v.Treemap(), v.Config())
	})
	if suppressed {
		jsonError(w, "treemap suppressed: view too small", http.StatusConflict)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decode(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Width < 0 || req.Height < 0 {
		jsonError(w, "width and height must not be negative", http.StatusBadRequest)
		return
	}
	if req.Width > maxViewSize || req.Height > maxViewSize {
		jsonError(w, fmt.Sprintf("width and height must not exceed %d", maxViewSize), http.StatusBadRequest)
		return
	}

	var doc export.Document
	s.controller.Update(func(v *core.View) {
		v.Resize(req.Width, req.Height)
		doc = document(v)
	})
	writeJSON(w, http.StatusOK, doc)
}

// selectRequest picks a tile either by point or by URL
type selectRequest struct {
	X   *float64 `json:"x"`
	Y   *float64 `json:"y"`
	URL string   `json:"url"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	havePoint := req.X != nil && req.Y != nil
	if havePoint == (req.URL != "") {
		jsonError(w, "give either x and y or url", http.StatusBadRequest)
		return
	}

	var doc export.Document
	found := false
	s.controller.Update(func(v *core.View) {
		if havePoint {
			found = v.SelectAt(*req.X, *req.Y)
		} else if id := v.Tree().Locate(req.URL); id != model.NoNode {
			found = true
			v.SelectNode(id)
		}
		doc = document(v)
	})
	if !found {
		if havePoint {
			jsonError(w, fmt.Sprintf("no tile at %g,%g", *req.X, *req.Y), http.StatusNotFound)
		} else {
			jsonError(w, "no node at "+req.URL, http.StatusNotFound)
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// navigate wraps a view operation that takes no arguments. Operations that
// cannot apply leave the view unchanged.
func (s *Server) navigate(op func(*core.View)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc export.Document
		s.controller.Update(func(v *core.View) {
			op(v)
			doc = document(v)
		})
		writeJSON(w, http.StatusOK, doc)
	}
}

type removeRequest struct {
	URL string `json:"url"`
}

type removeResponse struct {
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	TotalFreed int64  `json:"total_freed"`
}

// handleRemove drops a node from the tree as if it had been deleted on
// disk. Nothing on disk is touched.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := decode(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	size, err := s.controller.DeleteURL(req.URL)
	switch {
	case errors.Is(err, core.ErrNoNode):
		jsonError(w, "no node at "+req.URL, http.StatusNotFound)
		return
	case err != nil:
		jsonError(w, "cannot remove "+req.URL+": "+err.Error(), http.StatusConflict)
		return
	}
	s.log.Info("removed", "url", req.URL, "size", export.FormatSize(size))
	writeJSON(w, http.StatusOK, removeResponse{URL: req.URL, Size: size, TotalFreed: s.controller.Freed()})
}

func document(v *core.View) export.Document {
	return export.NewDocument(v.Tree(), v.Treemap(), v.Root(), v.Selected())
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
