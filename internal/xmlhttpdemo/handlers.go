package xmlhttpdemo

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/clbanning/mxj/v2"

	"github.com/corvantis/xmlserde/xmldyn"
)

const maxBodyBytes = 10 << 20 // 10 MiB, generous for a demo endpoint

// handleDecode reads an XML request body and responds with its dynamic
// (JSON-shaped) decoded form.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body) > maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge)
		return
	}

	v, err := xmldyn.ParseBytes(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, v.Map())
}

// handleEncode reads a JSON request body and responds with its XML
// re-encoding, via mxj's own Xml() — the demo has no static Go type to
// hand xmlserde.EncodeTo, so it works at the same dynamic level as
// xmldyn itself.
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body) > maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge)
		return
	}

	m, err := mxj.NewMapJson(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	out, err := m.Xml()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}

// handleQuery reads an XML request body, runs the "q" query-string
// parameter as an xmldyn path against it, and responds with the JSON
// matches.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("q")
	if path == "" {
		writeError(w, http.StatusBadRequest, errMissingQueryParam)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := xmldyn.ParseBytes(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	res, err := xmldyn.QueryAll(v.Map(), path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
