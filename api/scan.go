package api

import (
	"net/http"

	"github.com/seenimoa/stonks/internal/analysis/macro"
	"github.com/seenimoa/stonks/internal/market"
)

// WebSocket message types for the macro scan.
const (
	MsgScanProgress = "scan_progress"
	MsgScanComplete = "scan_complete"
	MsgScanFailed   = "scan_failed"
)

// handleMacroScan runs the deep scan synchronously. Progress is
// broadcast to WebSocket clients and the result is kept for an hour
// under its scan id.
func (s *Server) handleMacroScan(w http.ResponseWriter, r *http.Request) {
	var req macro.Request
	if err := decodeBody(w, r, &req, true); err != nil {
		s.writeErr(w, r, err)
		return
	}

	var scanID string
	res, err := s.dash.Scan(r.Context(), req, func(p macro.Progress) {
		scanID = p.ScanID
		s.hub.Broadcast(WSMessage{Type: MsgScanProgress, Data: p})
	})
	if err != nil {
		s.hub.Broadcast(WSMessage{Type: MsgScanFailed, Data: map[string]string{
			"scan_id": scanID,
			"error":   err.Error(),
		}})
		s.writeErr(w, r, err)
		return
	}

	s.scans.Set(res.ScanID, res)
	s.hub.Broadcast(WSMessage{Type: MsgScanComplete, Data: map[string]any{
		"scan_id":         res.ScanID,
		"assets_analyzed": res.AssetsAnalyzed,
		"failed":          len(res.Failed),
		"snapshot_file":   res.SnapshotFile,
	}})
	s.writeData(w, res)
}

// handleMacroScanResult returns a recent scan by id.
func (s *Server) handleMacroScanResult(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	v, ok := s.scans.Get(id)
	if !ok {
		s.writeErr(w, r, market.NotFound("scan '"+id+"' not found or expired", nil))
		return
	}
	s.writeData(w, v)
}
