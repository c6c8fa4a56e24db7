package main

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ledgerd/core"
)

// explorerService is the read surface the HTTP layer depends on, so
// tests can substitute a mock instead of a live coordinator.
type explorerService interface {
	LatestBlocks(count int) []blockSummary
	BlockByHeight(h uint64) (*core.Block, error)
	TxByHash(hash core.Hash) (*core.Transaction, error)
	Account(id core.AccountID) (core.Account, error)
	AccountAssetBalance(account core.AccountID, asset core.AssetID) (core.Amount, error)
	Info() map[string]any
}

// Server exposes ledger data over a small HTTP API.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	logger     logrus.FieldLogger
}

// NewServer constructs the router and HTTP server.
func NewServer(addr string, svc explorerService, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{router: mux.NewRouter(), logger: logger}
	s.routes(svc)
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	return s
}

func (s *Server) Start() error { return s.httpServer.ListenAndServe() }

func (s *Server) routes(svc explorerService) {
	s.router.Use(loggingMiddleware(s.logger))
	s.router.HandleFunc("/api/blocks", handleBlocks(svc)).Methods("GET")
	s.router.HandleFunc("/api/blocks/{height:[0-9]+}", handleBlock(svc)).Methods("GET")
	s.router.HandleFunc("/api/tx/{hash}", handleTx(svc)).Methods("GET")
	s.router.HandleFunc("/api/accounts/{domain}/{name}", handleAccount(svc)).Methods("GET")
	s.router.HandleFunc("/api/accounts/{domain}/{name}/assets/{assetDomain}/{assetName}", handleBalance(svc)).Methods("GET")
	s.router.HandleFunc("/api/info", handleInfo(svc)).Methods("GET")
}

func handleBlocks(svc explorerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := 10
		if raw := r.URL.Query().Get("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "invalid count", http.StatusBadRequest)
				return
			}
			if n <= 0 || n > 100 {
				http.Error(w, "count out of range", http.StatusBadRequest)
				return
			}
			count = n
		}
		writeJSON(w, svc.LatestBlocks(count))
	}
}

func handleBlock(svc explorerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := strconv.ParseUint(mux.Vars(r)["height"], 10, 64)
		if err != nil {
			http.Error(w, "invalid height", http.StatusBadRequest)
			return
		}
		blk, err := svc.BlockByHeight(h)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, blk)
	}
}

func handleTx(svc explorerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := mux.Vars(r)["hash"]
		decoded, err := hex.DecodeString(raw)
		if err != nil || len(decoded) != 32 {
			http.Error(w, "bad tx hash", http.StatusBadRequest)
			return
		}
		var hash core.Hash
		copy(hash[:], decoded)
		tx, err := svc.TxByHash(hash)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, tx)
	}
}

func handleAccount(svc explorerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id := core.NewAccountID(vars["name"], vars["domain"])
		acc, err := svc.Account(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, acc)
	}
}

func handleBalance(svc explorerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		account := core.NewAccountID(vars["name"], vars["domain"])
		asset := core.NewAssetID(vars["assetName"], vars["assetDomain"])
		bal, err := svc.AccountAssetBalance(account, asset)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"balance": bal.Value.String(), "precision": bal.Precision})
	}
}

func handleInfo(svc explorerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Info())
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}
