package main

// handlers.go implements the reduced flat query surface spec.md §1 calls
// out as the replacement for the legacy FlatBuffers front_repository:
// get_account, get_account_asset and get_account_transactions, plus the
// descending cursor-paged walk of spec.md §4.4, as plain HTTP/JSON.

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"ledgerd/core"
)

func newRouter(coord *core.Coordinator, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/accounts/{domain}/{name}", func(r chi.Router) {
		r.Get("/", getAccount(coord))
		r.Get("/transactions", getAccountTransactions(coord))
		r.Get("/assets/{assetDomain}/{assetName}", getAccountAsset(coord))
		r.Get("/assets/{assetDomain}/{assetName}/transactions", getAccountAssetTransactions(coord))
		r.Get("/transactions/paged", getAccountTransactionsPaged(coord))
	})
	return r
}

func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Info("query")
			next.ServeHTTP(w, r)
		})
	}
}

func accountID(r *http.Request) core.AccountID {
	return core.NewAccountID(chi.URLParam(r, "name"), chi.URLParam(r, "domain"))
}

func getAccount(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := coord.WSVQuery().GetAccount(accountID(r))
		if !ok {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		writeJSON(w, acc)
	}
}

func getAccountAsset(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset := core.NewAssetID(chi.URLParam(r, "assetName"), chi.URLParam(r, "assetDomain"))
		bal, ok := coord.WSVQuery().GetAccountAsset(accountID(r), asset)
		if !ok {
			http.Error(w, "no balance for that (account, asset) pair", http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"value": bal.Value.String(), "precision": bal.Precision})
	}
}

func getAccountTransactions(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs := coord.QueryIndexHandle().GetAccountTransactions(coord.BlockQuery(), accountID(r))
		writeJSON(w, txs)
	}
}

func getAccountAssetTransactions(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asset := core.NewAssetID(chi.URLParam(r, "assetName"), chi.URLParam(r, "assetDomain"))
		txs := coord.QueryIndexHandle().GetAccountAssetTransactions(coord.BlockQuery(), accountID(r), asset)
		writeJSON(w, txs)
	}
}

// getAccountTransactionsPaged implements get_account_assets_transactions_with_pager.
// Assets are given as repeated ?asset=<domain>/<name> query parameters;
// ?cursor=<hex tx hash> defaults to the zero hash (start from newest);
// ?limit=<n> is required and must be a non-negative integer (0 yields an
// empty list).
func getAccountTransactionsPaged(coord *core.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var assets []core.AssetID
		for _, raw := range r.URL.Query()["asset"] {
			domain, name, ok := strings.Cut(raw, "/")
			if !ok {
				http.Error(w, "asset must be <domain>/<name>", http.StatusBadRequest)
				return
			}
			assets = append(assets, core.NewAssetID(name, domain))
		}
		if len(assets) == 0 {
			http.Error(w, "at least one ?asset=<domain>/<name> is required", http.StatusBadRequest)
			return
		}

		limitRaw := r.URL.Query().Get("limit")
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}

		var cursor core.Hash
		if raw := r.URL.Query().Get("cursor"); raw != "" {
			decoded, err := hex.DecodeString(raw)
			if err != nil || len(decoded) != len(cursor) {
				http.Error(w, "cursor must be a 32 byte hex hash", http.StatusBadRequest)
				return
			}
			copy(cursor[:], decoded)
		}

		txs := coord.QueryIndexHandle().GetAccountAssetsTransactionsWithPager(coord.BlockQuery(), accountID(r), assets, cursor, limit)
		writeJSON(w, txs)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
