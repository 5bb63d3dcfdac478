package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler, wsHandler http.Handler) {
	mux.HandleFunc("GET /v1/snapshots/{key}", handler.GetSnapshot)
	mux.HandleFunc("GET /v1/table", handler.GetLeagueTable)
	mux.HandleFunc("GET /v1/schedule", handler.GetSchedule)
	mux.HandleFunc("GET /v1/stats/players/{id}", handler.GetPlayerStats)
	mux.HandleFunc("GET /v1/wallets/{userID}", handler.GetWallet)
	if wsHandler != nil {
		mux.Handle("GET /ws", wsHandler)
	}
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	mux.Handle("POST /v1/admin/matches/finalize", RequireAdminToken(adminToken, http.HandlerFunc(handler.FinalizeMatch)))
	mux.Handle("POST /v1/admin/bets/settle", RequireAdminToken(adminToken, http.HandlerFunc(handler.SettleBets)))
	mux.Handle("POST /v1/admin/backlog/finalize", RequireAdminToken(adminToken, http.HandlerFunc(handler.FinalizeBacklog)))
}
