package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/leagues/{shortcut}/seasons/{season}/matches", handler.ListMatchesBySeason)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/pools", RequireAuth(verifier, http.HandlerFunc(handler.CreatePool)))
	mux.Handle("POST /v1/pools/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinPool)))
	mux.Handle("GET /v1/pools", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPools)))
	mux.Handle("GET /v1/pools/{poolID}", RequireAuth(verifier, http.HandlerFunc(handler.GetPool)))
	mux.Handle("GET /v1/pools/{poolID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.ListStandings)))
	mux.Handle("GET /v1/pools/{poolID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))
	mux.Handle("PUT /v1/pools/{poolID}/predictions/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.SavePrediction)))
	mux.Handle("PUT /v1/pools/{poolID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.SaveSessionPredictions)))
	mux.Handle("POST /v1/pools/{poolID}/session", RequireAuth(verifier, http.HandlerFunc(handler.OpenSession)))
	mux.Handle("GET /v1/pools/{poolID}/session", RequireAuth(verifier, http.HandlerFunc(handler.GetSession)))
	mux.Handle("DELETE /v1/pools/{poolID}/session", RequireAuth(verifier, http.HandlerFunc(handler.CloseSession)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/rescore", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRescoreJob)))
	mux.Handle("POST /v1/internal/jobs/schedule-rescores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScheduleRescoresJob)))
}
