package server

import "net/http"

func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()

	// API эндпоинты
	mux.HandleFunc("/start", s.StartRun)
	mux.HandleFunc("/stop", s.StopRun)
	mux.HandleFunc("/stream", s.Stream)
	mux.HandleFunc("/export", s.ExportCSV)
	mux.HandleFunc("/result", s.Result)
	mux.HandleFunc("/problems", s.Problems)
	mux.Handle("/metrics", s.metrics.Handler())

	return mux
}
