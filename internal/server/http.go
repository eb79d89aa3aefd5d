package server

import (
	"embed"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/keyword_scope/internal/config"
	"github.com/iWorld-y/keyword_scope/internal/service"
	"github.com/iWorld-y/keyword_scope/pkg/analysis"
	"github.com/iWorld-y/keyword_scope/pkg/session"
)

//go:embed assets/*
var assets embed.FS

// NewHTTPServer 构建 HTTP 服务并注册全部路由
func NewHTTPServer(c *config.HTTPConfig, s *service.KeyscopeService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)
	registerRoutes(srv, s)

	// 首页直接返回内嵌的单页应用
	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}
		content, _ := assets.ReadFile("assets/index.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(content)
	})

	return srv
}

func registerRoutes(srv *http.Server, s *service.KeyscopeService) {
	srv.HandleFunc("/api/search", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req service.SearchReq
		if !readJSON(w, r, &req) {
			return
		}
		snap, err := s.Search(r.Context(), &req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, snap)
	})

	srv.HandleFunc("/api/filter", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req service.FilterReq
		if !readJSON(w, r, &req) {
			return
		}
		snap, _ := s.SetFilter(r.Context(), &req)
		writeJSON(w, nethttp.StatusOK, snap)
	})

	srv.HandleFunc("/api/keywords/toggle", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req service.ToggleReq
		if !readJSON(w, r, &req) {
			return
		}
		snap, _ := s.ToggleKeyword(r.Context(), &req)
		writeJSON(w, nethttp.StatusOK, snap)
	})

	srv.HandleFunc("/api/state", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		snap, _ := s.State(r.Context())
		writeJSON(w, nethttp.StatusOK, snap)
	})

	srv.HandleFunc("/api/settings", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			reply, _ := s.GetSettings(r.Context())
			writeJSON(w, nethttp.StatusOK, reply)
		case nethttp.MethodPut:
			var req service.UpdateSettingsReq
			if !readJSON(w, r, &req) {
				return
			}
			reply, _ := s.UpdateSettings(r.Context(), &req)
			writeJSON(w, nethttp.StatusOK, reply)
		default:
			methodNotAllowed(w)
		}
	})

	srv.HandleFunc("/api/history", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		reply, _ := s.History(r.Context())
		writeJSON(w, nethttp.StatusOK, reply)
	})

	srv.HandleFunc("/api/suggestions", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		reply, _ := s.Suggestions(r.Context())
		writeJSON(w, nethttp.StatusOK, reply)
	})
}

func readJSON(w nethttp.ResponseWriter, r *nethttp.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, &service.StatusReply{
			Success: false,
			Message: "invalid request body",
		})
		return false
	}
	return true
}

func writeJSON(w nethttp.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError 把请求层错误映射为 HTTP 状态码
func writeError(w nethttp.ResponseWriter, err error) {
	code := nethttp.StatusInternalServerError
	kind := ""
	switch {
	case errors.Is(err, session.ErrAnalysisInFlight):
		code = nethttp.StatusConflict
	case errors.Is(err, analysis.ErrInvalidInput):
		code = nethttp.StatusBadRequest
		kind = analysis.KindInvalidInput
	}
	writeJSON(w, code, &service.StatusReply{
		Success:   false,
		ErrorKind: kind,
		Message:   err.Error(),
	})
}

func methodNotAllowed(w nethttp.ResponseWriter) {
	writeJSON(w, nethttp.StatusMethodNotAllowed, &service.StatusReply{
		Success: false,
		Message: "method not allowed",
	})
}
