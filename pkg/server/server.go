package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bastiangx/prefixd/internal/logger"
	"github.com/bastiangx/prefixd/internal/utils"
	"github.com/bastiangx/prefixd/pkg/config"
	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	codeBadRequest = 400
	codeInternal   = 500
)

// Server handles the IPC for prefix completions
type Server struct {
	suggester suggest.Suggester
	config    config.ServerConfig
	rules     utils.PrefixRules
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
	log       *log.Logger
	requests  int
}

// NewServer creates a server reading requests from r and writing responses
// to w, usually stdin and stdout.
func NewServer(s suggest.Suggester, cfg config.ServerConfig, r io.Reader, w io.Writer) *Server {
	return &Server{
		suggester: s,
		config:    cfg,
		rules:     cfg.PrefixRules(),
		dec:       msgpack.NewDecoder(r),
		enc:       msgpack.NewEncoder(w),
		log:       logger.New("ipc"),
	}
}

// Start signals readiness and serves requests until the input ends.
// A clean EOF returns nil. A malformed message is answered with an error and
// ends the session, since the stream can no longer be framed.
func (s *Server) Start() error {
	s.log.Debug("Starting Server.")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("Client disconnected", "requests", s.requests)
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid msgpack request", codeBadRequest)
			return err
		}
		s.requests++
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches on the command. Only write failures are returned.
func (s *Server) handleRequest(req Request) error {
	switch req.Cmd {
	case "", "suggest":
		return s.handleSuggest(req)
	case "health":
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case "cache_info":
		return s.send(CacheResponse{
			ID:       req.ID,
			HasCache: s.suggester.HasCache(),
			Size:     s.suggester.CacheSize(),
			Entries:  s.suggester.CacheSnapshot(),
		})
	case "cache_clear":
		s.suggester.ClearCache()
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown command: %s", req.Cmd), codeBadRequest)
	}
}

func (s *Server) handleSuggest(req Request) error {
	if req.Prefix == nil {
		s.log.Debug("Prefix is missing in request", "id", req.ID)
		return s.sendError(req.ID, "missing 'p' parameter", codeBadRequest)
	}
	prefix := *req.Prefix
	if err := s.rules.Check(prefix); err != nil {
		return s.sendError(req.ID, err.Error(), codeBadRequest)
	}

	start := time.Now()
	words, err := s.suggester.FindSuggestions(prefix, s.config.Limit(req.Limit), !req.Unsorted)
	elapsed := time.Since(start)
	if err != nil {
		code := codeInternal
		if errors.Is(err, suggest.ErrInvalidInput) {
			code = codeBadRequest
		}
		return s.sendError(req.ID, err.Error(), code)
	}

	ranks := utils.RankList(len(words))
	suggestions := make([]CompletionSuggestion, len(words))
	for i, w := range words {
		suggestions[i] = CompletionSuggestion{Word: w, Rank: ranks[i]}
	}

	s.log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)
	return s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(CompletionError{ID: id, Error: message, Code: code})
}
