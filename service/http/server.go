package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"

	"calc/engine"
	"calc/engine/ast"
	"calc/engine/lexer"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// stage reported for requests that never reach the engine
const stageRequest = "request"

type exprRequest struct {
	Expr string `json:"expr"`
}

type evalResponse struct {
	Value int32           `json:"value"`
	Ast   json.RawMessage `json:"ast,omitempty"`
}

type lexResponse struct {
	Tokens []string `json:"tokens"`
}

type parseResponse struct {
	Printed string          `json:"printed"`
	Ast     json.RawMessage `json:"ast"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}

type server struct {
	calc    engine.Calculator
	logger  *zap.Logger
	maxBody int64
}

func (s server) setHandlers(router *mux.Router) {
	router.HandleFunc("/eval", s.Eval).Methods(http.MethodPost)
	router.HandleFunc("/lex", s.Lex).Methods(http.MethodPost)
	router.HandleFunc("/parse", s.Parse).Methods(http.MethodPost)
	router.HandleFunc("/health", s.Health).Methods(http.MethodGet)
}

func (s server) readRequest(w http.ResponseWriter, req *http.Request) (exprRequest, error) {
	defer req.Body.Close()
	var r exprRequest
	reader := req.Body
	if s.maxBody > 0 {
		reader = http.MaxBytesReader(w, req.Body, s.maxBody)
	}
	body, err := ioutil.ReadAll(reader)
	if err != nil {
		return r, fmt.Errorf("could not read request: %w", err)
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return r, fmt.Errorf("invalid request: %v", err)
	}
	return r, nil
}

func (s server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	ser, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal response", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(ser)
}

func (s server) writeError(w http.ResponseWriter, err error, stage string) {
	s.logger.Info("request failed", zap.String("stage", stage), zap.Error(err))
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Stage: stage})
}

func (s server) Eval(w http.ResponseWriter, req *http.Request) {
	r, err := s.readRequest(w, req)
	if err != nil {
		s.writeError(w, err, stageRequest)
		return
	}
	res, err := s.calc.Exec(req.Context(), r.Expr)
	if err != nil {
		s.writeError(w, err, engine.Stage(err))
		return
	}
	resp := evalResponse{Value: res.Value}
	if withAst, _ := strconv.ParseBool(req.URL.Query().Get("ast")); withAst {
		if resp.Ast, err = ast.Marshal(res.Ast); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s server) Lex(w http.ResponseWriter, req *http.Request) {
	r, err := s.readRequest(w, req)
	if err != nil {
		s.writeError(w, err, stageRequest)
		return
	}
	tokens, err := s.calc.Lex(req.Context(), r.Expr)
	if err != nil {
		s.writeError(w, err, engine.Stage(err))
		return
	}
	s.writeJSON(w, http.StatusOK, lexResponse{
		Tokens: lo.Map(tokens, func(t lexer.Token, _ int) string { return t.String() }),
	})
}

func (s server) Parse(w http.ResponseWriter, req *http.Request) {
	r, err := s.readRequest(w, req)
	if err != nil {
		s.writeError(w, err, stageRequest)
		return
	}
	node, err := s.calc.Parse(req.Context(), r.Expr)
	if err != nil {
		s.writeError(w, err, engine.Stage(err))
		return
	}
	ser, err := ast.Marshal(node)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, parseResponse{Printed: ast.Print(node), Ast: ser})
}

func (s server) Health(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
