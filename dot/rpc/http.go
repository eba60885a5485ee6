// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ChainSafe/gossamer/lib/common"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"

	"github.com/ChainSafe/grandpa-accountability/dot/rpc/modules"
	"github.com/ChainSafe/grandpa-accountability/dot/state"
	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "rpc"))

// DefaultModules are the RPC modules enabled by default
var DefaultModules = []string{"grandpa", "author", "dev"}

// HTTPServer gateway for RPC server
type HTTPServer struct {
	rpcServer    *rpc.Server
	serverConfig *HTTPServerConfig
	httpServer   *http.Server
	listener     net.Listener
	done         chan struct{}
}

// HTTPServerConfig configures the HTTPServer
type HTTPServerConfig struct {
	Storage          state.Storage
	ReportAPI        modules.ReportAPI
	BlockProducerAPI modules.BlockProducerAPI
	Host             string
	RPCPort          uint32
	Modules          []string
}

// NewHTTPServer creates a new http server and registers an associated rpc server
func NewHTTPServer(cfg *HTTPServerConfig) *HTTPServer {
	server := &HTTPServer{
		rpcServer:    rpc.NewServer(),
		serverConfig: cfg,
	}

	server.RegisterModules(cfg.Modules)
	return server
}

// RegisterModules registers the RPC services associated with the given API modules
func (h *HTTPServer) RegisterModules(mods []string) {
	for _, mod := range mods {
		logger.Debugf("enabling rpc module %s", mod)
		var srvc interface{}
		switch mod {
		case "grandpa":
			srvc = modules.NewGrandpaModule(h.serverConfig.Storage)
		case "author":
			srvc = modules.NewAuthorModule(h.serverConfig.ReportAPI)
		case "dev":
			srvc = modules.NewDevModule(h.serverConfig.BlockProducerAPI)
		default:
			logger.Warnf("unrecognised rpc module %s", mod)
			continue
		}

		err := h.rpcServer.RegisterService(srvc, mod)
		if err != nil {
			logger.Warnf("failed to register rpc module %s: %s", mod, err)
		}
	}
}

// Start registers the rpc handler function and starts the rpc http server
func (h *HTTPServer) Start() error {
	h.rpcServer.RegisterCodec(NewDotUpCodec(), "application/json")
	h.rpcServer.RegisterCodec(NewDotUpCodec(), "application/json;charset=UTF-8")

	validate := validator.New()
	validate.RegisterCustomTypeFunc(common.HashValidator, common.Hash{})
	h.rpcServer.RegisterValidateRequestFunc(func(_ *rpc.RequestInfo, v interface{}) error {
		return validate.Struct(v)
	})

	r := mux.NewRouter()
	r.Handle("/", h.rpcServer)

	address := fmt.Sprintf("%s:%d", h.serverConfig.Host, h.serverConfig.RPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", address, err)
	}
	h.listener = listener

	h.httpServer = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: time.Second,
	}
	h.done = make(chan struct{})

	logger.Infof("starting HTTP server on %s", listener.Addr())
	go func() {
		defer close(h.done)
		err := h.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server error: %s", err)
		}
	}()

	return nil
}

// Addr returns the address the server listens on.
func (h *HTTPServer) Addr() net.Addr {
	return h.listener.Addr()
}

// Stop stops the server
func (h *HTTPServer) Stop(ctx context.Context) error {
	if h.httpServer == nil {
		return nil
	}

	err := h.httpServer.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	<-h.done
	return nil
}
