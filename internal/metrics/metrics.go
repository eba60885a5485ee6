// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ChainSafe/grandpa-accountability/internal/log"
)

// DefaultAddress is the default metrics listening address.
const DefaultAddress = "localhost:9876"

var logger = log.NewFromGlobal(log.AddContext("pkg", "metrics"))

// Server is a metrics http server
type Server struct {
	address  string
	server   *http.Server
	listener net.Listener
	done     chan error
}

// NewServer is a constructor for metrics server
func NewServer(address string) (s *Server) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	return &Server{
		address: address,
		server: &http.Server{
			Handler:           m,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: time.Second,
		},
	}
}

// Start will start a dedicated metrics server at the configured address.
func (s *Server) Start() (err error) {
	s.listener, err = net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}

	logger.Infof("Starting metrics server at http://%s/metrics", s.listener.Addr())

	s.done = make(chan error, 1)
	go func() {
		err := s.server.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return nil
}

// Addr returns the listening address of the started server.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop will stop the metrics server
func (s *Server) Stop(ctx context.Context) (err error) {
	if s.done == nil {
		return nil
	}

	err = s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}

	select {
	case err := <-s.done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("metrics server exit: %w", ctx.Err())
	}
}
