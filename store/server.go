package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/db"
	"arma3-server-manager/logger"
)

// ServerAPI is the slice of the backend client used by Server.
type ServerAPI interface {
	ListServers(ctx context.Context) ([]arma.ServerConfig, error)
	GetServer(ctx context.Context, id int64, includeSensitive bool) (*arma.ServerConfig, error)
	ActivateServer(ctx context.Context, id int64) error
	SetServerCollection(ctx context.Context, id int64, collectionID *int64) error
	PerformServerAction(ctx context.Context, action arma.ServerAction) (*arma.ActionResponse, error)
}

// Server wraps server control. Actions are not optimistic: the backend
// reports the resulting state.
type Server struct {
	api  ServerAPI
	conn *gorm.DB
	log  *zap.SugaredLogger
}

func NewServer(api ServerAPI, conn *gorm.DB) *Server {
	return &Server{api: api, conn: conn, log: logger.Named("server")}
}

func (s *Server) Servers(ctx context.Context) ([]arma.ServerConfig, error) {
	return s.api.ListServers(ctx)
}

// Status returns the active server's configuration.
func (s *Server) Status(ctx context.Context) (*arma.ServerConfig, error) {
	servers, err := s.api.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	srv := activeServer(servers)
	if srv == nil {
		return nil, ErrNoActiveServer
	}
	return srv, nil
}

// Details returns one server, including passwords when includeSensitive is set.
func (s *Server) Details(ctx context.Context, id int64, includeSensitive bool) (*arma.ServerConfig, error) {
	return s.api.GetServer(ctx, id, includeSensitive)
}

func (s *Server) Start(ctx context.Context) (*arma.ActionResponse, error) {
	return s.perform(ctx, arma.ActionStart)
}

func (s *Server) Stop(ctx context.Context) (*arma.ActionResponse, error) {
	return s.perform(ctx, arma.ActionStop)
}

func (s *Server) Restart(ctx context.Context) (*arma.ActionResponse, error) {
	return s.perform(ctx, arma.ActionRestart)
}

func (s *Server) perform(ctx context.Context, action arma.ServerAction) (*arma.ActionResponse, error) {
	res, err := s.api.PerformServerAction(ctx, action)
	s.record(string(action), "active", err)
	if err != nil {
		return nil, err
	}
	s.log.Infow("Server action completed", "action", action, "message", res.Message)
	return res, nil
}

func (s *Server) Activate(ctx context.Context, id int64) error {
	err := s.api.ActivateServer(ctx, id)
	s.record("activate", idKey(id), err)
	return err
}

// SetActiveCollection points the active server at collectionID; nil clears it.
func (s *Server) SetActiveCollection(ctx context.Context, collectionID *int64) error {
	srv, err := s.Status(ctx)
	if err != nil {
		return err
	}
	err = s.api.SetServerCollection(ctx, srv.ID, collectionID)
	s.record("set_collection", idKey(srv.ID), err)
	if err != nil {
		return fmt.Errorf("server %q: %w", srv.Name, err)
	}
	return nil
}

func (s *Server) record(op, key string, opErr error) {
	if opErr != nil {
		s.log.Errorw("Server operation failed", "op", op, "key", key, zap.Error(opErr))
	}
	if err := db.RecordSync(s.conn, "server", op, key, opErr); err != nil {
		s.log.Warnw("Failed to write sync journal", zap.Error(err))
	}
}
