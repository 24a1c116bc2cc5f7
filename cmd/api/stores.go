package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/coursereg/coursereg-go/internal/config"
	"github.com/coursereg/coursereg-go/internal/repository"
	"github.com/coursereg/coursereg-go/internal/session"
)

const sessionSweepInterval = 10 * time.Minute

type stores struct {
	users    repository.UserRepository
	courses  repository.CourseRepository
	sessions session.Store

	closers []func(context.Context)
}

func (s *stores) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i](ctx)
	}
}

// openStores connects the configured backend and builds the repositories
// and session store on top of it.
func openStores(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := repository.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn().Err(err).Msg("disconnecting mongo")
			}
		})
		if err := st.openMongo(ctx, client.Database(cfg.MongoDatabase), cfg); err != nil {
			st.Close(ctx)
			return nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")

	case config.DriverMySQL:
		db, err := repository.NewMySQLDB(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) { _ = db.Close() })
		st.openMySQL(db)
		logger.Info().Msg("connected to mysql")

	case config.DriverMemory:
		st.users = repository.NewMemoryUserRepository()
		st.courses = repository.NewMemoryCourseRepository()
		logger.Warn().Msg("using in-memory store, data is lost on restart")

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StoreDriver)
	}

	if st.sessions == nil {
		mem := session.NewMemoryStore(sessionSweepInterval)
		st.closers = append(st.closers, func(context.Context) { mem.Close() })
		st.sessions = mem
	}

	return st, nil
}

func (s *stores) openMongo(ctx context.Context, db *mongo.Database, cfg config.Config) error {
	users, err := repository.NewMongoUserRepository(ctx, db)
	if err != nil {
		return err
	}
	courses, err := repository.NewMongoCourseRepository(ctx, db)
	if err != nil {
		return err
	}
	s.users = users
	s.courses = courses

	if cfg.Session.Store == config.DriverMongo {
		sessions, err := repository.NewMongoSessionStore(ctx, db)
		if err != nil {
			return err
		}
		s.sessions = sessions
	}
	return nil
}

func (s *stores) openMySQL(db *sql.DB) {
	s.users = repository.NewMySQLUserRepository(db)
	s.courses = repository.NewMySQLCourseRepository(db)
}
