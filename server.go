package campusvoice

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/campusvoice/campusvoice/blobstore"
)

// DefaultMaxPhotoBytes caps uploaded photos at 5 MiB.
const DefaultMaxPhotoBytes = 5 << 20

type ServerConfig struct {
	Addr          string
	SessionSecret string
	MaxPhotoBytes int64
}

// RequestHook runs after a request has been created, for side channels such
// as chat notifications. Hook failures are logged and never fail the create.
type RequestHook func(r *Request) error

type Server struct {
	Logger          zerolog.Logger
	config          *ServerConfig
	store           Store
	blobs           blobstore.Store
	router          *httprouter.Router
	sessionStore    *sessions.CookieStore
	requestHooks    []RequestHook
	done            chan struct{}
	idleConnsClosed chan struct{}
}

func NewServer(config *ServerConfig, logger zerolog.Logger, store Store, blobs blobstore.Store) *Server {
	if config.MaxPhotoBytes == 0 {
		config.MaxPhotoBytes = DefaultMaxPhotoBytes
	}

	return &Server{
		config:          config,
		Logger:          logger,
		store:           store,
		blobs:           blobs,
		router:          httprouter.New(),
		sessionStore:    sessions.NewCookieStore([]byte(config.SessionSecret)),
		done:            make(chan struct{}),
		idleConnsClosed: make(chan struct{}),
	}
}

// AddRequestHook registers a hook invoked after every successful create.
func (s *Server) AddRequestHook(h RequestHook) {
	s.requestHooks = append(s.requestHooks, h)
}

func (s *Server) Prepare() error {
	// database
	err := s.store.Connect()
	if err != nil {
		return err
	}

	// routes; the client key middleware backfills a cookie-persisted key for
	// browser clients that don't send one.
	withMiddlewares(func(m middleware) {
		s.router.GET("/requests", m(s.HandleFeed()))
		s.router.DELETE("/requests/:id", m(s.HandleDeleteRequest()))
	}, s.loadClientKeyMiddleware())

	s.router.POST("/requests", s.HandleCreateRequest())
	s.router.POST("/vote", s.HandleVote())
	s.router.POST("/comments", s.HandleComment())
	s.router.ServeFiles("/static/*filepath", http.Dir("assets/static"))

	return nil
}

func (s *Server) Start() error {
	httpServer := http.Server{Addr: s.config.Addr, Handler: s}

	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Cannot listen")
		}
	}()

	<-s.done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}
	close(s.idleConnsClosed)

	return nil
}

func (s *Server) Stop() {
	close(s.done)
	<-s.idleConnsClosed
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(res, req)
}
