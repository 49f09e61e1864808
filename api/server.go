package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"media-gallery/compiler"
	"media-gallery/session"
	"media-gallery/watcher"
)

// Server rappresenta il server API della galleria
type Server struct {
	router      *gin.Engine
	session     *session.Session
	watcher     *watcher.FileWatcher
	hub         *Hub
	addr        string
	version     string
	mediaPrefix string
}

// ServerConfig configurazione del server
type ServerConfig struct {
	Addr           string
	Session        *session.Session
	Watcher        *watcher.FileWatcher // nil se il monitoraggio è disattivato
	Root           string               // cartella che contiene ResourceDir
	ResourceDir    string
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
	Version        string
	Logger         *log.Logger
}

// mediaPrefix è il prefisso URL sotto cui vengono servite le risorse
const mediaPrefix = "/media"

// NewServer crea un nuovo server API
func NewServer(config ServerConfig) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("api")

	router := gin.New()
	router.Use(gin.Recovery(), loggingMiddleware(logger))

	if config.EnableCORS {
		origins := config.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: !containsWildcard(origins),
		}))
	}

	router.SetHTMLTemplate(compiler.MustTemplates())

	server := &Server{
		router:      router,
		session:     config.Session,
		watcher:     config.Watcher,
		hub:         NewHub(logger),
		addr:        config.Addr,
		version:     config.Version,
		mediaPrefix: mediaPrefix,
	}

	if config.ResourceDir != "" {
		root := config.Root
		if root == "" {
			root = "."
		}
		router.Static(mediaPrefix+"/"+config.ResourceDir, filepath.Join(root, config.ResourceDir))
	}

	server.setupRoutes()
	return server
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// setupRoutes configura tutti gli endpoint
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)

		// Contenuto
		api.GET("/content", s.getContent)
		api.GET("/view", s.getView)
		api.POST("/reload", s.reload)
		api.GET("/preload", s.getPreload)
		api.GET("/dialects", s.getDialects)

		// Lingua
		api.GET("/language", s.getLanguage)
		api.POST("/language", s.setLanguage)
		api.POST("/language/toggle", s.toggleLanguage)

		// Modale e anteprime
		api.GET("/modal", s.getModal)
		api.DELETE("/modal", s.closeModal)
		api.POST("/cards/:order/activate", s.activateCard)
		api.POST("/overlays/:id/dismiss", s.dismissOverlay)
		api.POST("/keys", s.pressKey)

		api.GET("/watch/status", s.getWatcherStatus)
	}

	s.router.GET("/", s.index)
	s.router.GET("/ws", s.handleWebSocket)
}

// Handler restituisce l'http.Handler del router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub restituisce l'hub websocket
func (s *Server) Hub() *Hub {
	return s.hub
}

// Forward inoltra ai client websocket gli eventi di sessione e watcher
// finché ctx non viene cancellato.
func (s *Server) Forward(ctx context.Context) {
	events, cancel := s.session.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				s.hub.Broadcast(Message{Source: SourceSession, Event: e})
			case <-ctx.Done():
				return
			}
		}
	}()

	if s.watcher == nil {
		return
	}
	go func() {
		for {
			select {
			case e := <-s.watcher.Events():
				s.hub.Broadcast(Message{Source: SourceWatcher, Event: e})
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Start avvia il server e lo ferma quando ctx viene cancellato
func (s *Server) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithPrefix("api")

	s.Forward(ctx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server avviato", "addr", fmt.Sprintf("http://%s", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("errore arresto server: %w", err)
	}
	logger.Info("server fermato")
	return nil
}
