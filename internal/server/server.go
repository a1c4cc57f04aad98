package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"github.com/Rana718/tablo/internal/database"
	"github.com/Rana718/tablo/internal/datatable"
	"github.com/Rana718/tablo/internal/state"
	"github.com/Rana718/tablo/internal/table"
)

type Options struct {
	Port   int
	Store  state.Store
	Logger *zap.SugaredLogger
	// Engine options applied to every table.
	Engine []datatable.Option
}

type Server struct {
	app     *fiber.App
	engines map[string]*datatable.Engine
	order   []string
	store   state.Store
	log     *zap.SugaredLogger
	port    int
}

func New(db *database.DB, tables []*table.Table, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	store := opts.Store
	if store == nil {
		store = state.NewMemoryStore(24 * time.Hour)
	}

	engine := html.NewFileSystem(http.FS(TemplatesFS), ".html")
	app := fiber.New(fiber.Config{
		Views:                 engine,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:     app,
		engines: make(map[string]*datatable.Engine, len(tables)),
		store:   store,
		log:     log,
		port:    opts.Port,
	}

	engineOpts := append([]datatable.Option{datatable.WithLogger(log)}, opts.Engine...)
	for _, t := range tables {
		s.engines[t.ID()] = datatable.New(t, db, engineOpts...)
		s.order = append(s.order, t.ID())
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(s.requestLogger)

	staticFS, _ := fs.Sub(StaticFS, "static")
	s.app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(staticFS),
	}))

	// UI routes
	s.app.Get("/", s.handleIndex)
	s.app.Get("/tables/:id", s.handleTablePage)

	// API routes
	api := s.app.Group("/api")
	api.Get("/tables", s.handleListTables)
	api.Get("/tables/:id", s.handleProps)
	api.Post("/tables/:id", s.handleProps)
	api.Post("/tables/:id/columns", s.handleColumns)
	api.Get("/tables/:id/export", s.handleExport)
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(openBrowser bool) error {
	port := FindAvailablePort(s.port)
	if port != s.port {
		fmt.Printf("⚠️  Port %d is in use, using port %d instead\n", s.port, port)
		s.port = port
	}

	url := fmt.Sprintf("http://localhost:%d", s.port)
	fmt.Printf("🚀 Tablo starting on %s\n", url)

	if openBrowser {
		go OpenBrowser(url)
	}

	return s.app.Listen(fmt.Sprintf(":%d", s.port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	s.log.Debugw("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"latency", time.Since(start),
	)
	return err
}
