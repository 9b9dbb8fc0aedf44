package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/resonatehq/console/internal/operations"
	"github.com/resonatehq/console/internal/store"
	"github.com/resonatehq/console/internal/util"
	"github.com/resonatehq/console/pkg/state"
	"github.com/resonatehq/console/pkg/user"
)

//go:embed templates/*.html
var templates embed.FS

type Config struct {
	Addr    string        `flag:"addr" desc:"http server address" default:"0.0.0.0:8080"`
	Timeout time.Duration `flag:"timeout" desc:"http server graceful shutdown timeout" default:"10s"`
	Cors    Cors          `flag:"cors"`
	Auth    Auth          `flag:"auth"`
}

type Cors struct {
	AllowOrigins []string `flag:"allow-origins" mapstructure:"allow-origins" desc:"allowed origins of the operations api, if not provided cors is not enabled"`
}

type Auth struct {
	PublicKey string `flag:"public-key" mapstructure:"public-key" desc:"pem encoded rsa public key file, if provided the operations api requires a jwt"`
}

// Reader is the read side of the store used by the pages.
type Reader interface {
	Get(operations.Key) (operations.Record, bool)
	Snapshot() *store.State
}

type UsersService interface {
	FetchUsers(context.Context)
	SaveUser(context.Context, *user.User) (any, error)
}

type StatesService interface {
	FetchStates(context.Context)
	SaveState(context.Context, *state.State) (any, error)
}

type Web struct {
	config *Config
	server *http.Server
}

func New(config *Config, reader Reader, users UsersService, states StatesService, auth *JwtAuthenticator) (*Web, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	// report form field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(formName)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger())
	r.SetHTMLTemplate(tmpl)

	if len(config.Cors.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: config.Cors.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodOptions},
			AllowHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	up := newUsersPage(users, reader)
	sp := newStatesPage(states, reader)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/users")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Pages
	r.GET("/users", up.get)
	r.POST("/users", up.post)
	r.GET("/states", sp.get)
	r.POST("/states", sp.post)

	// Operations API
	api := r.Group("/api")
	if auth != nil {
		api.Use(auth.Middleware())
	}
	o := &operationsApi{reader: reader}
	api.GET("/operations", o.list)
	api.GET("/operations/:key", o.get)

	return &Web{
		config: config,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: r,
		},
	}, nil
}

func (w *Web) Handler() http.Handler {
	return w.server.Handler
}

func (w *Web) Start(errors chan<- error) {
	slog.Info("starting web server", "addr", w.config.Addr)
	if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errors <- err
	}
}

func (w *Web) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
	defer cancel()

	return w.server.Shutdown(ctx)
}

func (w *Web) String() string {
	return "web"
}

type operationsApi struct {
	reader Reader
}

func (o *operationsApi) list(c *gin.Context) {
	c.JSON(http.StatusOK, o.reader.Snapshot().API)
}

func (o *operationsApi) get(c *gin.Context) {
	key := operations.Key(c.Param("key"))

	record, ok := o.reader.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "operation has not been requested",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Helper functions

var funcs = template.FuncMap{
	"deref": util.SafeDeref[string],
}

func formName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Debug("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
