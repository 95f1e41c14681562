package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	"golang.org/x/time/rate"
)

// App wires the word store, session state and sentence providers
// together for the handler layer.
type App struct {
	Store *WordStore

	Demo  DemoProvider
	Model *ModelProvider // nil when no API key is configured

	Sessions     map[string]*StudySession
	SessionMutex sync.RWMutex

	LimiterMap   map[string]*rate.Limiter
	LimiterMutex sync.Mutex

	IsProduction      bool
	CookieMaxAge      time.Duration
	SessionTimeout    time.Duration
	GenerationTimeout time.Duration
	StaticCacheAge    time.Duration
	RateLimitRPS      int
	RateLimitBurst    int
	StartTime         time.Time
}

func main() {
	_ = godotenv.Load()

	app := newApp()
	logInfo("Starting Vortkarto in %s mode", map[bool]string{true: "production", false: "development"}[app.IsProduction])

	store, err := loadWordStore(getEnv("WORD_LIST_PATH", "data/words.csv"))
	if err != nil {
		logFatal("Failed to load word list: %v", err)
	}
	app.Store = store

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		app.Model = newModelProvider(apiKey, app.GenerationTimeout)
		logInfo("Sentence generation via model %s", app.Model.Model)
	} else {
		logInfo("No API key configured, sentence generation runs in demo mode")
	}

	app.startSessionCleanup(getEnvDuration("SESSION_CLEANUP_INTERVAL", 15*time.Minute))

	router := app.setupRouter()
	startServer(router)
}

func newApp() *App {
	return &App{
		Sessions:          make(map[string]*StudySession),
		LimiterMap:        make(map[string]*rate.Limiter),
		IsProduction:      os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production",
		CookieMaxAge:      getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		SessionTimeout:    getEnvDuration("SESSION_TIMEOUT", 2*time.Hour),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 15*time.Second),
		StaticCacheAge:    getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:      getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:    getEnvInt("RATE_LIMIT_BURST", 10),
		StartTime:         time.Now(),
	}
}

// newModelProvider builds the external-service provider. The base URL is
// overridable for tests and proxies; the model defaults to a cheap, fast
// one.
func newModelProvider(apiKey string, timeout time.Duration) *ModelProvider {
	return &ModelProvider{
		APIKey:  apiKey,
		Model:   getEnv("MODEL_NAME", "gpt-4o-mini"),
		BaseURL: strings.TrimSuffix(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (app *App) setupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png", ".jpg", ".jpeg", ".gif"})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})
	router.Use(requestIDMiddleware())

	router.SetFuncMap(template.FuncMap{
		"add": func(nums ...int) int {
			sum := 0
			for _, n := range nums {
				sum += n
			}
			return sum
		},
	})
	router.LoadHTMLGlob("templates/*.html")
	router.Static("/static", "./static")

	router.GET(RouteHome, app.homeHandler)
	router.POST(RouteSearch, app.rateLimitMiddleware(), app.searchHandler)
	router.POST(RouteNext, app.nextHandler)
	router.POST(RouteBack, app.backHandler)
	router.POST(RouteSelect, app.selectHandler)
	router.GET(RouteBrowse, app.browseHandler)
	router.POST(RouteGenerate, app.rateLimitMiddleware(), app.generateHandler)
	router.POST(RouteGenerateAgain, app.rateLimitMiddleware(), app.generateAgainHandler)
	router.POST(RouteReset, app.resetHandler)
	router.GET("/healthz", app.healthzHandler)

	return router
}

func (app *App) applyCacheHeaders(c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

func startServer(router *gin.Engine) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	logInfo("Server shutdown complete")
}
