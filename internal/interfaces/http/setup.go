package http

import (
	"expvar"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/learniq-api/internal/bundle"
	"github.com/pot-code/learniq-api/internal/chat"
	"github.com/pot-code/learniq-api/internal/course"
	infra "github.com/pot-code/learniq-api/internal/infrastructure"
	"github.com/pot-code/learniq-api/internal/infrastructure/auth"
	"github.com/pot-code/learniq-api/internal/infrastructure/driver"
	"github.com/pot-code/learniq-api/internal/infrastructure/uuid"
	"github.com/pot-code/learniq-api/internal/infrastructure/validate"
	"github.com/pot-code/learniq-api/internal/interfaces/http/middleware"
	"github.com/pot-code/learniq-api/internal/streak"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

const chatPath = "/api/chat"

type endpoint struct {
	apiVersion  string
	middlewares []echo.MiddlewareFunc
	groups      []*apiGroup
}

type apiGroup struct {
	prefix      string
	middlewares []echo.MiddlewareFunc
	routes      []*route
}

type route struct {
	method      string
	path        string
	handler     echo.HandlerFunc
	middlewares []echo.MiddlewareFunc
}

// Serve create http transport server and block until it stops
func Serve(
	conn driver.ITransactionalDB,
	rdb driver.KeyValueDB,
	option *infra.AppConfig,
	CourseUseCase course.CourseUseCase,
	BundleUseCase bundle.BundleUseCase,
	StreakUseCase streak.StreakUseCase,
	ChatRelay chat.Relayer,
	logger *zap.Logger,
) error {
	app := NewApp(conn, rdb, option, CourseUseCase, BundleUseCase, StreakUseCase, ChatRelay, logger)
	printRoutes(app, logger)
	return app.Start(fmt.Sprintf("%s:%d", option.Host, option.Port))
}

// NewApp assemble middlewares and routes
func NewApp(
	conn driver.ITransactionalDB,
	rdb driver.KeyValueDB,
	option *infra.AppConfig,
	CourseUseCase course.CourseUseCase,
	BundleUseCase bundle.BundleUseCase,
	StreakUseCase streak.StreakUseCase,
	ChatRelay chat.Relayer,
	logger *zap.Logger,
) *echo.Echo {
	var (
		app       = echo.New()
		validator = validate.NewValidator()
		websocket = infra.NewWebsocket(option.CORS.AllowOrigins)
		requestID = uuid.NewNanoIDGenerator(option.Security.IDLength)
		jwtUtil   = auth.NewJWTUtil(option.Security.JWTMethod,
			option.Security.JWTSecret,
			option.Security.TokenName)
		jwtMiddleware = middleware.VerifyToken(jwtUtil, &middleware.ValidateTokenOption{
			InBlackList: func(token string) (bool, error) {
				return rdb.Exists(auth.RevokedKey(token))
			},
		})
	)
	app.HideBanner = true

	if option.Env == infra.EnvDevelopment {
		registerProfileEndpoints(app)
	}
	app.Use(echo_middleware.RequestIDWithConfig(echo_middleware.RequestIDConfig{
		Generator: requestID.MustGenerate,
	}))
	app.Use(middleware.SetTraceLogger(logger))
	app.Use(middleware.Logging(logger, &middleware.LoggingConfig{
		Skipper: func(e echo.Context) bool {
			return strings.HasPrefix(e.Request().URL.Path, "/health")
		},
	}))
	app.Use(middleware.ErrorHandling(
		&middleware.ErrorHandlingOption{
			Handler: func(c echo.Context, err error) {
				code := statusOf(err)
				traceID := traceIDOf(c)
				detail := err.Error()
				if code >= http.StatusInternalServerError {
					logger.Error(err.Error(), zap.String("trace.id", traceID))
					detail = ""
				}
				c.JSON(code, NewRESTStandardError(code, detail).SetTraceID(traceID))
			},
			Logger: logger,
		},
	))
	app.Use(echo_middleware.Secure())
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORSWithConfig(echo_middleware.CORSConfig{
		AllowOrigins:     option.CORS.AllowOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	app.Use(middleware.AbortRequest(&middleware.AbortRequestOption{
		// chat is bounded by chat.timeout instead
		Skipper: func(c echo.Context) bool {
			return c.IsWebSocket() || c.Path() == chatPath
		},
		Timeout: option.RequestTimeout,
	}))
	app.Use(middleware.NoRouteMatched())

	var (
		UserHandler     = NewUserHandler(jwtUtil, rdb)
		CourseHandler   = NewCourseHandler(CourseUseCase, jwtUtil)
		BundleHandler   = NewBundleHandler(BundleUseCase, jwtUtil)
		ActivityHandler = NewActivityHandler(StreakUseCase, jwtUtil, validator)
		ChatHandler     = NewChatHandler(ChatRelay)
	)

	registerProbes(app, conn, rdb)
	app.POST(chatPath, ChatHandler.HandleChat)
	createEndpoint(app, v1Endpoint(
		websocket,
		UserHandler,
		CourseHandler,
		BundleHandler,
		ActivityHandler,
		ChatHandler,
		jwtMiddleware,
	))
	return app
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			name := route.Name
			trimIndex := strings.LastIndexByte(name, '/')
			logger.Debug("Registered route", zap.String("method", route.Method), zap.String("path", route.Path), zap.String("name", string(name[trimIndex+1:])))
		}
	}
}

// registerProbes /health answers as long as the process serves, /healthz also needs db and kv
func registerProbes(app *echo.Echo, db driver.ITransactionalDB, rdb driver.KeyValueDB) {
	app.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
	app.GET("/healthz", func(c echo.Context) error {
		if db.Ping() == nil && rdb.Ping() == nil {
			return c.NoContent(http.StatusOK)
		}
		return c.NoContent(http.StatusServiceUnavailable)
	})
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}

func createEndpoint(app *echo.Echo, def *endpoint) {
	type RESTMethod func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

	var root *echo.Group
	if strings.HasPrefix(def.apiVersion, "/") {
		root = app.Group(def.apiVersion, def.middlewares...)
	} else {
		root = app.Group("/"+def.apiVersion, def.middlewares...)
	}

	for _, group := range def.groups {
		echoGroup := root.Group(group.prefix, group.middlewares...)
		for _, api := range group.routes {
			var method RESTMethod
			switch api.method {
			case "GET":
				method = echoGroup.GET
			case "POST":
				method = echoGroup.POST
			case "PUT":
				method = echoGroup.PUT
			case "DELETE":
				method = echoGroup.DELETE
			default:
				panic(fmt.Errorf("createEndpoint: unknown method %s", api.method))
			}
			method(api.path, api.handler, api.middlewares...)
		}
	}
}
