package http

import (
	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/learniq-api/internal/infrastructure"
)

func v1Endpoint(
	websocket *infra.Websocket,
	UserHandler *UserHandler,
	CourseHandler *CourseHandler,
	BundleHandler *BundleHandler,
	ActivityHandler *ActivityHandler,
	ChatHandler *ChatHandler,
	jwtMiddleware echo.MiddlewareFunc,
) *endpoint {
	return &endpoint{
		apiVersion:  "api/v1",
		middlewares: []echo.MiddlewareFunc{jwtMiddleware},
		groups: []*apiGroup{
			{
				prefix: "/user",
				routes: []*route{
					{"GET", "/me", UserHandler.HandleMe, nil},
					{"PUT", "/sign-out", UserHandler.HandleSignOut, nil},
				},
			},
			{
				prefix: "/courses",
				routes: []*route{
					{"GET", "", CourseHandler.HandleListCourses, nil},
					{"GET", "/:id", CourseHandler.HandleGetCourse, nil},
					{"GET", "/:id/progress", CourseHandler.HandleGetCourseProgress, nil},
					{"GET", "/:id/navigation", CourseHandler.HandleGetNavigation, nil},
					{"POST", "/:id/restart", CourseHandler.HandleRestart, nil},
				},
			},
			{
				prefix: "/progress",
				routes: []*route{
					{"GET", "", CourseHandler.HandleGetProgressOverview, nil},
				},
			},
			{
				prefix: "/bundles",
				routes: []*route{
					{"GET", "", BundleHandler.HandleListBundles, nil},
					{"GET", "/resume", BundleHandler.HandleResume, nil},
					{"GET", "/pickup", BundleHandler.HandlePickup, nil},
					{"GET", "/:id", BundleHandler.HandleGetBundle, nil},
				},
			},
			{
				prefix: "/activity",
				routes: []*route{
					{"GET", "", ActivityHandler.HandleGetActivity, nil},
				},
			},
			{
				prefix: "/ws",
				routes: []*route{
					{"GET", "/chat", websocket.WithHeartbeat(ChatHandler.HandleChatSocket), nil},
				},
			},
		},
	}
}
