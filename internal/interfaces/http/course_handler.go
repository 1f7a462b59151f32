package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/course"
	"github.com/pot-code/learniq-api/internal/infrastructure/auth"
)

type CourseHandler struct {
	courseUseCase course.CourseUseCase
	jwtUtil       *auth.JWTUtil
}

func NewCourseHandler(CourseUseCase course.CourseUseCase, JWTUtil *auth.JWTUtil) *CourseHandler {
	return &CourseHandler{CourseUseCase, JWTUtil}
}

func (ch *CourseHandler) HandleListCourses(c echo.Context) error {
	courses, err := ch.courseUseCase.ListCourses(c.Request().Context())
	if err != nil {
		return err
	}
	if courses == nil {
		courses = []*course.CourseModel{}
	}
	return c.JSON(http.StatusOK, courses)
}

func (ch *CourseHandler) HandleGetCourse(c echo.Context) error {
	detail, err := ch.courseUseCase.GetCourseDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if detail.Lessons == nil {
		detail.Lessons = []*course.LessonModel{}
	}
	return c.JSON(http.StatusOK, detail)
}

func (ch *CourseHandler) HandleGetCourseProgress(c echo.Context) error {
	user := currentUser(c, ch.jwtUtil)
	progress, err := ch.courseUseCase.GetCourseProgress(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}

func (ch *CourseHandler) HandleGetNavigation(c echo.Context) error {
	user := currentUser(c, ch.jwtUtil)
	nav, err := ch.courseUseCase.GetNavigation(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nav)
}

// HandleRestart answers with the lesson to navigate to, only after the progress was cleared
func (ch *CourseHandler) HandleRestart(c echo.Context) error {
	user := currentUser(c, ch.jwtUtil)
	intent, err := ch.courseUseCase.Restart(c.Request().Context(), user, c.Param("id"))
	if err != nil {
		return err
	}
	if intent == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, intent)
}

func (ch *CourseHandler) HandleGetProgressOverview(c echo.Context) error {
	user := currentUser(c, ch.jwtUtil)
	overview, err := ch.courseUseCase.GetProgressOverview(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overview)
}
