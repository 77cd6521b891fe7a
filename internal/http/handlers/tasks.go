package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode"

	"task_tracker/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListTasks answers {"tasks": [...]} with rows exactly as the store returns them.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// CreateTask validates the body, inserts one row and answers 201 with it.
func (h *Handler) CreateTask(c *gin.Context) {
	body := map[string]any{}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, invalid("request body must be a JSON object"))
		return
	}
	if body == nil {
		h.badRequest(c, invalid("request body must be a JSON object"))
		return
	}
	in, err := parseNewTask(body)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), in)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func parseNewTask(body map[string]any) (domain.NewTask, error) {
	title, ok := body["title"].(string)
	title = trimTitle(title)
	if !ok || title == "" {
		return domain.NewTask{}, invalid("title is required and must be a non-empty string")
	}

	desc, err := optionalString(body, "description")
	if err != nil {
		return domain.NewTask{}, err
	}
	status, err := optionalString(body, "status")
	if err != nil {
		return domain.NewTask{}, err
	}

	in := domain.NewTask{Title: title, Status: domain.DefaultTaskStatus}
	if desc != "" {
		in.Description = &desc
	}
	if status != "" {
		in.Status = status
	}
	return in, nil
}

// trimTitle strips surrounding whitespace, counting a byte order mark as whitespace.
func trimTitle(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// optionalString returns "" for absent or falsy values (null, "", false, 0).
func optionalString(body map[string]any, key string) (string, error) {
	switch v := body[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if !v {
			return "", nil
		}
	case float64:
		if v == 0 {
			return "", nil
		}
	}
	return "", invalid(key + " must be a string")
}
