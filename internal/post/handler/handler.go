package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blogposts/blogposts-api/internal/post"
	"github.com/blogposts/blogposts-api/internal/post/service"
	"github.com/blogposts/blogposts-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// RegisterPostRoutes mounts the post collection on rg:
//
//	GET    ""     list (capped), {"results": [...]}
//	POST   ""     create, 201
//	GET    "/:id" single post
//	PUT    "/:id" partial update, 204
//	DELETE "/:id" idempotent delete, 204
func RegisterPostRoutes(rg *gin.RouterGroup, svc service.Service) {
	h := &postHandler{svc: svc}
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

type postHandler struct {
	svc service.Service
}

func (h *postHandler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]post.View, 0, len(list))
	for _, p := range list {
		out = append(out, p.Serialize())
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *postHandler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.Serialize())
}

func (h *postHandler) create(c *gin.Context) {
	cand, err := decodeBody(c)
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), cand)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Infof("Created blog post `%s`", p.ID)
	c.JSON(http.StatusCreated, p.Serialize())
}

func (h *postHandler) update(c *gin.Context) {
	id := c.Param("id")
	cand, err := decodeBody(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.svc.Update(c.Request.Context(), id, cand); err != nil {
		writeError(c, err)
		return
	}
	logger.Infof("Updating blog post `%s`", id)
	c.Status(http.StatusNoContent)
}

func (h *postHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	logger.Infof("Deleted blog post `%s`", id)
	c.Status(http.StatusNoContent)
}

// decodeBody parses the JSON request body; malformed input is a client error.
// A body sent with a non-JSON content type is read as {}.
func decodeBody(c *gin.Context) (*post.Candidate, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, &service.ValidationError{Message: "could not read request body"}
	}
	if len(body) > 0 && !isJSON(c.ContentType()) {
		body = nil
	}
	cand, err := post.DecodeCandidate(body)
	if err != nil {
		return nil, &service.ValidationError{Message: err.Error()}
	}
	return cand, nil
}

func isJSON(contentType string) bool {
	return contentType == gin.MIMEJSON || strings.HasSuffix(contentType, "+json")
}

// writeError maps service errors onto the status-code contract. Storage
// details are logged, never sent to the client.
func writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.Errorf("%s", ve.Message)
		c.String(http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": internalErrorMessage})
	}
}
