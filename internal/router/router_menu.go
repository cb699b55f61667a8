package router

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-arbor/arbor/internal/app/menu/model"
	"github.com/go-arbor/arbor/pkg/httpx"
)

func (ar *Router) menuRoutes(r *gin.RouterGroup) {

	menus := r.Group("/menus")
	{
		menus.POST("", ar.createMenu)
		menus.GET("", ar.listMenus)
		menus.GET("/tree", ar.menuTree)
		menus.GET("/search", ar.searchMenus)
		menus.GET("/statistics", ar.menuStatistics)
		menus.POST("/reorder", ar.reorderMenus)
		menus.POST("/status", ar.bulkMenuStatus)
		menus.GET("/user/:userId", ar.userMenus)
		menus.GET("/:id", ar.getMenu)
		menus.GET("/:id/path", ar.menuPath)
		menus.PUT("/:id", ar.updateMenu)
		menus.DELETE("/:id", ar.deleteMenu)
	}
}

// actingUser is the audit identity supplied by the identity collaborator.
func actingUser(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, "invalid id", c.Request.URL.Path)
		return 0, false
	}
	return id, true
}

// repErr maps a domain failure onto the response envelope: validation
// failures carry their structured error list, anything else is opaque.
func repErr(c *gin.Context, err error) {
	if ve, ok := model.AsValidationErrors(err); ok {
		httpx.WithRepErr(c, httpx.Invalid.Code, httpx.Invalid.Msg, ve, c.Request.URL.Path)
		return
	}
	httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Request.URL.Path)
}

func (ar *Router) createMenu(c *gin.Context) {
	var req model.CreateMenuReq
	if err := c.BindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, httpx.InvalidParam.Msg, c.Request.URL.Path)
		return
	}

	node, err := ar.menuLogic.CreateMenu(c.Request.Context(), &req, actingUser(c))
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, node)
}

func (ar *Router) updateMenu(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch model.UpdateMenuReq
	if err := c.BindJSON(&patch); err != nil {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, httpx.InvalidParam.Msg, c.Request.URL.Path)
		return
	}

	node, err := ar.menuLogic.UpdateMenu(c.Request.Context(), id, &patch, actingUser(c))
	if err != nil {
		repErr(c, err)
		return
	}
	if node == nil {
		httpx.WithRepErrMsg(c, httpx.NotFound.Code, httpx.NotFound.Msg, c.Request.URL.Path)
		return
	}
	httpx.WithRepJSON(c, node)
}

func (ar *Router) deleteMenu(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := ar.menuLogic.DeleteMenu(c.Request.Context(), id, actingUser(c))
	if err != nil {
		repErr(c, err)
		return
	}
	if !deleted {
		httpx.WithRepErrMsg(c, httpx.NotFound.Code, httpx.NotFound.Msg, c.Request.URL.Path)
		return
	}
	httpx.WithRepJSON(c, gin.H{"deleted": true})
}

func (ar *Router) getMenu(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	node, err := ar.menuLogic.GetByID(c.Request.Context(), id)
	if err != nil {
		repErr(c, err)
		return
	}
	if node == nil {
		httpx.WithRepErrMsg(c, httpx.NotFound.Code, httpx.NotFound.Msg, c.Request.URL.Path)
		return
	}
	httpx.WithRepJSON(c, node)
}

func (ar *Router) listMenus(c *gin.Context) {
	var filter model.ListFilter
	if err := c.BindQuery(&filter); err != nil {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, httpx.InvalidParam.Msg, c.Request.URL.Path)
		return
	}

	result, err := ar.menuLogic.GetList(c.Request.Context(), filter)
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, result)
}

func (ar *Router) menuTree(c *gin.Context) {
	contextType := c.Query("contextType")
	contextID := c.Query("contextId")
	includeInactive := c.Query("includeInactive") == "true"

	tree, err := ar.menuLogic.GetTree(c.Request.Context(), contextType, contextID, includeInactive)
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, tree)
}

func (ar *Router) userMenus(c *gin.Context) {
	userID := c.Param("userId")
	var perms []string
	if raw := c.Query("permissions"); raw != "" {
		perms = strings.Split(raw, ",")
	}

	roots, err := ar.menuLogic.GetUserMenus(c.Request.Context(), userID, perms)
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, roots)
}

func (ar *Router) searchMenus(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, "query must not be empty", c.Request.URL.Path)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := ar.menuLogic.Search(c.Request.Context(), query, c.Query("contextType"), limit)
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, result)
}

func (ar *Router) menuStatistics(c *gin.Context) {
	stats, err := ar.menuLogic.Statistics(c.Request.Context())
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, stats)
}

func (ar *Router) reorderMenus(c *gin.Context) {
	var req model.ReorderReq
	if err := c.BindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, httpx.InvalidParam.Msg, c.Request.URL.Path)
		return
	}

	if err := ar.menuLogic.Reorder(c.Request.Context(), &req, actingUser(c)); err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, gin.H{"reordered": true})
}

func (ar *Router) bulkMenuStatus(c *gin.Context) {
	var req model.BulkStatusReq
	if err := c.BindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.InvalidParam.Code, httpx.InvalidParam.Msg, c.Request.URL.Path)
		return
	}

	result, err := ar.menuLogic.BulkUpdateStatus(c.Request.Context(), &req, actingUser(c))
	if err != nil {
		repErr(c, err)
		return
	}
	httpx.WithRepJSON(c, result)
}

func (ar *Router) menuPath(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	path, err := ar.menuLogic.GetPath(c.Request.Context(), id)
	if err != nil {
		repErr(c, err)
		return
	}
	if path == nil {
		httpx.WithRepErrMsg(c, httpx.NotFound.Code, httpx.NotFound.Msg, c.Request.URL.Path)
		return
	}
	httpx.WithRepJSON(c, path)
}
