package controller

import (
	"studycoach_backend/internal/model"
	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 任务字典维护
type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// ListActive godoc
// @Summary 可选任务列表
// @Description 选任务时的下拉数据源，仅活跃条目，带缓存
// @Tags 任务字典
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CatalogEntry} "成功"
// @Router /api/catalog [get]
func (c *CatalogController) ListActive(ctx *gin.Context) {
	entries, err := c.CatalogService.ListActive(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// ListAll godoc
// @Summary 全部字典条目（含下架）
// @Tags 任务字典
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CatalogEntry} "成功"
// @Router /api/admin/catalog [get]
func (c *CatalogController) ListAll(ctx *gin.Context) {
	entries, err := c.CatalogService.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

type CreateCatalogRequest struct {
	ExamSystem     string `json:"examSystem" binding:"required"`
	Module         string `json:"module" binding:"required"`
	TaskName       string `json:"taskName" binding:"required"`
	Description    string `json:"description"`
	DefaultMinutes int    `json:"defaultMinutes"`
}

// Create godoc
// @Summary 新增字典条目
// @Tags 任务字典
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreateCatalogRequest true "条目内容"
// @Success 201 {object} util.Response{data=model.CatalogEntry} "成功"
// @Router /api/admin/catalog [post]
func (c *CatalogController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req CreateCatalogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry := &model.CatalogEntry{
		ExamSystem:     req.ExamSystem,
		Module:         req.Module,
		TaskName:       req.TaskName,
		Description:    req.Description,
		DefaultMinutes: req.DefaultMinutes,
		IsActive:       true,
		CreatedBy:      claims.UserID,
	}
	if err := c.CatalogService.Create(ctx.Request.Context(), entry); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, entry)
}

type UpdateCatalogRequest struct {
	Description    string `json:"description"`
	DefaultMinutes int    `json:"defaultMinutes"`
	IsActive       bool   `json:"isActive"`
}

// Update godoc
// @Summary 更新字典条目
// @Description 历史计划里的字典副本不受影响
// @Tags 任务字典
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "条目ID"
// @Param   body body UpdateCatalogRequest true "更新内容"
// @Success 200 {object} util.Response{data=model.CatalogEntry} "成功"
// @Router /api/admin/catalog/{id} [put]
func (c *CatalogController) Update(ctx *gin.Context) {
	var req UpdateCatalogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	entry, err := c.CatalogService.Update(ctx.Request.Context(),
		util.MustParseUint(ctx.Param("id")),
		req.Description, req.DefaultMinutes, req.IsActive)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, entry)
}

// Deactivate godoc
// @Summary 下架字典条目
// @Tags 任务字典
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "条目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/catalog/{id} [delete]
func (c *CatalogController) Deactivate(ctx *gin.Context) {
	if err := c.CatalogService.Deactivate(ctx.Request.Context(), util.MustParseUint(ctx.Param("id"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
