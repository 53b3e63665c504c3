package controller

import (
	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TemplateController 可复用任务包
type TemplateController struct {
	TemplateService *service.TemplateService
}

func NewTemplateController(templateService *service.TemplateService) *TemplateController {
	return &TemplateController{TemplateService: templateService}
}

// Create godoc
// @Summary 创建任务包
// @Tags 模板
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateTemplateRequest true "任务包内容"
// @Success 201 {object} util.Response{data=model.PlanTemplate} "成功"
// @Router /api/teacher/templates [post]
func (c *TemplateController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.CreateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	template, err := c.TemplateService.Create(claims, &req)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, template)
}

// Get godoc
// @Summary 任务包详情
// @Tags 模板
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "模板ID"
// @Success 200 {object} util.Response{data=model.PlanTemplate} "成功"
// @Router /api/teacher/templates/{id} [get]
func (c *TemplateController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	template, err := c.TemplateService.Get(claims, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, template)
}

// ListMine godoc
// @Summary 我的任务包
// @Tags 模板
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.PlanTemplate} "成功"
// @Router /api/teacher/templates [get]
func (c *TemplateController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	templates, err := c.TemplateService.ListMine(claims)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, templates)
}

// Delete godoc
// @Summary 删除任务包
// @Tags 模板
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "模板ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/templates/{id} [delete]
func (c *TemplateController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.TemplateService.Delete(claims, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
