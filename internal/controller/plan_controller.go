package controller

import (
	"time"

	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// PlanController 教练侧的计划管理
type PlanController struct {
	PlanService *service.PlanService
}

func NewPlanController(planService *service.PlanService) *PlanController {
	return &PlanController{PlanService: planService}
}

// CreatePlan godoc
// @Summary 创建学习计划
// @Description 为学生创建某天的计划；当天已有计划时默认返回409，replace=true 时整体替换
// @Tags 计划管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreatePlanRequest true "计划内容"
// @Success 201 {object} util.Response{data=model.StudyPlan} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "权限不足"
// @Failure 409 {object} util.Response "当天计划已存在"
// @Router /api/teacher/plans [post]
func (c *PlanController) CreatePlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.PlanService.CreatePlan(claims, &req)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, plan)
}

// PublishPlan godoc
// @Summary 发布计划
// @Description 草稿发布后学生才可见、可计时
// @Tags 计划管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划ID"
// @Success 200 {object} util.Response{data=model.StudyPlan} "成功"
// @Failure 400 {object} util.Response "计划不是草稿"
// @Failure 404 {object} util.Response "计划不存在"
// @Router /api/teacher/plans/{id}/publish [post]
func (c *PlanController) PublishPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	plan, err := c.PlanService.PublishPlan(claims, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// LockPlan godoc
// @Summary 锁定计划
// @Description 锁定后整份计划只读
// @Tags 计划管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/plans/{id}/lock [post]
func (c *PlanController) LockPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.PlanService.LockPlan(claims, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// DeletePlan godoc
// @Summary 删除计划
// @Description 软删除；锁定的计划只有管理员可删
// @Tags 计划管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/plans/{id} [delete]
func (c *PlanController) DeletePlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.PlanService.DeletePlan(claims, util.MustParseUint(ctx.Param("id"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetPlan godoc
// @Summary 计划详情
// @Description 含计划项、计时段和证据的完整视图
// @Tags 计划管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "计划ID"
// @Success 200 {object} util.Response{data=model.StudyPlan} "成功"
// @Failure 404 {object} util.Response "计划不存在"
// @Router /api/plans/{id} [get]
func (c *PlanController) GetPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	plan, err := c.PlanService.GetPlan(claims, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// GetPlanByDate godoc
// @Summary 按日期取计划
// @Description 学生端"今天的任务"入口；date 缺省为今天
// @Tags 计划管理
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Param   date query string false "日期 YYYY-MM-DD"
// @Success 200 {object} util.Response{data=model.StudyPlan} "成功"
// @Failure 404 {object} util.Response "当天没有计划"
// @Router /api/students/{studentId}/plans/by-date [get]
func (c *PlanController) GetPlanByDate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	studentID := util.MustParseUint(ctx.Param("studentId"))

	date := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse(util.DateFormat, raw)
		if err != nil {
			util.BadRequest(ctx, "invalid date")
			return
		}
		date = parsed
	}

	plan, err := c.PlanService.GetPlanByDate(claims, studentID, date)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// ListPlans godoc
// @Summary 日期范围内的计划列表
// @Tags 计划管理
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Param   from query string true "起始日期 YYYY-MM-DD"
// @Param   to query string true "结束日期 YYYY-MM-DD"
// @Success 200 {object} util.Response{data=[]model.StudyPlan} "成功"
// @Router /api/students/{studentId}/plans [get]
func (c *PlanController) ListPlans(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	studentID := util.MustParseUint(ctx.Param("studentId"))

	from, err := time.Parse(util.DateFormat, ctx.Query("from"))
	if err != nil {
		util.BadRequest(ctx, "invalid from date")
		return
	}
	to, err := time.Parse(util.DateFormat, ctx.Query("to"))
	if err != nil {
		util.BadRequest(ctx, "invalid to date")
		return
	}

	plans, err := c.PlanService.ListPlans(claims, studentID, from, to)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}
