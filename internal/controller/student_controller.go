package controller

import (
	"strconv"

	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// StudentController 学生档案与授权关系
type StudentController struct {
	StudentService *service.StudentService
}

func NewStudentController(studentService *service.StudentService) *StudentController {
	return &StudentController{StudentService: studentService}
}

// Create godoc
// @Summary 建立学生档案
// @Tags 学生管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CreateStudentRequest true "档案信息"
// @Success 201 {object} util.Response{data=model.StudentProfile} "成功"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/teacher/students [post]
func (c *StudentController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.StudentService.Create(claims, &req)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Created(ctx, profile)
}

// Get godoc
// @Summary 学生档案详情
// @Tags 学生管理
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Success 200 {object} util.Response{data=model.StudentProfile} "成功"
// @Router /api/students/{studentId} [get]
func (c *StudentController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	profile, err := c.StudentService.Get(claims, util.MustParseUint(ctx.Param("studentId")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// Update godoc
// @Summary 更新学生档案
// @Tags 学生管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Param   body body service.CreateStudentRequest true "档案信息"
// @Success 200 {object} util.Response{data=model.StudentProfile} "成功"
// @Router /api/teacher/students/{studentId} [put]
func (c *StudentController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.StudentService.Update(claims, util.MustParseUint(ctx.Param("studentId")), &req)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// List godoc
// @Summary 我带的学生
// @Description 老师/助教看授权的学生，管理员看全部
// @Tags 学生管理
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/teacher/students [get]
func (c *StudentController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	students, total, err := c.StudentService.ListMine(claims, page, limit)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  students,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Link godoc
// @Summary 给学生加授权老师
// @Tags 学生管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Param   body body service.LinkRequest true "老师ID与角色"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/students/{studentId}/links [post]
func (c *StudentController) Link(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.LinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.StudentService.Link(claims, util.MustParseUint(ctx.Param("studentId")), &req); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RotateGuardianToken godoc
// @Summary 轮换家长访问令牌
// @Description 生成新令牌，旧链接立即失效
// @Tags 学生管理
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/teacher/students/{studentId}/guardian-token [post]
func (c *StudentController) RotateGuardianToken(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	token, err := c.StudentService.RotateGuardianToken(claims, util.MustParseUint(ctx.Param("studentId")))
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"token": token})
}

// RevokeGuardianToken godoc
// @Summary 收回家长访问
// @Tags 学生管理
// @Produce  json
// @Security BearerAuth
// @Param   studentId path int true "学生ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/teacher/students/{studentId}/guardian-token [delete]
func (c *StudentController) RevokeGuardianToken(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.StudentService.RevokeGuardianToken(claims, util.MustParseUint(ctx.Param("studentId"))); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
