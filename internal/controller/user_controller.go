package controller

import (
	"studycoach_backend/internal/model"
	"studycoach_backend/internal/service"
	"studycoach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 账号管理（管理员侧）
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListByRole godoc
// @Summary 按角色列出账号
// @Tags 用户管理
// @Produce  json
// @Security BearerAuth
// @Param   role query string true "角色"
// @Success 200 {object} util.Response{data=[]model.User} "成功"
// @Router /api/admin/users [get]
func (c *UserController) ListByRole(ctx *gin.Context) {
	role := model.UserRole(ctx.Query("role"))
	users, err := c.UserService.ListByRole(role)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// SetDisabled godoc
// @Summary 停用/启用账号
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "用户ID"
// @Param   body body SetDisabledRequest true "停用状态"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/users/{id}/disabled [put]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetDisabled(claims, util.MustParseUint(ctx.Param("id")), req.Disabled); err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type UpdateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateName godoc
// @Summary 修改显示名
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body UpdateNameRequest true "新名称"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Router /api/profile/name [put]
func (c *UserController) UpdateName(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req UpdateNameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateName(claims.UserID, req.Name)
	if err != nil {
		util.BusinessError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
